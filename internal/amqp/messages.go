package amqp

import (
	"encoding/json"
	"time"
)

// Entities and actions carried by ledger events.
const (
	EntityTransaction = "transaction"
	EntityAccount     = "account"
	EntityCategory    = "category"
	EntityAllocation  = "allocation"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// LedgerEvent is the fire-and-forget message the services publish after a
// successful mutation. The metrics worker tallies them; nothing in the
// write path depends on delivery.
type LedgerEvent struct {
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	EntityID  int64     `json:"entityId"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(entity, action string, entityID int64) *LedgerEvent {
	return &LedgerEvent{
		Entity:    entity,
		Action:    action,
		EntityID:  entityID,
		Timestamp: time.Now(),
	}
}

// Counter returns the metric name the event increments, e.g.
// "transactions_added" or "accounts_deleted".
func (e *LedgerEvent) Counter() string {
	action := e.Action
	if action == ActionCreated {
		action = "added"
	}
	plural := e.Entity + "s"
	if e.Entity == EntityCategory {
		plural = "categories"
	}
	return plural + "_" + action
}

// ToJSON converts the event to JSON bytes.
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
