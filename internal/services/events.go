package services

import (
	"context"
	"log/slog"

	"budgetd/internal/amqp"
)

// publishEvent emits a ledger event on the metrics side-channel. Delivery
// is best effort: a publish failure is logged and the mutation still
// succeeds.
func publishEvent(ctx context.Context, client *amqp.Client, entity, action string, id int64) {
	if client == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping ledger event",
			"entity", entity, "action", action, "entity_id", id)
		return
	}
	if err := client.PublishEvent(ctx, amqp.NewLedgerEvent(entity, action, id)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"error", err, "entity", entity, "action", action, "entity_id", id)
	}
}
