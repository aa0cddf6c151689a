// Package worker tallies ledger events from the AMQP side-channel into
// per-operation counters and logs them periodically. Losing a counter
// never affects the ledger itself.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"budgetd/internal/amqp"
)

// MetricsWorker consumes ledger events and keeps one counter per
// entity/action pair (transactions_added, accounts_deleted, ...).
type MetricsWorker struct {
	mu       sync.Mutex
	counters map[string]int64
}

func NewMetricsWorker() *MetricsWorker {
	return &MetricsWorker{
		counters: make(map[string]int64),
	}
}

// HandleEvent increments the counter for one ledger event.
func (w *MetricsWorker) HandleEvent(ev *amqp.LedgerEvent) error {
	if ev.Entity == "" || ev.Action == "" {
		return fmt.Errorf("ledger event missing entity or action: %+v", ev)
	}

	w.mu.Lock()
	w.counters[ev.Counter()]++
	w.mu.Unlock()

	slog.Debug("Tallied ledger event",
		"entity", ev.Entity,
		"action", ev.Action,
		"entity_id", ev.EntityID)
	return nil
}

// Snapshot returns a copy of the current counters.
func (w *MetricsWorker) Snapshot() map[string]int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string]int64, len(w.counters))
	for k, v := range w.counters {
		out[k] = v
	}
	return out
}

// LogPeriodically emits the counter snapshot at every interval until ctx is
// cancelled.
func (w *MetricsWorker) LogPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot := w.Snapshot()
			if len(snapshot) == 0 {
				continue
			}
			keys := make([]string, 0, len(snapshot))
			for k := range snapshot {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			args := make([]any, 0, len(keys)*2)
			for _, k := range keys {
				args = append(args, k, snapshot[k])
			}
			slog.InfoContext(ctx, "Ledger operation counters", args...)
		}
	}
}
