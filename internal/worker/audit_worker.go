package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/backend"
	"ledger/internal/cache"
	"ledger/internal/core"
	"ledger/internal/entity"
	applog "ledger/internal/log"
	"ledger/internal/resources"
)

// AuditWorker consumes entity events and checks them against the API: a
// created, updated or patched record must exist, a deleted one must be gone.
type AuditWorker struct {
	backends backend.Backends
	// seen holds recently handled events so redeliveries are skipped.
	seen *cache.LRU[struct{}]

	mu         sync.Mutex
	processed  map[string]int
	mismatches int
	duplicates int
}

const (
	seenSize = 4096
	seenTTL  = time.Hour
)

func NewAuditWorker(backends backend.Backends) *AuditWorker {
	return &AuditWorker{
		backends:  backends,
		seen:      cache.NewLRU[struct{}](seenSize, seenTTL),
		processed: make(map[string]int),
	}
}

func eventKey(msg *amqp.EntityEventMessage) string {
	return fmt.Sprintf("%s.%s.%d.%d", msg.Entity, msg.Action, msg.ID, msg.Timestamp.UnixNano())
}

// HandleEntityEvent processes a single event from AMQP. Returning an error
// requeues the message, so only transport failures are reported.
func (w *AuditWorker) HandleEntityEvent(ctx context.Context, msg *amqp.EntityEventMessage) error {
	key := eventKey(msg)
	if _, ok := w.seen.Get(key); ok {
		slog.DebugContext(ctx, "Skipping redelivered entity event",
			applog.FieldEntity, msg.Entity,
			applog.FieldAction, msg.Action,
			applog.FieldEntityID, msg.ID)
		w.mu.Lock()
		w.duplicates++
		w.mu.Unlock()
		return nil
	}

	slog.InfoContext(ctx, "Processing entity event",
		applog.FieldEntity, msg.Entity,
		applog.FieldAction, msg.Action,
		applog.FieldEntityID, msg.ID)

	var (
		exists bool
		err    error
	)
	switch msg.Entity {
	case resources.MoneyRoute:
		exists, err = recordExists(ctx, w.backends.Monies, msg.ID)
	case resources.IncomeRoute:
		exists, err = recordExists(ctx, w.backends.Incomes, msg.ID)
	default:
		slog.WarnContext(ctx, "Skipping event for unknown entity",
			applog.FieldEntity, msg.Entity,
			applog.FieldEntityID, msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("check %s %d: %w", msg.Entity, msg.ID, err)
	}

	w.seen.Set(key, struct{}{})
	wantExists := msg.Action != amqp.ActionDeleted
	w.record(msg.Entity+"."+msg.Action, exists != wantExists)

	if exists != wantExists {
		slog.WarnContext(ctx, "Entity event does not match the API",
			applog.FieldEntity, msg.Entity,
			applog.FieldAction, msg.Action,
			applog.FieldEntityID, msg.ID,
			"exists", exists)
	}
	return nil
}

func (w *AuditWorker) record(key string, mismatch bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.processed[key]++
	if mismatch {
		w.mismatches++
	}
}

// Duplicates returns how many redelivered events were skipped.
func (w *AuditWorker) Duplicates() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.duplicates
}

// Stats returns how many events were processed per entity.action and how
// many did not match the API.
func (w *AuditWorker) Stats() (map[string]int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]int, len(w.processed))
	for k, v := range w.processed {
		out[k] = v
	}
	return out, w.mismatches
}

// ReportStats logs the counters every interval until ctx is done, pruning
// expired entries from the redelivery cache on the way.
func (w *AuditWorker) ReportStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			processed, mismatches := w.Stats()
			keys := make([]string, 0, len(processed))
			for k := range processed {
				keys = append(keys, fmt.Sprintf("%s=%d", k, processed[k]))
			}
			sort.Strings(keys)
			pruned := w.seen.Prune()
			slog.InfoContext(ctx, "Entity event summary",
				"processed", strings.Join(keys, " "),
				"mismatches", mismatches,
				"duplicates", w.Duplicates(),
				"pruned", pruned)
		}
	}
}

func recordExists[T core.Identified](ctx context.Context, be entity.Backend[T], id int64) (bool, error) {
	if be == nil {
		return false, fmt.Errorf("no backend configured")
	}
	resp, err := be.Find(ctx, id)
	if err != nil {
		return false, err
	}
	return resp != nil && resp.Body != nil, nil
}
