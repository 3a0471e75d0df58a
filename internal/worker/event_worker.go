// Package worker consumes ledger events published by the dashboard.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"listrik/internal/amqp"
	"listrik/internal/cache"
	"listrik/internal/core"
	"listrik/internal/format"
	"listrik/internal/log"
)

const (
	// seenCapacity bounds the ids remembered for redelivery detection.
	seenCapacity = 4096
	seenTTL      = time.Hour

	// summaryCapacity bounds the sessions tracked; idle ones age out after
	// summaryTTL.
	summaryCapacity = 4096
	summaryTTL      = 24 * time.Hour
)

// Stats is a tally of the events handled so far.
type Stats struct {
	Handled    int64
	Duplicates int64
	ByType     map[string]int64
	Sessions   int
}

// EventWorker prints ledger events and keeps the latest summary per session.
// AMQP delivers at least once, so an event id seen before is skipped.
type EventWorker struct {
	out    io.Writer
	asJSON bool
	logger *log.Logger

	seen      *cache.LRUCache[struct{}]
	summaries *cache.LRUCache[core.Summary]

	mu    sync.Mutex
	stats Stats
}

func NewEventWorker(out io.Writer, asJSON bool, logger *log.Logger) *EventWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &EventWorker{
		out:       out,
		asJSON:    asJSON,
		logger:    logger.WithComponent(log.ComponentAMQP),
		seen:      cache.NewLRUCache[struct{}](seenCapacity, seenTTL),
		summaries: cache.NewLRUCache[core.Summary](summaryCapacity, summaryTTL),
		stats:     Stats{ByType: make(map[string]int64)},
	}
}

// HandleMessage processes one delivery. A returned error makes the consumer
// requeue the message.
func (w *EventWorker) HandleMessage(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	if msg.ID != "" {
		if _, dup := w.seen.Get(msg.ID); dup {
			w.mu.Lock()
			w.stats.Duplicates++
			w.mu.Unlock()
			w.logger.DebugContext(ctx, "Skipping redelivered event", "id", msg.ID)
			return nil
		}
	}

	if err := w.print(msg); err != nil {
		return fmt.Errorf("print event: %w", err)
	}
	if msg.ID != "" {
		w.seen.Set(msg.ID, struct{}{})
	}

	if msg.SessionID != "" {
		w.summaries.Set(msg.SessionID, msg.Summary)
	}
	w.mu.Lock()
	w.stats.Handled++
	w.stats.ByType[msg.Type]++
	w.mu.Unlock()
	return nil
}

// Stats returns a copy of the tally. Sessions counts the sessions whose
// summary is still tracked.
func (w *EventWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.stats
	s.ByType = make(map[string]int64, len(w.stats.ByType))
	for k, v := range w.stats.ByType {
		s.ByType[k] = v
	}
	s.Sessions = w.summaries.Size()
	return s
}

// Summary returns the latest summary seen for a session.
func (w *EventWorker) Summary(sessionID string) (core.Summary, bool) {
	return w.summaries.Get(sessionID)
}

// CleanExpired drops aged-out event ids and session summaries so a
// cache.Manager can sweep the worker.
func (w *EventWorker) CleanExpired() int {
	return w.seen.CleanExpired() + w.summaries.CleanExpired()
}

// LogStats writes the tally, typically on shutdown.
func (w *EventWorker) LogStats(ctx context.Context) {
	s := w.Stats()
	types := make([]string, 0, len(s.ByType))
	for t := range s.ByType {
		types = append(types, t)
	}
	sort.Strings(types)

	args := []any{"handled", s.Handled, "duplicates", s.Duplicates, "sessions", s.Sessions}
	for _, t := range types {
		args = append(args, t, s.ByType[t])
	}
	w.logger.InfoContext(ctx, "Event consumer stopped", args...)
}

func (w *EventWorker) print(msg *amqp.LedgerEventMessage) error {
	if w.asJSON {
		return json.NewEncoder(w.out).Encode(msg)
	}

	detail := ""
	switch {
	case msg.Appliance != nil:
		detail = fmt.Sprintf("%s %dx%s %s/day (%s)",
			msg.Appliance.Name, msg.Appliance.Units, format.Watts(msg.Appliance.WattsPerUnit),
			format.Hours(msg.Appliance.HoursPerDay), format.KWh(msg.Appliance.MonthlyKWh))
	case msg.TariffClass != "":
		detail = "class " + msg.TariffClass
	}
	_, err := fmt.Fprintf(w.out, "%s %-16s session=%s %s total=%s cost=%s\n",
		msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Type, msg.SessionID, detail,
		format.KWh(msg.Summary.TotalKWh), format.Rupiah(msg.Summary.EstimatedCost))
	return err
}
