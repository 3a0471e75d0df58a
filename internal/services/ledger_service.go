package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"listrik/internal/core"
	"listrik/internal/log"
	"listrik/internal/notify"
)

// LedgerService applies user changes to a session ledger and announces them.
// The ledger is always updated first; a failed publish is logged and never
// undoes or fails the change.
type LedgerService struct {
	publisher notify.Publisher
	logger    *log.Logger
	events    *log.StructuredLogger
	now       func() time.Time
}

func NewLedgerService(publisher notify.Publisher, logger *log.Logger) *LedgerService {
	if publisher == nil {
		publisher = notify.Noop{}
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &LedgerService{
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
		events:    log.NewStructuredLogger(logger),
		now:       time.Now,
	}
}

// AddAppliance registers an appliance in the session's ledger.
func (s *LedgerService) AddAppliance(ctx context.Context, sessionID string, l *core.Ledger, in core.ApplianceInput) (core.Appliance, error) {
	a, err := l.AddAppliance(in)
	if err != nil {
		return core.Appliance{}, fmt.Errorf("add appliance: %w", err)
	}

	snap := l.Snapshot()
	s.events.LogApplianceAdded(ctx, sessionID, a.Name, a.Units, a.TotalWatts, a.HoursPerDay, a.TariffClass, snap.TotalMonthlyKWh())

	s.publish(ctx, core.LedgerEvent{
		Type:      core.EventApplianceAdded,
		SessionID: sessionID,
		Appliance: &a,
		Summary:   snap.Summary(),
	})
	return a, nil
}

// SelectTariff changes the class used for the aggregate cost. Only classes of
// the ledger's tariff table are accepted here; the ledger itself stays
// permissive.
func (s *LedgerService) SelectTariff(ctx context.Context, sessionID string, l *core.Ledger, class string) error {
	if !l.Snapshot().Tariffs.Has(class) {
		return &core.ValidationError{Field: "tariff_class", Reason: fmt.Sprintf("unknown class %q", class)}
	}
	l.SetTariffClass(class)

	snap := l.Snapshot()
	s.logger.InfoContext(ctx, "Tariff class selected",
		log.FieldSessionID, sessionID,
		log.FieldTariffClass, class,
		log.FieldEstimatedCost, snap.EstimatedMonthlyCost())

	s.publish(ctx, core.LedgerEvent{
		Type:        core.EventTariffSelected,
		SessionID:   sessionID,
		TariffClass: class,
		Summary:     snap.Summary(),
	})
	return nil
}

func (s *LedgerService) publish(ctx context.Context, ev core.LedgerEvent) {
	ev.ID = uuid.NewString()
	ev.At = s.now()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldEventType, ev.Type,
			log.FieldSessionID, ev.SessionID,
			log.FieldError, err)
	}
}

// EndSession lets sinks with per-session state drop the session. Failures are
// logged only; the session is gone either way.
func (s *LedgerService) EndSession(ctx context.Context, sessionID string) {
	fg, ok := s.publisher.(notify.Forgetter)
	if !ok {
		return
	}
	if err := fg.Forget(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "Failed to clear session from event sinks",
			log.FieldSessionID, sessionID,
			log.FieldError, err)
		return
	}
	s.logger.DebugContext(ctx, "Session cleared from event sinks", log.FieldSessionID, sessionID)
}

// Close releases the publisher.
func (s *LedgerService) Close() error {
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}
