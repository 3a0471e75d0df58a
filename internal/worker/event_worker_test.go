package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"listrik/internal/amqp"
	"listrik/internal/cache"
	"listrik/internal/core"
	"listrik/internal/log"
)

func applianceEvent(id string) *amqp.LedgerEventMessage {
	return amqp.NewLedgerEventMessage(core.LedgerEvent{
		ID:        id,
		Type:      core.EventApplianceAdded,
		SessionID: "s1",
		Appliance: &core.Appliance{Name: "Setrika", Units: 1, WattsPerUnit: 350, TotalWatts: 350, TariffClass: "R-1", HoursPerDay: 2},
		Summary:   core.Summary{ApplianceCount: 16, TotalKWh: 21, EstimatedCost: 31500},
		At:        time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	})
}

func TestHandleMessage_PrintsLine(t *testing.T) {
	var buf bytes.Buffer
	w := NewEventWorker(&buf, false, log.Discard())

	if err := w.HandleMessage(context.Background(), applianceEvent("e1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"2024-05-01 10:00:00", "appliance.added", "session=s1", "Setrika", "21.00 kWh", "Rp 31,500.00"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("line missing %q: %s", want, buf.String())
		}
	}
}

func TestHandleMessage_JSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewEventWorker(&buf, true, nil)

	if err := w.HandleMessage(context.Background(), applianceEvent("e1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"type":"appliance.added"`) {
		t.Errorf("json = %s", buf.String())
	}
}

func TestHandleMessage_SkipsRedelivery(t *testing.T) {
	var buf bytes.Buffer
	w := NewEventWorker(&buf, false, log.Discard())
	ctx := context.Background()

	for _, id := range []string{"e1", "e1", "e2"} {
		if err := w.HandleMessage(ctx, applianceEvent(id)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	tariff := amqp.NewLedgerEventMessage(core.LedgerEvent{
		ID: "e3", Type: core.EventTariffSelected, SessionID: "s2", TariffClass: "R-2",
		Summary: core.Summary{SelectedTariffClass: "R-2"},
	})
	if err := w.HandleMessage(ctx, tariff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := w.Stats()
	if s.Handled != 3 || s.Duplicates != 1 || s.Sessions != 2 {
		t.Fatalf("stats = %+v", s)
	}
	if s.ByType[core.EventApplianceAdded] != 2 || s.ByType[core.EventTariffSelected] != 1 {
		t.Fatalf("by type = %v", s.ByType)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 3 {
		t.Fatalf("printed %d lines, want 3", lines)
	}
	if !strings.Contains(buf.String(), "class R-2") {
		t.Errorf("tariff line missing class: %s", buf.String())
	}

	sum, ok := w.Summary("s2")
	if !ok || sum.SelectedTariffClass != "R-2" {
		t.Fatalf("summary = %+v, %v", sum, ok)
	}
}

func TestSummariesAreBounded(t *testing.T) {
	w := NewEventWorker(&bytes.Buffer{}, false, log.Discard())
	w.summaries = cache.NewLRUCache[core.Summary](2, time.Millisecond)
	ctx := context.Background()

	for i, session := range []string{"s1", "s2", "s3"} {
		ev := amqp.NewLedgerEventMessage(core.LedgerEvent{
			ID: fmt.Sprintf("e%d", i), Type: core.EventTariffSelected, SessionID: session, TariffClass: "R-1",
		})
		if err := w.HandleMessage(ctx, ev); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if s := w.Stats(); s.Sessions != 2 {
		t.Fatalf("sessions = %d, want capacity 2", s.Sessions)
	}
	if _, ok := w.Summary("s1"); ok {
		t.Fatal("oldest session should have been evicted")
	}

	time.Sleep(5 * time.Millisecond)
	if _, ok := w.Summary("s3"); ok {
		t.Fatal("idle session should have expired")
	}
	if n := w.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired = %d, want the remaining session", n)
	}
	if s := w.Stats(); s.Sessions != 0 || s.Handled != 3 {
		t.Fatalf("stats = %+v", s)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestHandleMessage_WriteFailureRequeues(t *testing.T) {
	w := NewEventWorker(failingWriter{}, false, log.Discard())

	if err := w.HandleMessage(context.Background(), applianceEvent("e1")); err == nil {
		t.Fatal("expected error so the delivery is requeued")
	}
	if s := w.Stats(); s.Handled != 0 {
		t.Fatalf("failed event counted: %+v", s)
	}

	var buf bytes.Buffer
	w.out = &buf
	if err := w.HandleMessage(context.Background(), applianceEvent("e1")); err != nil {
		t.Fatalf("requeued event should be handled: %v", err)
	}
}
