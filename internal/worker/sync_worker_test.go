package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"syndicpulse/internal/amqp"
	"syndicpulse/internal/report"
)

type fakeReports struct {
	mu          sync.Mutex
	buildings   []string
	invalidated []string
	failBuild   string
}

func (f *fakeReports) Build(_ context.Context, id string) (report.Report, error) {
	if id == f.failBuild {
		return report.Report{}, errors.New("boom")
	}
	return report.Report{Meta: report.Meta{BuildingID: id}}, nil
}

func (f *fakeReports) BuildAll(ctx context.Context) ([]report.Report, error) {
	var out []report.Report
	for _, id := range f.buildings {
		r, err := f.Build(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeReports) Invalidate(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, id)
}

type fakePublisher struct {
	mu        sync.Mutex
	published []string
	fail      map[string]bool
}

func (f *fakePublisher) Publish(_ context.Context, r report.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[r.Meta.BuildingID] {
		return errors.New("quota exceeded")
	}
	f.published = append(f.published, r.Meta.BuildingID)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

type fakeConsumer struct {
	msgs []*amqp.LedgerChangedMessage
}

func (f *fakeConsumer) ConsumeLedgerChanged(ctx context.Context, h amqp.Handler) error {
	for _, m := range f.msgs {
		if err := h(ctx, m); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestHandleLedgerChanged(t *testing.T) {
	reports := &fakeReports{}
	pub := &fakePublisher{}
	w := NewSyncWorker(reports, pub, time.Hour)

	msg := amqp.NewLedgerChangedMessage("bld-2", amqp.KindPaymentRecorded, "p-1", "2026-02")
	if err := w.HandleLedgerChanged(context.Background(), msg); err != nil {
		t.Fatalf("HandleLedgerChanged: %v", err)
	}
	if len(reports.invalidated) != 1 || reports.invalidated[0] != "bld-2" {
		t.Fatalf("invalidated = %v", reports.invalidated)
	}
	if len(pub.published) != 1 || pub.published[0] != "bld-2" {
		t.Fatalf("published = %v", pub.published)
	}

	reports.failBuild = "bld-3"
	msg = amqp.NewLedgerChangedMessage("bld-3", amqp.KindExpenseAppended, "", "2026-02")
	if err := w.HandleLedgerChanged(context.Background(), msg); err == nil {
		t.Fatal("expected build error")
	}
}

func TestSyncAllContinuesPastFailures(t *testing.T) {
	reports := &fakeReports{buildings: []string{"bld-1", "bld-2", "bld-3"}}
	pub := &fakePublisher{fail: map[string]bool{"bld-2": true}}
	w := NewSyncWorker(reports, pub, time.Hour)

	err := w.SyncAll(context.Background())
	if err == nil {
		t.Fatal("expected error for bld-2")
	}
	if pub.count() != 2 {
		t.Fatalf("published %v, want bld-1 and bld-3", pub.published)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	reports := &fakeReports{buildings: []string{"bld-1"}}
	pub := &fakePublisher{}
	w := NewSyncWorker(reports, pub, time.Hour)
	consumer := &fakeConsumer{msgs: []*amqp.LedgerChangedMessage{
		amqp.NewLedgerChangedMessage("bld-1", amqp.KindResidentAdded, "r13", "2026-02"),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, consumer) }()

	deadline := time.After(2 * time.Second)
	for pub.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("published %d reports, want startup sync plus message", pub.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}
