// Package worker keeps the spreadsheet copy of every building report current.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"syndicpulse/internal/amqp"
	"syndicpulse/internal/report"
)

// ReportBuilder is satisfied by *services.ReportService.
type ReportBuilder interface {
	Build(ctx context.Context, buildingID string) (report.Report, error)
	BuildAll(ctx context.Context) ([]report.Report, error)
	Invalidate(buildingID string)
}

// ReportPublisher is satisfied by *google.Publisher.
type ReportPublisher interface {
	Publish(ctx context.Context, r report.Report) error
}

// Consumer is satisfied by *amqp.Client.
type Consumer interface {
	ConsumeLedgerChanged(ctx context.Context, handler amqp.Handler) error
}

// SyncWorker republishes a building's report whenever its ledger changes,
// and every building on a fixed interval in case messages were lost.
type SyncWorker struct {
	reports   ReportBuilder
	publisher ReportPublisher
	interval  time.Duration
}

func NewSyncWorker(reports ReportBuilder, publisher ReportPublisher, interval time.Duration) *SyncWorker {
	return &SyncWorker{
		reports:   reports,
		publisher: publisher,
		interval:  interval,
	}
}

// HandleLedgerChanged rebuilds and publishes the building named in msg.
func (w *SyncWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"building_id", msg.BuildingID,
		"event_kind", msg.Kind,
		"entity_id", msg.EntityID)

	// The server wrote the change, so anything cached here is stale.
	w.reports.Invalidate(msg.BuildingID)

	r, err := w.reports.Build(ctx, msg.BuildingID)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if err := w.publisher.Publish(ctx, r); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}

// SyncAll publishes every building. A failing building does not stop the
// others; all failures are returned together.
func (w *SyncWorker) SyncAll(ctx context.Context) error {
	reports, err := w.reports.BuildAll(ctx)
	if err != nil {
		return fmt.Errorf("build reports: %w", err)
	}

	var errs []error
	for _, r := range reports {
		if err := w.publisher.Publish(ctx, r); err != nil {
			slog.ErrorContext(ctx, "Failed to publish report",
				"building_id", r.Meta.BuildingID, "error", err)
			errs = append(errs, fmt.Errorf("building %s: %w", r.Meta.BuildingID, err))
		}
	}

	slog.InfoContext(ctx, "Full sync completed",
		"buildings", len(reports),
		"failed", len(errs))
	return errors.Join(errs...)
}

// Run performs a startup sync, then consumes ledger changes and re-syncs on
// the interval until ctx is cancelled.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer) error {
	if err := w.SyncAll(ctx); err != nil {
		slog.WarnContext(ctx, "Startup sync incomplete", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return consumer.ConsumeLedgerChanged(ctx, w.HandleLedgerChanged)
	})
	g.Go(func() error {
		return w.periodic(ctx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (w *SyncWorker) periodic(ctx context.Context) error {
	if w.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.SyncAll(ctx); err != nil {
				slog.WarnContext(ctx, "Periodic sync incomplete", "error", err)
			}
		}
	}
}
