package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"syndicpulse/internal/cache"
	"syndicpulse/internal/core"
	"syndicpulse/internal/ledger"
	"syndicpulse/internal/log"
	"syndicpulse/internal/metrics"
	"syndicpulse/internal/render"
	"syndicpulse/internal/report"
)

// Export formats.
const (
	FormatCSV    = "csv"
	FormatPrint  = "print"
	FormatScreen = "screen"
)

// ReportSource is the read side of a ledger.Store.
type ReportSource interface {
	ledger.BuildingReader
	ListResidents(ctx context.Context, buildingID string) ([]core.Resident, error)
	ListExpenses(ctx context.Context, buildingID string) ([]core.ExpenseEntry, error)
	ledger.BreakdownReader
}

type ReportDeps struct {
	Source    ReportSource
	Reference core.YearMonth
	AppName   string
	Currency  string
	Cache     cache.Cache[report.Report] // optional
	Metrics   *metrics.Metrics           // optional
	Logger    *log.Logger
}

// ReportService assembles building reports and renders exports.
type ReportService struct {
	source    ReportSource
	reference core.YearMonth
	appName   string
	currency  string
	cache     cache.Cache[report.Report]
	metrics   *metrics.Metrics
	logger    *log.Logger
	events    *log.StructuredLogger
	now       func() time.Time
}

var _ ReportInvalidator = (*ReportService)(nil)

func NewReportService(d ReportDeps) *ReportService {
	logger := d.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentReport)
	return &ReportService{
		source:    d.Source,
		reference: d.Reference,
		appName:   d.AppName,
		currency:  d.Currency,
		cache:     d.Cache,
		metrics:   d.Metrics,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
		now:       time.Now,
	}
}

// Build returns the report of a building at the configured reference month.
func (s *ReportService) Build(ctx context.Context, buildingID string) (report.Report, error) {
	key := cache.ReportKey(buildingID, s.reference)
	if s.cache != nil {
		r, ok := s.cache.Get(key)
		if s.metrics != nil {
			s.metrics.ObserveCache(ok)
		}
		if ok {
			return r, nil
		}
	}

	start := time.Now()
	r, err := s.assemble(ctx, buildingID)
	if err != nil {
		return report.Report{}, err
	}
	if s.metrics != nil {
		s.metrics.ObserveAssembly(start)
	}
	if s.cache != nil {
		s.cache.Set(key, r)
	}

	s.logger.DebugContext(ctx, "Report assembled",
		log.FieldBuildingID, buildingID,
		log.FieldReferenceMonth, s.reference.String(),
		log.FieldDuration, time.Since(start).Milliseconds())
	return r, nil
}

func (s *ReportService) assemble(ctx context.Context, buildingID string) (report.Report, error) {
	var (
		b         core.Building
		residents []core.Resident
		journal   []core.ExpenseEntry
		breakdown []core.CategoryShare
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		b, err = s.source.GetBuilding(gctx, buildingID)
		return err
	})
	g.Go(func() (err error) {
		residents, err = s.source.ListResidents(gctx, buildingID)
		return err
	})
	g.Go(func() (err error) {
		journal, err = s.source.ListExpenses(gctx, buildingID)
		return err
	})
	g.Go(func() (err error) {
		breakdown, err = s.source.ExpenseBreakdown(gctx, buildingID)
		return err
	})
	if err := g.Wait(); err != nil {
		return report.Report{}, fmt.Errorf("load ledger of %s: %w", buildingID, err)
	}

	t := s.now()
	r, err := report.Assemble(b, residents, journal, breakdown, s.reference, report.Options{
		AppName:     s.appName,
		Currency:    s.currency,
		GeneratedOn: core.NewDate(t.Year(), int(t.Month()), t.Day()),
	})
	if err != nil {
		return report.Report{}, fmt.Errorf("assemble report of %s: %w", buildingID, err)
	}
	return r, nil
}

// BuildAll builds every building's report in listing order.
func (s *ReportService) BuildAll(ctx context.Context) ([]report.Report, error) {
	buildings, err := s.source.ListBuildings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	out := make([]report.Report, 0, len(buildings))
	for _, b := range buildings {
		r, err := s.Build(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *ReportService) Invalidate(buildingID string) {
	if s.cache == nil {
		return
	}
	if n := s.cache.DeletePrefix(cache.BuildingPrefix(buildingID)); n > 0 {
		s.logger.Debug("Report cache invalidated", log.FieldBuildingID, buildingID, "entries", n)
	}
}

// Filename returns the download name of a report export.
func (s *ReportService) Filename(r report.Report, ext string) string {
	return render.Filename(r.Meta.AppName, r.Meta.BuildingName, r.Meta.GeneratedOn, ext)
}

// ExportCSV writes the CSV export and returns its file name.
func (s *ReportService) ExportCSV(ctx context.Context, buildingID string, w io.Writer) (string, error) {
	r, err := s.Build(ctx, buildingID)
	if err != nil {
		return "", err
	}
	if err := render.WriteCSV(w, r); err != nil {
		return "", err
	}
	s.exported(ctx, r, FormatCSV, len(render.Records(r)))
	return s.Filename(r, "csv"), nil
}

// ExportPrint writes the print document and returns its file name.
func (s *ReportService) ExportPrint(ctx context.Context, buildingID string, w io.Writer, opts render.PrintOptions) (string, error) {
	r, err := s.Build(ctx, buildingID)
	if err != nil {
		return "", err
	}
	if err := render.WritePrint(w, r, opts); err != nil {
		return "", err
	}
	s.exported(ctx, r, FormatPrint, len(r.ExpenseRows)+len(r.ResidentRows)+len(r.CategoryRows))
	return s.Filename(r, "html"), nil
}

// ExportScreen returns the on-screen view of the report.
func (s *ReportService) ExportScreen(ctx context.Context, buildingID string) (render.ScreenView, error) {
	r, err := s.Build(ctx, buildingID)
	if err != nil {
		return render.ScreenView{}, err
	}
	v := render.Screen(r)
	s.exported(ctx, r, FormatScreen, len(v.Expenses.Rows)+len(v.Residents.Rows)+len(v.Categories.Rows))
	return v, nil
}

func (s *ReportService) exported(ctx context.Context, r report.Report, format string, rows int) {
	s.events.LogExport(ctx, r.Meta.BuildingID, format, rows)
	if s.metrics != nil {
		s.metrics.Exports.WithLabelValues(format).Inc()
	}
}
