package http

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"syndicpulse/internal/core"
	"syndicpulse/internal/ledger"
	applog "syndicpulse/internal/log"
	"syndicpulse/internal/metrics"
	"syndicpulse/internal/middleware/ratelimit"
	"syndicpulse/internal/middleware/security"
	"syndicpulse/internal/middleware/trace"
	"syndicpulse/internal/render"
	"syndicpulse/internal/services"
)

// LedgerWriter is satisfied by *services.LedgerService.
type LedgerWriter interface {
	RecordPayment(ctx context.Context, buildingID string, in services.PaymentInput) (services.PaymentResult, error)
	AddResident(ctx context.Context, buildingID string, in services.ResidentInput) (core.Resident, error)
	ImportResidents(ctx context.Context, buildingID string, src io.Reader) (services.ImportResult, error)
	AddExpense(ctx context.Context, buildingID string, in services.ExpenseInput) (core.ExpenseEntry, error)
	Outstanding(ctx context.Context, buildingID string) ([]core.Resident, error)
	Payments(ctx context.Context, buildingID string) ([]core.Payment, error)
	Reference() core.YearMonth
}

// ReportExporter is satisfied by *services.ReportService.
type ReportExporter interface {
	ExportCSV(ctx context.Context, buildingID string, w io.Writer) (string, error)
	ExportPrint(ctx context.Context, buildingID string, w io.Writer, opts render.PrintOptions) (string, error)
	ExportScreen(ctx context.Context, buildingID string) (render.ScreenView, error)
}

// ReadinessCheck reports whether a dependency is usable. Checks run on
// every /readyz request.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Deps wires a Server. Metrics and Checks are optional.
type Deps struct {
	Buildings          ledger.BuildingReader
	Ledger             LedgerWriter
	Reports            ReportExporter
	Metrics            *metrics.Metrics
	Logger             *applog.Logger
	RateLimitPerMinute int
	Checks             []ReadinessCheck
}

type Server struct {
	http.Server
	buildings ledger.BuildingReader
	ledger    LedgerWriter
	reports   ReportExporter
	metrics   *metrics.Metrics
	logger    *applog.Logger
	checks    []ReadinessCheck
	started   time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer registers the routes and the middleware chain, returning a
// ready-to-run server.
func NewServer(addr string, d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		buildings: d.Buildings,
		ledger:    d.Ledger,
		reports:   d.Reports,
		metrics:   d.Metrics,
		logger:    logger,
		checks:    d.Checks,
		started:   time.Now(),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: d.RateLimitPerMinute}),
	}
	s.detector = security.NewDetector(func() { s.reject("suspicious") })

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("GET /api/buildings", s.handleBuildings)
	mux.HandleFunc("GET /api/buildings/{id}/report", s.handleReport)
	mux.HandleFunc("GET /api/buildings/{id}/outstanding", s.handleOutstanding)
	mux.HandleFunc("GET /api/buildings/{id}/payments", s.handleListPayments)
	mux.HandleFunc("POST /api/buildings/{id}/payments", s.handleRecordPayment)
	mux.HandleFunc("POST /api/buildings/{id}/residents", s.handleAddResident)
	mux.HandleFunc("POST /api/buildings/{id}/residents/import", s.handleImportResidents)
	mux.HandleFunc("POST /api/buildings/{id}/expenses", s.handleAddExpense)

	mux.HandleFunc("GET /buildings/{id}/export.csv", s.handleExportCSV)
	mux.HandleFunc("GET /buildings/{id}/export/print", s.handleExportPrint)

	// Outermost first.
	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, func(*http.Request) { s.reject("rate_limit") }, http.MethodPost)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	if s.metrics != nil {
		h = s.metrics.Middleware(h)
	}
	h = s.detector.Middleware(h)
	h = trace.NewMiddleware(logger, s.detector.ExtractClientIP).Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) reject(reason string) {
	if s.metrics != nil {
		s.metrics.ObserveRejected(reason)
	}
}

// Shutdown stops the rate limiter sweep and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
