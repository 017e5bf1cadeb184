package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"syndicpulse/internal/amqp"
	"syndicpulse/internal/core"
	"syndicpulse/internal/ledger"
	"syndicpulse/internal/log"
	"syndicpulse/internal/metrics"
)

// DefaultPaymentAmount is the monthly fee proposed when none is given.
var DefaultPaymentAmount = core.Money{Units: 850}

// NoPhone is shown for residents registered without a phone number.
const NoPhone = "—"

// LedgerDeps wires a LedgerService. Publisher, Reports and Metrics are optional.
type LedgerDeps struct {
	Store     ledger.Store
	Reference core.YearMonth
	Publisher EventPublisher
	Reports   ReportInvalidator
	Metrics   *metrics.Metrics
	Logger    *log.Logger
}

// LedgerService applies ledger writes and announces them.
type LedgerService struct {
	store     ledger.Store
	reference core.YearMonth
	publisher EventPublisher
	reports   ReportInvalidator
	metrics   *metrics.Metrics
	logger    *log.Logger
	events    *log.StructuredLogger

	newID func() string
	now   func() time.Time
}

func NewLedgerService(d LedgerDeps) *LedgerService {
	logger := d.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentLedger)
	return &LedgerService{
		store:     d.Store,
		reference: d.Reference,
		publisher: d.Publisher,
		reports:   d.Reports,
		metrics:   d.Metrics,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

func (s *LedgerService) Reference() core.YearMonth { return s.reference }

type (
	PaymentInput struct {
		ResidentID    string
		MonthsCovered int
		Amount        core.Money
		Method        core.PaymentMethod
		Date          core.Date
		Reference     string
	}

	PaymentResult struct {
		Payment  core.Payment
		Resident core.Resident
		Status   core.PaymentStatus
	}

	ResidentInput struct {
		Name  string
		Unit  string
		Phone string
		Floor string
		Type  string
	}

	ExpenseInput struct {
		Date        core.Date
		Category    string
		Vendor      string
		Amount      core.Money
		Description string
		HasInvoice  bool
	}
)

// RecordPayment advances the resident's paid-through month by the months
// covered and stores the payment for audit.
func (s *LedgerService) RecordPayment(ctx context.Context, buildingID string, in PaymentInput) (PaymentResult, error) {
	resident, err := s.store.GetResident(ctx, buildingID, in.ResidentID)
	if err != nil {
		return PaymentResult{}, fmt.Errorf("load resident: %w", err)
	}

	next, err := core.RecordPayment(resident, in.MonthsCovered, s.reference)
	if err != nil {
		return PaymentResult{}, err
	}

	p := core.Payment{
		ID:            s.newID(),
		ResidentID:    resident.ID,
		Amount:        in.Amount,
		MonthsCovered: in.MonthsCovered,
		Method:        in.Method,
		Date:          in.Date,
		Reference:     strings.TrimSpace(in.Reference),
	}
	if p.Amount.Units == 0 {
		p.Amount = DefaultPaymentAmount
	}
	if p.Method == "" {
		p.Method = core.MethodCash
	}
	if p.Date.IsZero() {
		p.Date = s.today()
	}
	if err := p.Validate(); err != nil {
		return PaymentResult{}, err
	}

	if err := s.store.RecordPayment(ctx, buildingID, p, next); err != nil {
		return PaymentResult{}, fmt.Errorf("record payment: %w", err)
	}

	resident.PaidThrough = next
	status, err := core.Classify(next, s.reference)
	if err != nil {
		return PaymentResult{}, err
	}

	s.events.LogPaymentRecorded(ctx, buildingID, resident.ID, p.MonthsCovered, p.Amount.Units, string(p.Method), next.String())
	if s.metrics != nil {
		s.metrics.ObservePayment(string(p.Method), p.MonthsCovered)
	}
	s.changed(ctx, buildingID, amqp.KindPaymentRecorded, p.ID)

	return PaymentResult{Payment: p, Resident: resident, Status: status}, nil
}

// AddResident registers a new resident one month behind the reference
// month, so they start out pending.
func (s *LedgerService) AddResident(ctx context.Context, buildingID string, in ResidentInput) (core.Resident, error) {
	r, err := s.newResident(in)
	if err != nil {
		return core.Resident{}, err
	}
	if err := r.Validate(); err != nil {
		return core.Resident{}, err
	}
	if err := s.store.AddResidents(ctx, buildingID, r); err != nil {
		return core.Resident{}, fmt.Errorf("add resident: %w", err)
	}

	s.logger.InfoContext(ctx, "Resident added",
		log.FieldBuildingID, buildingID,
		log.FieldResidentID, r.ID,
		log.FieldPaidThrough, r.PaidThrough.String())
	if s.metrics != nil {
		s.metrics.ResidentsAdded.WithLabelValues("form").Inc()
	}
	s.changed(ctx, buildingID, amqp.KindResidentAdded, r.ID)
	return r, nil
}

func (s *LedgerService) newResident(in ResidentInput) (core.Resident, error) {
	paidThrough, err := core.SeedPaidThrough(s.reference)
	if err != nil {
		return core.Resident{}, err
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		phone = NoPhone
	}
	floor, err := strconv.Atoi(strings.TrimSpace(in.Floor))
	if err != nil {
		floor = 0
	}
	return core.Resident{
		ID:          s.newID(),
		Unit:        strings.ToUpper(strings.TrimSpace(in.Unit)),
		Name:        strings.TrimSpace(in.Name),
		Phone:       phone,
		Floor:       floor,
		Type:        core.NormalizeResidentType(in.Type),
		Since:       s.reference.ShortLabel(),
		PaidThrough: paidThrough,
	}, nil
}

// AddExpense appends an entry to the building's journal.
func (s *LedgerService) AddExpense(ctx context.Context, buildingID string, in ExpenseInput) (core.ExpenseEntry, error) {
	e := core.ExpenseEntry{
		ID:          s.newID(),
		Date:        in.Date,
		Category:    strings.TrimSpace(in.Category),
		Vendor:      strings.TrimSpace(in.Vendor),
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		HasInvoice:  in.HasInvoice,
	}
	if e.Date.IsZero() {
		e.Date = s.today()
	}
	if err := e.Validate(); err != nil {
		return core.ExpenseEntry{}, err
	}
	if err := s.store.AppendExpense(ctx, buildingID, e); err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("append expense: %w", err)
	}

	s.logger.InfoContext(ctx, "Expense appended",
		log.FieldBuildingID, buildingID,
		log.FieldCategory, e.Category,
		log.FieldAmount, e.Amount.Units)
	if s.metrics != nil {
		s.metrics.ExpensesAppended.Inc()
	}
	s.changed(ctx, buildingID, amqp.KindExpenseAppended, e.ID)
	return e, nil
}

// Outstanding lists the residents that are not paid up, in ledger order.
func (s *LedgerService) Outstanding(ctx context.Context, buildingID string) ([]core.Resident, error) {
	residents, err := s.store.ListResidents(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	var out []core.Resident
	for _, r := range residents {
		status, err := core.Classify(r.PaidThrough, s.reference)
		if err != nil {
			return nil, fmt.Errorf("resident %s: %w", r.ID, err)
		}
		if status != core.StatusPaid {
			out = append(out, r)
		}
	}
	return out, nil
}

// Payments returns the building's payment audit trail, oldest first.
func (s *LedgerService) Payments(ctx context.Context, buildingID string) ([]core.Payment, error) {
	return s.store.ListPayments(ctx, buildingID)
}

func (s *LedgerService) today() core.Date {
	t := s.now()
	return core.NewDate(t.Year(), int(t.Month()), t.Day())
}

// changed invalidates cached reports and publishes the change. Publish
// failures are logged only: the write already succeeded.
func (s *LedgerService) changed(ctx context.Context, buildingID string, kind amqp.ChangeKind, entityID string) {
	if s.reports != nil {
		s.reports.Invalidate(buildingID)
	}
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP client not available, skipping ledger event", log.FieldEventKind, kind)
		return
	}
	msg := amqp.NewLedgerChangedMessage(buildingID, kind, entityID, s.reference.String())
	err := s.publisher.PublishLedgerChanged(ctx, msg)
	if s.metrics != nil {
		s.metrics.ObservePublish(err)
	}
	if err != nil {
		s.events.LogError(ctx, "Failed to publish ledger event", err, log.ComponentAMQP, log.OpPublish,
			log.NewFields().WithBuilding(buildingID))
	}
}

// IsValidation reports whether err is caused by bad input rather than by
// storage or infrastructure.
func IsValidation(err error) bool {
	var dateErr *core.InvalidDateError
	switch {
	case errors.As(err, &dateErr):
		return true
	case errors.Is(err, core.ErrInvalidDay),
		errors.Is(err, core.ErrInvalidMonth),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidMonthsCovered),
		errors.Is(err, core.ErrInvalidMethod),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyUnit),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrDescriptionTooLong),
		errors.Is(err, ErrImportFormat):
		return true
	}
	return false
}
