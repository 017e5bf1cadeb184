package core

import (
	"errors"
	"strings"
	"time"
)

const (
	MethodCash     PaymentMethod = "especes"
	MethodTransfer PaymentMethod = "virement"
	MethodCheque   PaymentMethod = "cheque"
)

const (
	ResidentOwner  ResidentType = "proprietaire"
	ResidentTenant ResidentType = "locataire"
)

type (
	PaymentMethod string
	ResidentType  string

	Date struct {
		time.Time
	}

	// Money is a whole-unit currency amount (no minor units).
	Money struct {
		Units int64
	}

	Building struct {
		ID          string
		OrgID       string
		Name        string
		City        string
		Address     string
		TotalUnits  int
		ReserveFund Money
		Manager     string
	}

	Resident struct {
		ID          string
		Unit        string
		Name        string
		Phone       string
		Floor       int
		Type        ResidentType
		Since       string    // display only, e.g. "2019" or "Fév. 2026"
		PaidThrough YearMonth // zero means never paid
	}

	// ExpenseEntry is an immutable line of a building's expense journal.
	ExpenseEntry struct {
		ID          string
		Date        Date
		Category    string
		Vendor      string
		Amount      Money
		Description string
		HasInvoice  bool
	}

	// CategoryShare is one slice of the expense distribution view.
	CategoryShare struct {
		Category   string
		Amount     Money
		Percentage int
	}

	// Payment is an audit record. Amount is informational and is never
	// reconciled against MonthsCovered.
	Payment struct {
		ID            string
		ResidentID    string
		Amount        Money
		MonthsCovered int
		Method        PaymentMethod
		Date          Date
		Reference     string
	}
)

var (
	ErrInvalidDay           = errors.New("invalid day")
	ErrInvalidMonth         = errors.New("invalid month")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidMonthsCovered = errors.New("months covered must be positive")
	ErrInvalidMethod        = errors.New("invalid payment method")
	ErrEmptyName            = errors.New("empty name")
	ErrEmptyUnit            = errors.New("empty unit")
	ErrEmptyCategory        = errors.New("empty category")
	ErrEmptyDescription     = errors.New("empty description")
	ErrDescriptionTooLong   = errors.New("description too long (max 200 characters)")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDay
	}
	return Date{Time: t}, nil
}

// String renders the ISO date, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// YearMonth returns the calendar month the date falls in.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year(), Month: int(d.Month())}
}

func (m Money) Validate() error {
	if m.Units <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Units: m.Units + o.Units}
}

func (pm PaymentMethod) Validate() error {
	switch pm {
	case MethodCash, MethodTransfer, MethodCheque:
		return nil
	default:
		return ErrInvalidMethod
	}
}

// NormalizeResidentType lowercases and strips accents from the two known
// types so "Propriétaire" and "proprietaire" compare equal.
func NormalizeResidentType(s string) ResidentType {
	t := strings.ToLower(strings.TrimSpace(s))
	t = strings.ReplaceAll(t, "é", "e")
	switch ResidentType(t) {
	case ResidentOwner, ResidentTenant:
		return ResidentType(t)
	case "":
		return ResidentOwner
	default:
		return ResidentType(t)
	}
}

func (r Resident) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(r.Unit) == "" {
		return ErrEmptyUnit
	}
	if !r.PaidThrough.IsZero() {
		if err := r.PaidThrough.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e ExpenseEntry) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return ErrDescriptionTooLong
	}
	return e.Amount.Validate()
}

func (p Payment) Validate() error {
	if p.MonthsCovered <= 0 {
		return ErrInvalidMonthsCovered
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if err := p.Method.Validate(); err != nil {
		return err
	}
	return p.Date.Validate()
}
