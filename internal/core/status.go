package core

import "fmt"

// PaymentStatus is derived from a paid-through month and the reference month. It is never stored.
type PaymentStatus int

const (
	StatusPaid PaymentStatus = iota
	StatusPending
	StatusOverdue
)

var statusNames = [...]string{
	StatusPaid:    "paid",
	StatusPending: "pending",
	StatusOverdue: "overdue",
}

var statusLabels = [...]string{
	StatusPaid:    "Payé",
	StatusPending: "En attente",
	StatusOverdue: "En retard",
}

// Statuses lists every status in display order.
func Statuses() []PaymentStatus {
	return []PaymentStatus{StatusPaid, StatusPending, StatusOverdue}
}

func (s PaymentStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("PaymentStatus(%d)", int(s))
	}
	return statusNames[s]
}

// Label is the French display label.
func (s PaymentStatus) Label() string {
	if s < 0 || int(s) >= len(statusLabels) {
		return s.String()
	}
	return statusLabels[s]
}

func (s PaymentStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *PaymentStatus) UnmarshalText(b []byte) error {
	parsed, err := ParsePaymentStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for i, name := range statusNames {
		if name == s {
			return PaymentStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown payment status %q", s)
}

// Behind returns how many months paidThrough trails the reference month.
// ok is false when paidThrough is absent.
func Behind(paidThrough, reference YearMonth) (behind int, ok bool, err error) {
	if err := reference.Validate(); err != nil {
		return 0, false, fmt.Errorf("reference month: %w", err)
	}
	if paidThrough.IsZero() {
		return 0, false, nil
	}
	behind, err = MonthsBetween(reference, paidThrough)
	if err != nil {
		return 0, false, fmt.Errorf("paid-through month: %w", err)
	}
	return behind, true, nil
}

// Classify maps arrears to a status: absent or two-plus months behind is
// overdue, exactly one month behind is pending, anything else is paid.
func Classify(paidThrough, reference YearMonth) (PaymentStatus, error) {
	behind, ok, err := Behind(paidThrough, reference)
	if err != nil {
		return 0, err
	}
	switch {
	case !ok:
		return StatusOverdue, nil
	case behind <= 0:
		return StatusPaid, nil
	case behind == 1:
		return StatusPending, nil
	default:
		return StatusOverdue, nil
	}
}

// SeedPaidThrough is the paid-through month given to a resident created during
// the reference month: one month behind, i.e. pending.
func SeedPaidThrough(reference YearMonth) (YearMonth, error) {
	return Advance(reference, -1)
}

// PaidThroughFor returns a paid-through month that classifies as status
// against reference. Used when importing records that only carry a status.
func PaidThroughFor(status PaymentStatus, reference YearMonth) (YearMonth, error) {
	switch status {
	case StatusPaid:
		return Advance(reference, 0)
	case StatusPending:
		return Advance(reference, -1)
	case StatusOverdue:
		return Advance(reference, -2)
	default:
		return YearMonth{}, fmt.Errorf("unknown payment status %d", int(status))
	}
}
