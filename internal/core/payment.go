package core

import "fmt"

// RecordPayment returns the paid-through month after a payment covering
// monthsCovered months. A resident who never paid starts from the reference
// month. The resident is not modified.
func RecordPayment(r Resident, monthsCovered int, reference YearMonth) (YearMonth, error) {
	if monthsCovered <= 0 {
		return YearMonth{}, ErrInvalidMonthsCovered
	}
	if err := reference.Validate(); err != nil {
		return YearMonth{}, fmt.Errorf("reference month: %w", err)
	}
	base := r.PaidThrough
	if base.IsZero() {
		base = reference
	}
	next, err := Advance(base, monthsCovered)
	if err != nil {
		return YearMonth{}, fmt.Errorf("resident %s: %w", r.ID, err)
	}
	return next, nil
}

// ApplyPayment returns a copy of r with PaidThrough advanced.
func ApplyPayment(r Resident, monthsCovered int, reference YearMonth) (Resident, error) {
	next, err := RecordPayment(r, monthsCovered, reference)
	if err != nil {
		return Resident{}, err
	}
	r.PaidThrough = next
	return r, nil
}

// ReplaceResident returns a new slice where the resident sharing updated.ID is
// swapped for updated. The input slice is left untouched. The second result is
// false when no resident matched.
func ReplaceResident(residents []Resident, updated Resident) ([]Resident, bool) {
	out := make([]Resident, len(residents))
	copy(out, residents)
	for i := range out {
		if out[i].ID == updated.ID {
			out[i] = updated
			return out, true
		}
	}
	return out, false
}
