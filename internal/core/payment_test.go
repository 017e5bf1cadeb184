package core

import (
	"errors"
	"testing"
)

func TestRecordPayment(t *testing.T) {
	r := Resident{ID: "r08", Unit: "Apt 6B", Name: "Mehdi Chraibi", PaidThrough: MustYearMonth(2026, 1)}

	next, err := RecordPayment(r, 2, febRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != MustYearMonth(2026, 3) {
		t.Fatalf("RecordPayment = %v, want 2026-03", next)
	}
	if r.PaidThrough != MustYearMonth(2026, 1) {
		t.Fatalf("input resident was modified")
	}
	r.PaidThrough = next
	if s, _ := Classify(r.PaidThrough, febRef); s != StatusPaid {
		t.Fatalf("after payment status = %v", s)
	}
}

func TestRecordPaymentNeverPaidStartsAtReference(t *testing.T) {
	r := Resident{ID: "new"}
	next, err := RecordPayment(r, 1, febRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != MustYearMonth(2026, 3) {
		t.Fatalf("RecordPayment = %v", next)
	}
}

func TestRecordPaymentRejectsNonPositive(t *testing.T) {
	r := Resident{ID: "r01", PaidThrough: MustYearMonth(2026, 1)}
	for _, n := range []int{0, -1} {
		if _, err := RecordPayment(r, n, febRef); !errors.Is(err, ErrInvalidMonthsCovered) {
			t.Fatalf("months=%d: expected ErrInvalidMonthsCovered, got %v", n, err)
		}
	}
}

func TestRecordPaymentComposes(t *testing.T) {
	starts := []YearMonth{{}, MustYearMonth(2025, 11), MustYearMonth(2026, 1), MustYearMonth(2026, 12)}
	for _, start := range starts {
		r := Resident{ID: "r", PaidThrough: start}
		for n := 1; n <= 12; n++ {
			for m := 1; m <= 12; m++ {
				first, err := RecordPayment(r, n, febRef)
				if err != nil {
					t.Fatalf("first: %v", err)
				}
				r2 := r
				r2.PaidThrough = first
				second, err := RecordPayment(r2, m, febRef)
				if err != nil {
					t.Fatalf("second: %v", err)
				}
				once, err := RecordPayment(r, n+m, febRef)
				if err != nil {
					t.Fatalf("once: %v", err)
				}
				if second != once {
					t.Fatalf("start=%v n=%d m=%d: %v != %v", start, n, m, second, once)
				}
			}
		}
	}
}

func TestApplyPaymentAndReplace(t *testing.T) {
	residents := []Resident{
		{ID: "r08", PaidThrough: MustYearMonth(2026, 1)},
		{ID: "r11", PaidThrough: MustYearMonth(2025, 11)},
	}
	updated, err := ApplyPayment(residents[1], 3, febRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out, ok := ReplaceResident(residents, updated)
	if !ok {
		t.Fatalf("resident not found")
	}
	if out[1].PaidThrough != MustYearMonth(2026, 2) {
		t.Fatalf("replaced paid-through = %v", out[1].PaidThrough)
	}
	if residents[1].PaidThrough != MustYearMonth(2025, 11) {
		t.Fatalf("input slice was modified")
	}
	if _, ok := ReplaceResident(residents, Resident{ID: "missing"}); ok {
		t.Fatalf("expected no match")
	}
}
