package core

import (
	"errors"
	"testing"
)

var febRef = MustYearMonth(2026, 2)

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		paidThrough YearMonth
		want        PaymentStatus
	}{
		{"absent", YearMonth{}, StatusOverdue},
		{"current month", MustYearMonth(2026, 2), StatusPaid},
		{"ahead", MustYearMonth(2026, 6), StatusPaid},
		{"one behind", MustYearMonth(2026, 1), StatusPending},
		{"two behind", MustYearMonth(2025, 12), StatusOverdue},
		{"three behind", MustYearMonth(2025, 11), StatusOverdue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Classify(tc.paidThrough, febRef)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Classify(%v) = %v, want %v", tc.paidThrough, got, tc.want)
			}
		})
	}
}

func TestClassifyMonotonic(t *testing.T) {
	rank := map[PaymentStatus]int{StatusPaid: 0, StatusPending: 1, StatusOverdue: 2}
	for _, ref := range []YearMonth{MustYearMonth(2026, 2), MustYearMonth(2025, 12), MustYearMonth(2000, 1)} {
		prev := -1
		for behind := -24; behind <= 36; behind++ {
			pt, err := Advance(ref, -behind)
			if err != nil {
				t.Fatalf("Advance: %v", err)
			}
			s, err := Classify(pt, ref)
			if err != nil {
				t.Fatalf("Classify: %v", err)
			}
			if _, ok := rank[s]; !ok {
				t.Fatalf("status %v outside the enumeration", s)
			}
			if rank[s] < prev {
				t.Fatalf("behind=%d moved status back to %v", behind, s)
			}
			prev = rank[s]
		}
	}
}

func TestClassifyRejectsMalformed(t *testing.T) {
	if _, err := Classify(YearMonth{Year: 2026, Month: 13}, febRef); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth for paid-through, got %v", err)
	}
	if _, err := Classify(MustYearMonth(2026, 1), YearMonth{}); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth for reference, got %v", err)
	}
}

func TestBehind(t *testing.T) {
	behind, ok, err := Behind(MustYearMonth(2025, 11), febRef)
	if err != nil || !ok || behind != 3 {
		t.Fatalf("Behind = %d, %v, %v", behind, ok, err)
	}
	_, ok, err = Behind(YearMonth{}, febRef)
	if err != nil || ok {
		t.Fatalf("absent paid-through: ok=%v err=%v", ok, err)
	}
}

func TestStatusText(t *testing.T) {
	for _, s := range Statuses() {
		b, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText: %v", err)
		}
		var back PaymentStatus
		if err := back.UnmarshalText(b); err != nil || back != s {
			t.Fatalf("round trip %v -> %s -> %v (%v)", s, b, back, err)
		}
	}
	if StatusPending.Label() != "En attente" {
		t.Fatalf("Label = %q", StatusPending.Label())
	}
	if _, err := ParsePaymentStatus("late"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPaidThroughFor(t *testing.T) {
	for _, s := range Statuses() {
		pt, err := PaidThroughFor(s, febRef)
		if err != nil {
			t.Fatalf("PaidThroughFor(%v): %v", s, err)
		}
		got, _ := Classify(pt, febRef)
		if got != s {
			t.Fatalf("PaidThroughFor(%v) = %v classifies as %v", s, pt, got)
		}
	}
}

func TestSeedPaidThroughIsPending(t *testing.T) {
	pt, err := SeedPaidThrough(febRef)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pt != MustYearMonth(2026, 1) {
		t.Fatalf("SeedPaidThrough = %v", pt)
	}
	if s, _ := Classify(pt, febRef); s != StatusPending {
		t.Fatalf("seeded resident is %v", s)
	}
}
