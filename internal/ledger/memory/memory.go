// Package memory is an in-process ledger.Store seeded from a ledger.Seed.
package memory

import (
	"context"
	"fmt"
	"sync"

	"syndicpulse/internal/core"
	"syndicpulse/internal/ledger"
)

type building struct {
	info      core.Building
	residents []core.Resident
	expenses  []core.ExpenseEntry
	breakdown []core.CategoryShare
	payments  []core.Payment
}

type Store struct {
	mu        sync.RWMutex
	order     []string
	buildings map[string]*building
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{buildings: make(map[string]*building)}
}

// NewFromSeed resolves seed against reference and loads every building.
func NewFromSeed(seed ledger.Seed, reference core.YearMonth) (*Store, error) {
	data, err := seed.Resolve(reference)
	if err != nil {
		return nil, err
	}
	s := New()
	for _, bd := range data {
		s.Load(bd)
	}
	return s, nil
}

// Load replaces (or adds) one building with its records.
func (s *Store) Load(bd ledger.BuildingData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buildings[bd.Building.ID]; !ok {
		s.order = append(s.order, bd.Building.ID)
	}
	s.buildings[bd.Building.ID] = &building{
		info:      bd.Building,
		residents: append([]core.Resident(nil), bd.Residents...),
		expenses:  append([]core.ExpenseEntry(nil), bd.Expenses...),
		breakdown: append([]core.CategoryShare(nil), bd.Breakdown...),
	}
}

func (s *Store) get(id string) (*building, error) {
	b, ok := s.buildings[id]
	if !ok {
		return nil, fmt.Errorf("building %s: %w", id, ledger.ErrNotFound)
	}
	return b, nil
}

func (s *Store) ListBuildings(_ context.Context) ([]core.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Building, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.buildings[id].info)
	}
	return out, nil
}

func (s *Store) GetBuilding(_ context.Context, buildingID string) (core.Building, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.get(buildingID)
	if err != nil {
		return core.Building{}, err
	}
	return b.info, nil
}

func (s *Store) ListResidents(_ context.Context, buildingID string) ([]core.Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.get(buildingID)
	if err != nil {
		return nil, err
	}
	return append([]core.Resident(nil), b.residents...), nil
}

func (s *Store) GetResident(_ context.Context, buildingID, residentID string) (core.Resident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.get(buildingID)
	if err != nil {
		return core.Resident{}, err
	}
	for _, r := range b.residents {
		if r.ID == residentID {
			return r, nil
		}
	}
	return core.Resident{}, fmt.Errorf("resident %s: %w", residentID, ledger.ErrNotFound)
}

// AddResidents appends all residents or none.
func (s *Store) AddResidents(_ context.Context, buildingID string, residents ...core.Resident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.get(buildingID)
	if err != nil {
		return err
	}
	ids := make(map[string]bool, len(b.residents)+len(residents))
	for _, r := range b.residents {
		ids[r.ID] = true
	}
	for _, r := range residents {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("resident %s: %w", r.ID, err)
		}
		if ids[r.ID] {
			return fmt.Errorf("resident %s: %w", r.ID, ledger.ErrDuplicate)
		}
		ids[r.ID] = true
	}
	next := make([]core.Resident, 0, len(b.residents)+len(residents))
	next = append(next, b.residents...)
	b.residents = append(next, residents...)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, buildingID string) ([]core.ExpenseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.get(buildingID)
	if err != nil {
		return nil, err
	}
	return append([]core.ExpenseEntry(nil), b.expenses...), nil
}

func (s *Store) AppendExpense(_ context.Context, buildingID string, e core.ExpenseEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.get(buildingID)
	if err != nil {
		return err
	}
	b.expenses = append(b.expenses, e)
	return nil
}

func (s *Store) ExpenseBreakdown(_ context.Context, buildingID string) ([]core.CategoryShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.get(buildingID)
	if err != nil {
		return nil, err
	}
	return append([]core.CategoryShare(nil), b.breakdown...), nil
}

// RecordPayment swaps in a copy of the resident with the new paid-through
// month and appends p to the audit trail.
func (s *Store) RecordPayment(_ context.Context, buildingID string, p core.Payment, paidThrough core.YearMonth) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.get(buildingID)
	if err != nil {
		return err
	}
	var current core.Resident
	found := false
	for _, r := range b.residents {
		if r.ID == p.ResidentID {
			current, found = r, true
			break
		}
	}
	if !found {
		return fmt.Errorf("resident %s: %w", p.ResidentID, ledger.ErrNotFound)
	}
	current.PaidThrough = paidThrough
	b.residents, _ = core.ReplaceResident(b.residents, current)
	b.payments = append(b.payments, p)
	return nil
}

func (s *Store) ListPayments(_ context.Context, buildingID string) ([]core.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, err := s.get(buildingID)
	if err != nil {
		return nil, err
	}
	return append([]core.Payment(nil), b.payments...), nil
}

func (s *Store) Close() error { return nil }
