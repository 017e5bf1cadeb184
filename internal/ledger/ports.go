// Package ledger defines the storage ports of the building ledger and the
// seed document used to populate a store.
package ledger

import (
	"context"
	"errors"

	"syndicpulse/internal/core"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// Ports for ledger storage adapters.
type (
	BuildingReader interface {
		ListBuildings(ctx context.Context) ([]core.Building, error)
		GetBuilding(ctx context.Context, buildingID string) (core.Building, error)
	}

	// ResidentStore returns residents in insertion order.
	ResidentStore interface {
		ListResidents(ctx context.Context, buildingID string) ([]core.Resident, error)
		GetResident(ctx context.Context, buildingID, residentID string) (core.Resident, error)
		AddResidents(ctx context.Context, buildingID string, residents ...core.Resident) error
	}

	// ExpenseJournal is append-only.
	ExpenseJournal interface {
		ListExpenses(ctx context.Context, buildingID string) ([]core.ExpenseEntry, error)
		AppendExpense(ctx context.Context, buildingID string, e core.ExpenseEntry) error
	}

	BreakdownReader interface {
		ExpenseBreakdown(ctx context.Context, buildingID string) ([]core.CategoryShare, error)
	}

	// PaymentLog stores the payment audit trail. RecordPayment sets the
	// resident's paid-through month and appends p in one step; concurrent
	// recordings for the same resident resolve last-write-wins.
	PaymentLog interface {
		RecordPayment(ctx context.Context, buildingID string, p core.Payment, paidThrough core.YearMonth) error
		ListPayments(ctx context.Context, buildingID string) ([]core.Payment, error)
	}

	Store interface {
		BuildingReader
		ResidentStore
		ExpenseJournal
		BreakdownReader
		PaymentLog
		Close() error
	}
)
