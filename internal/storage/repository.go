package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"syndicpulse/internal/core"
	"syndicpulse/internal/ledger"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the durable ledger.Store.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer keeps paid-through updates and payment inserts serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Bootstrap loads seed into an empty database. A database that already holds
// buildings is left untouched.
func (r *SQLiteRepository) Bootstrap(ctx context.Context, seed ledger.Seed, reference core.YearMonth) error {
	count, err := r.queries.CountBuildings(ctx)
	if err != nil {
		return fmt.Errorf("count buildings: %w", err)
	}
	if count > 0 {
		slog.InfoContext(ctx, "Skipping seed, database already populated", "buildings", count)
		return nil
	}

	data, err := seed.Resolve(reference)
	if err != nil {
		return fmt.Errorf("resolve seed: %w", err)
	}

	err = r.inTx(ctx, func(q *Queries) error {
		for _, bd := range data {
			if err := loadBuilding(ctx, q, bd); err != nil {
				return fmt.Errorf("building %s: %w", bd.Building.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Seed loaded into SQLite", "buildings", len(data))
	return nil
}

func loadBuilding(ctx context.Context, q *Queries, bd ledger.BuildingData) error {
	b := bd.Building
	if err := q.InsertBuilding(ctx, InsertBuildingParams{
		ID:          b.ID,
		OrgID:       b.OrgID,
		Name:        b.Name,
		City:        b.City,
		Address:     b.Address,
		TotalUnits:  int64(b.TotalUnits),
		ReserveFund: b.ReserveFund.Units,
		Manager:     b.Manager,
	}); err != nil {
		return fmt.Errorf("insert building: %w", err)
	}
	for _, res := range bd.Residents {
		if err := q.InsertResident(ctx, residentParams(b.ID, res)); err != nil {
			return fmt.Errorf("insert resident %s: %w", res.ID, err)
		}
	}
	for _, e := range bd.Expenses {
		if err := q.InsertExpense(ctx, expenseParams(b.ID, e)); err != nil {
			return fmt.Errorf("insert expense %s: %w", e.ID, err)
		}
	}
	for _, cs := range bd.Breakdown {
		if err := q.InsertCategoryShare(ctx, InsertCategoryShareParams{
			BuildingID: b.ID,
			Category:   cs.Category,
			Amount:     cs.Amount.Units,
			Percentage: int64(cs.Percentage),
		}); err != nil {
			return fmt.Errorf("insert category share %s: %w", cs.Category, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBuildings(ctx context.Context) ([]core.Building, error) {
	rows, err := r.queries.ListBuildings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	out := make([]core.Building, len(rows))
	for i, b := range rows {
		out[i] = toBuilding(b)
	}
	return out, nil
}

func (r *SQLiteRepository) GetBuilding(ctx context.Context, buildingID string) (core.Building, error) {
	b, err := r.queries.GetBuilding(ctx, buildingID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Building{}, fmt.Errorf("building %s: %w", buildingID, ledger.ErrNotFound)
	}
	if err != nil {
		return core.Building{}, fmt.Errorf("get building %s: %w", buildingID, err)
	}
	return toBuilding(b), nil
}

// requireBuilding turns a missing building into ledger.ErrNotFound, since
// list queries on an unknown id simply return no rows.
func (r *SQLiteRepository) requireBuilding(ctx context.Context, buildingID string) error {
	_, err := r.GetBuilding(ctx, buildingID)
	return err
}

func (r *SQLiteRepository) ListResidents(ctx context.Context, buildingID string) ([]core.Resident, error) {
	if err := r.requireBuilding(ctx, buildingID); err != nil {
		return nil, err
	}
	rows, err := r.queries.ListResidents(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("list residents: %w", err)
	}
	out := make([]core.Resident, 0, len(rows))
	for _, row := range rows {
		res, err := toResident(row)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (r *SQLiteRepository) GetResident(ctx context.Context, buildingID, residentID string) (core.Resident, error) {
	row, err := r.queries.GetResident(ctx, GetResidentParams{BuildingID: buildingID, ID: residentID})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Resident{}, fmt.Errorf("resident %s: %w", residentID, ledger.ErrNotFound)
	}
	if err != nil {
		return core.Resident{}, fmt.Errorf("get resident %s: %w", residentID, err)
	}
	return toResident(row)
}

// AddResidents inserts every resident in one transaction.
func (r *SQLiteRepository) AddResidents(ctx context.Context, buildingID string, residents ...core.Resident) error {
	if err := r.requireBuilding(ctx, buildingID); err != nil {
		return err
	}
	err := r.inTx(ctx, func(q *Queries) error {
		for _, res := range residents {
			if err := res.Validate(); err != nil {
				return fmt.Errorf("resident %s: %w", res.ID, err)
			}
			_, err := q.GetResident(ctx, GetResidentParams{BuildingID: buildingID, ID: res.ID})
			if err == nil {
				return fmt.Errorf("resident %s: %w", res.ID, ledger.ErrDuplicate)
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("check resident %s: %w", res.ID, err)
			}
			if err := q.InsertResident(ctx, residentParams(buildingID, res)); err != nil {
				return fmt.Errorf("insert resident %s: %w", res.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Residents saved to SQLite", "building_id", buildingID, "count", len(residents))
	return nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, buildingID string) ([]core.ExpenseEntry, error) {
	if err := r.requireBuilding(ctx, buildingID); err != nil {
		return nil, err
	}
	rows, err := r.queries.ListExpenses(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.ExpenseEntry, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("expense %s date %q: %w", row.ID, row.Date, err)
		}
		out = append(out, core.ExpenseEntry{
			ID:          row.ID,
			Date:        d,
			Category:    row.Category,
			Vendor:      row.Vendor,
			Amount:      core.Money{Units: row.Amount},
			Description: row.Description,
			HasInvoice:  row.HasInvoice,
		})
	}
	return out, nil
}

func (r *SQLiteRepository) AppendExpense(ctx context.Context, buildingID string, e core.ExpenseEntry) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := r.requireBuilding(ctx, buildingID); err != nil {
		return err
	}
	if err := r.queries.InsertExpense(ctx, expenseParams(buildingID, e)); err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"building_id", buildingID,
		"id", e.ID,
		"category", e.Category,
		"amount", e.Amount.Units,
		"date", e.Date.String())
	return nil
}

func (r *SQLiteRepository) ExpenseBreakdown(ctx context.Context, buildingID string) ([]core.CategoryShare, error) {
	if err := r.requireBuilding(ctx, buildingID); err != nil {
		return nil, err
	}
	rows, err := r.queries.ListCategoryShares(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("list category shares: %w", err)
	}
	out := make([]core.CategoryShare, len(rows))
	for i, row := range rows {
		out[i] = core.CategoryShare{
			Category:   row.Category,
			Amount:     core.Money{Units: row.Amount},
			Percentage: int(row.Percentage),
		}
	}
	return out, nil
}

// RecordPayment updates the resident and appends the audit row in one
// transaction.
func (r *SQLiteRepository) RecordPayment(ctx context.Context, buildingID string, p core.Payment, paidThrough core.YearMonth) error {
	err := r.inTx(ctx, func(q *Queries) error {
		n, err := q.UpdatePaidThrough(ctx, UpdatePaidThroughParams{
			PaidThrough: paidThrough.String(),
			BuildingID:  buildingID,
			ID:          p.ResidentID,
		})
		if err != nil {
			return fmt.Errorf("update paid through: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("resident %s: %w", p.ResidentID, ledger.ErrNotFound)
		}
		return q.InsertPayment(ctx, InsertPaymentParams{
			ID:            p.ID,
			BuildingID:    buildingID,
			ResidentID:    p.ResidentID,
			Amount:        p.Amount.Units,
			MonthsCovered: int64(p.MonthsCovered),
			Method:        string(p.Method),
			Date:          p.Date.String(),
			Reference:     p.Reference,
			PaidThrough:   paidThrough.String(),
		})
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Payment saved to SQLite",
		"building_id", buildingID,
		"resident_id", p.ResidentID,
		"months_covered", p.MonthsCovered,
		"paid_through", paidThrough.String())
	return nil
}

func (r *SQLiteRepository) ListPayments(ctx context.Context, buildingID string) ([]core.Payment, error) {
	if err := r.requireBuilding(ctx, buildingID); err != nil {
		return nil, err
	}
	rows, err := r.queries.ListPayments(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	out := make([]core.Payment, 0, len(rows))
	for _, row := range rows {
		d, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("payment %s date %q: %w", row.ID, row.Date, err)
		}
		out = append(out, core.Payment{
			ID:            row.ID,
			ResidentID:    row.ResidentID,
			Amount:        core.Money{Units: row.Amount},
			MonthsCovered: int(row.MonthsCovered),
			Method:        core.PaymentMethod(row.Method),
			Date:          d,
			Reference:     row.Reference,
		})
	}
	return out, nil
}

func toBuilding(b Building) core.Building {
	return core.Building{
		ID:          b.ID,
		OrgID:       b.OrgID,
		Name:        b.Name,
		City:        b.City,
		Address:     b.Address,
		TotalUnits:  int(b.TotalUnits),
		ReserveFund: core.Money{Units: b.ReserveFund},
		Manager:     b.Manager,
	}
}

func toResident(row Resident) (core.Resident, error) {
	pt, err := core.ParseOptionalYearMonth(row.PaidThrough)
	if err != nil {
		return core.Resident{}, fmt.Errorf("resident %s paid_through %q: %w", row.ID, row.PaidThrough, err)
	}
	return core.Resident{
		ID:          row.ID,
		Unit:        row.Unit,
		Name:        row.Name,
		Phone:       row.Phone,
		Floor:       int(row.Floor),
		Type:        core.ResidentType(row.Type),
		Since:       row.Since,
		PaidThrough: pt,
	}, nil
}

func residentParams(buildingID string, r core.Resident) InsertResidentParams {
	return InsertResidentParams{
		BuildingID:  buildingID,
		ID:          r.ID,
		Unit:        r.Unit,
		Name:        r.Name,
		Phone:       r.Phone,
		Floor:       int64(r.Floor),
		Type:        string(r.Type),
		Since:       r.Since,
		PaidThrough: r.PaidThrough.String(),
	}
}

func expenseParams(buildingID string, e core.ExpenseEntry) InsertExpenseParams {
	return InsertExpenseParams{
		BuildingID:  buildingID,
		ID:          e.ID,
		Date:        e.Date.String(),
		Category:    e.Category,
		Vendor:      e.Vendor,
		Amount:      e.Amount.Units,
		Description: e.Description,
		HasInvoice:  e.HasInvoice,
	}
}
