package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const countBuildings = `SELECT COUNT(*) FROM buildings`

func (q *Queries) CountBuildings(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countBuildings).Scan(&n)
	return n, err
}

const insertBuilding = `INSERT INTO buildings (id, position, org_id, name, city, address, total_units, reserve_fund, manager)
VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM buildings), ?, ?, ?, ?, ?, ?, ?)`

type InsertBuildingParams struct {
	ID          string
	OrgID       string
	Name        string
	City        string
	Address     string
	TotalUnits  int64
	ReserveFund int64
	Manager     string
}

func (q *Queries) InsertBuilding(ctx context.Context, arg InsertBuildingParams) error {
	_, err := q.db.ExecContext(ctx, insertBuilding,
		arg.ID, arg.OrgID, arg.Name, arg.City, arg.Address, arg.TotalUnits, arg.ReserveFund, arg.Manager)
	return err
}

const buildingColumns = `id, position, org_id, name, city, address, total_units, reserve_fund, manager`

func scanBuilding(row interface{ Scan(...any) error }) (Building, error) {
	var b Building
	err := row.Scan(&b.ID, &b.Position, &b.OrgID, &b.Name, &b.City, &b.Address, &b.TotalUnits, &b.ReserveFund, &b.Manager)
	return b, err
}

const getBuilding = `SELECT ` + buildingColumns + ` FROM buildings WHERE id = ?`

func (q *Queries) GetBuilding(ctx context.Context, id string) (Building, error) {
	return scanBuilding(q.db.QueryRowContext(ctx, getBuilding, id))
}

const listBuildings = `SELECT ` + buildingColumns + ` FROM buildings ORDER BY position`

func (q *Queries) ListBuildings(ctx context.Context) ([]Building, error) {
	rows, err := q.db.QueryContext(ctx, listBuildings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Building
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

const residentColumns = `building_id, id, position, unit, name, phone, floor, type, since, paid_through`

func scanResident(row interface{ Scan(...any) error }) (Resident, error) {
	var r Resident
	err := row.Scan(&r.BuildingID, &r.ID, &r.Position, &r.Unit, &r.Name, &r.Phone, &r.Floor, &r.Type, &r.Since, &r.PaidThrough)
	return r, err
}

const listResidents = `SELECT ` + residentColumns + ` FROM residents WHERE building_id = ? ORDER BY position`

func (q *Queries) ListResidents(ctx context.Context, buildingID string) ([]Resident, error) {
	rows, err := q.db.QueryContext(ctx, listResidents, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Resident
	for rows.Next() {
		r, err := scanResident(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getResident = `SELECT ` + residentColumns + ` FROM residents WHERE building_id = ? AND id = ?`

type GetResidentParams struct {
	BuildingID string
	ID         string
}

func (q *Queries) GetResident(ctx context.Context, arg GetResidentParams) (Resident, error) {
	return scanResident(q.db.QueryRowContext(ctx, getResident, arg.BuildingID, arg.ID))
}

const insertResident = `INSERT INTO residents (building_id, id, position, unit, name, phone, floor, type, since, paid_through)
VALUES (?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM residents WHERE building_id = ?), ?, ?, ?, ?, ?, ?, ?)`

type InsertResidentParams struct {
	BuildingID  string
	ID          string
	Unit        string
	Name        string
	Phone       string
	Floor       int64
	Type        string
	Since       string
	PaidThrough string
}

func (q *Queries) InsertResident(ctx context.Context, arg InsertResidentParams) error {
	_, err := q.db.ExecContext(ctx, insertResident,
		arg.BuildingID, arg.ID, arg.BuildingID, arg.Unit, arg.Name, arg.Phone, arg.Floor, arg.Type, arg.Since, arg.PaidThrough)
	return err
}

const updatePaidThrough = `UPDATE residents SET paid_through = ? WHERE building_id = ? AND id = ?`

type UpdatePaidThroughParams struct {
	PaidThrough string
	BuildingID  string
	ID          string
}

func (q *Queries) UpdatePaidThrough(ctx context.Context, arg UpdatePaidThroughParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updatePaidThrough, arg.PaidThrough, arg.BuildingID, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const listExpenses = `SELECT seq, building_id, id, date, category, vendor, amount, description, has_invoice
FROM expenses WHERE building_id = ? ORDER BY seq`

func (q *Queries) ListExpenses(ctx context.Context, buildingID string) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.Seq, &e.BuildingID, &e.ID, &e.Date, &e.Category, &e.Vendor, &e.Amount, &e.Description, &e.HasInvoice); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const insertExpense = `INSERT INTO expenses (building_id, id, date, category, vendor, amount, description, has_invoice)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

type InsertExpenseParams struct {
	BuildingID  string
	ID          string
	Date        string
	Category    string
	Vendor      string
	Amount      int64
	Description string
	HasInvoice  bool
}

func (q *Queries) InsertExpense(ctx context.Context, arg InsertExpenseParams) error {
	_, err := q.db.ExecContext(ctx, insertExpense,
		arg.BuildingID, arg.ID, arg.Date, arg.Category, arg.Vendor, arg.Amount, arg.Description, arg.HasInvoice)
	return err
}

const listCategoryShares = `SELECT building_id, position, category, amount, percentage
FROM category_shares WHERE building_id = ? ORDER BY position`

func (q *Queries) ListCategoryShares(ctx context.Context, buildingID string) ([]CategoryShare, error) {
	rows, err := q.db.QueryContext(ctx, listCategoryShares, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryShare
	for rows.Next() {
		var c CategoryShare
		if err := rows.Scan(&c.BuildingID, &c.Position, &c.Category, &c.Amount, &c.Percentage); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const insertCategoryShare = `INSERT INTO category_shares (building_id, position, category, amount, percentage)
VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM category_shares WHERE building_id = ?), ?, ?, ?)`

type InsertCategoryShareParams struct {
	BuildingID string
	Category   string
	Amount     int64
	Percentage int64
}

func (q *Queries) InsertCategoryShare(ctx context.Context, arg InsertCategoryShareParams) error {
	_, err := q.db.ExecContext(ctx, insertCategoryShare,
		arg.BuildingID, arg.BuildingID, arg.Category, arg.Amount, arg.Percentage)
	return err
}

const insertPayment = `INSERT INTO payments (id, building_id, resident_id, amount, months_covered, method, date, reference, paid_through)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

type InsertPaymentParams struct {
	ID            string
	BuildingID    string
	ResidentID    string
	Amount        int64
	MonthsCovered int64
	Method        string
	Date          string
	Reference     string
	PaidThrough   string
}

func (q *Queries) InsertPayment(ctx context.Context, arg InsertPaymentParams) error {
	_, err := q.db.ExecContext(ctx, insertPayment,
		arg.ID, arg.BuildingID, arg.ResidentID, arg.Amount, arg.MonthsCovered, arg.Method, arg.Date, arg.Reference, arg.PaidThrough)
	return err
}

const listPayments = `SELECT seq, id, building_id, resident_id, amount, months_covered, method, date, reference, paid_through
FROM payments WHERE building_id = ? ORDER BY seq`

func (q *Queries) ListPayments(ctx context.Context, buildingID string) ([]Payment, error) {
	rows, err := q.db.QueryContext(ctx, listPayments, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.Seq, &p.ID, &p.BuildingID, &p.ResidentID, &p.Amount, &p.MonthsCovered, &p.Method, &p.Date, &p.Reference, &p.PaidThrough); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
