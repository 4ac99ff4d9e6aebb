package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type Supplier struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Department        string     `json:"department"`
	ResponsibleUserID *int64     `json:"responsible_user_id,omitempty"`
	Status            string     `json:"status"`
	RAGStatus         string     `json:"rag_status"`
	ReviewDate        *time.Time `json:"review_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int        `json:"version"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

type Contract struct {
	ID          int64      `json:"id"`
	SupplierID  int64      `json:"supplier_id"`
	RefNo       string     `json:"ref_no"`
	Title       string     `json:"title"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	AnnualValue float64    `json:"annual_value"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Invoice struct {
	ID         int64      `json:"id"`
	ContractID int64      `json:"contract_id"`
	RefNo      string     `json:"ref_no"`
	Amount     float64    `json:"amount"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type SupplierFilter struct {
	Search     string
	Department string
	Status     string
	Limit      int
	Offset     int
}

type SuppliersStore interface {
	CreateSupplier(ctx context.Context, sup *Supplier) (int64, error)
	UpdateSupplier(ctx context.Context, sup *Supplier, expectedVersion int) error
	GetSupplier(ctx context.Context, id int64) (*Supplier, error)
	// FindSupplier looks up the import natural key: name within department,
	// case-insensitive.
	FindSupplier(ctx context.Context, name, department string) (*Supplier, error)
	ListSuppliers(ctx context.Context, filter SupplierFilter) ([]Supplier, error)
	SoftDeleteSupplier(ctx context.Context, id int64) error
	UpsertSupplier(ctx context.Context, sup *Supplier) (created bool, err error)

	CreateContract(ctx context.Context, c *Contract) (int64, error)
	UpdateContract(ctx context.Context, c *Contract) error
	ListContracts(ctx context.Context, supplierID int64) ([]Contract, error)
	GetContract(ctx context.Context, id int64) (*Contract, error)
	DeleteContract(ctx context.Context, id int64) error

	CreateInvoice(ctx context.Context, inv *Invoice) (int64, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	ListInvoices(ctx context.Context, contractID int64) ([]Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
}

type suppliersStore struct {
	db *sql.DB
}

func NewSuppliersStore(db *sql.DB) SuppliersStore {
	return &suppliersStore{db: db}
}

const supplierColumns = `id, name, department, responsible_user_id, status, rag_status, review_date, created_at, updated_at, version, deleted_at`

func (s *suppliersStore) CreateSupplier(ctx context.Context, sup *Supplier) (int64, error) {
	now := time.Now().UTC()
	if sup.Version <= 0 {
		sup.Version = 1
	}
	if strings.TrimSpace(sup.Status) == "" {
		sup.Status = "active"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers(name, department, responsible_user_id, status, rag_status, review_date, created_at, updated_at, version, deleted_at)
		VALUES(?,?,?,?,?,?,?,?,?,?)`,
		strings.TrimSpace(sup.Name), strings.TrimSpace(sup.Department), nullableID(sup.ResponsibleUserID),
		sup.Status, strings.TrimSpace(sup.RAGStatus), nullableTime(sup.ReviewDate), now, now, sup.Version, nil)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	sup.ID = id
	sup.CreatedAt = now
	sup.UpdatedAt = now
	return id, nil
}

func (s *suppliersStore) UpdateSupplier(ctx context.Context, sup *Supplier, expectedVersion int) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE suppliers SET name=?, department=?, responsible_user_id=?, status=?, rag_status=?, review_date=?, updated_at=?, version=version+1
		WHERE id=? AND version=?`,
		strings.TrimSpace(sup.Name), strings.TrimSpace(sup.Department), nullableID(sup.ResponsibleUserID),
		sup.Status, strings.TrimSpace(sup.RAGStatus), nullableTime(sup.ReviewDate), now, sup.ID, expectedVersion)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrConflict
	}
	sup.Version = expectedVersion + 1
	sup.UpdatedAt = now
	return nil
}

func (s *suppliersStore) GetSupplier(ctx context.Context, id int64) (*Supplier, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id=?`, id)
	return scanSupplier(row.Scan, true)
}

func (s *suppliersStore) FindSupplier(ctx context.Context, name, department string) (*Supplier, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT `+supplierColumns+` FROM suppliers
		WHERE LOWER(name)=LOWER(?) AND LOWER(department)=LOWER(?) AND deleted_at IS NULL`,
		n, strings.TrimSpace(department))
	return scanSupplier(row.Scan, true)
}

func (s *suppliersStore) ListSuppliers(ctx context.Context, filter SupplierFilter) ([]Supplier, error) {
	clauses := []string{"deleted_at IS NULL"}
	var args []any
	if dep := strings.TrimSpace(filter.Department); dep != "" {
		clauses = append(clauses, "department=?")
		args = append(args, dep)
	}
	if st := strings.TrimSpace(filter.Status); st != "" {
		clauses = append(clauses, "status=?")
		args = append(args, st)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		clauses = append(clauses, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q)+"%")
	}
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY name`
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Supplier
	for rows.Next() {
		sup, err := scanSupplier(rows.Scan, false)
		if err != nil {
			return nil, err
		}
		out = append(out, *sup)
	}
	return out, rows.Err()
}

func (s *suppliersStore) SoftDeleteSupplier(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE suppliers SET deleted_at=?, updated_at=?, version=version+1 WHERE id=? AND deleted_at IS NULL`, now, now, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *suppliersStore) UpsertSupplier(ctx context.Context, sup *Supplier) (bool, error) {
	existing, err := s.FindSupplier(ctx, sup.Name, sup.Department)
	if err != nil {
		return false, err
	}
	if existing == nil {
		_, err := s.CreateSupplier(ctx, sup)
		return true, err
	}
	sup.ID = existing.ID
	if err := s.UpdateSupplier(ctx, sup, existing.Version); err != nil {
		return false, err
	}
	return false, nil
}

func (s *suppliersStore) CreateContract(ctx context.Context, c *Contract) (int64, error) {
	now := time.Now().UTC()
	if strings.TrimSpace(c.Status) == "" {
		c.Status = "active"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO contracts(supplier_id, ref_no, title, start_date, end_date, annual_value, status, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?)`,
		c.SupplierID, strings.TrimSpace(c.RefNo), strings.TrimSpace(c.Title), nullableTime(c.StartDate),
		nullableTime(c.EndDate), c.AnnualValue, c.Status, now, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	c.ID = id
	return id, nil
}

func (s *suppliersStore) UpdateContract(ctx context.Context, c *Contract) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE contracts SET title=?, start_date=?, end_date=?, annual_value=?, status=?, updated_at=? WHERE id=?`,
		strings.TrimSpace(c.Title), nullableTime(c.StartDate), nullableTime(c.EndDate), c.AnnualValue, c.Status,
		time.Now().UTC(), c.ID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const contractColumns = `id, supplier_id, ref_no, title, start_date, end_date, annual_value, status, created_at, updated_at`

func (s *suppliersStore) GetContract(ctx context.Context, id int64) (*Contract, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id=?`, id)
	c, err := scanContract(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (s *suppliersStore) ListContracts(ctx context.Context, supplierID int64) ([]Contract, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+contractColumns+` FROM contracts WHERE supplier_id=? ORDER BY ref_no`, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Contract
	for rows.Next() {
		c, err := scanContract(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *suppliersStore) DeleteContract(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM contracts WHERE id=?`, id)
	return err
}

func (s *suppliersStore) CreateInvoice(ctx context.Context, inv *Invoice) (int64, error) {
	now := time.Now().UTC()
	if strings.TrimSpace(inv.Status) == "" {
		inv.Status = "pending"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices(contract_id, ref_no, amount, due_date, paid_at, status, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		inv.ContractID, strings.TrimSpace(inv.RefNo), inv.Amount, nullableTime(inv.DueDate), nullableTime(inv.PaidAt),
		inv.Status, now, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	inv.ID = id
	return id, nil
}

func (s *suppliersStore) UpdateInvoice(ctx context.Context, inv *Invoice) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invoices SET amount=?, due_date=?, paid_at=?, status=?, updated_at=? WHERE id=?`,
		inv.Amount, nullableTime(inv.DueDate), nullableTime(inv.PaidAt), inv.Status, time.Now().UTC(), inv.ID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *suppliersStore) ListInvoices(ctx context.Context, contractID int64) ([]Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, contract_id, ref_no, amount, due_date, paid_at, status, created_at, updated_at
		FROM invoices WHERE contract_id=? ORDER BY ref_no`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Invoice
	for rows.Next() {
		var inv Invoice
		var due, paid sql.NullTime
		if err := rows.Scan(&inv.ID, &inv.ContractID, &inv.RefNo, &inv.Amount, &due, &paid, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		if due.Valid {
			inv.DueDate = &due.Time
		}
		if paid.Valid {
			inv.PaidAt = &paid.Time
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *suppliersStore) DeleteInvoice(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id=?`, id)
	return err
}

func scanSupplier(scan func(...any) error, singleRow bool) (*Supplier, error) {
	var sup Supplier
	var responsible sql.NullInt64
	var review, deleted sql.NullTime
	err := scan(&sup.ID, &sup.Name, &sup.Department, &responsible, &sup.Status, &sup.RAGStatus, &review,
		&sup.CreatedAt, &sup.UpdatedAt, &sup.Version, &deleted)
	if err == sql.ErrNoRows && singleRow {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if responsible.Valid {
		sup.ResponsibleUserID = &responsible.Int64
	}
	if review.Valid {
		sup.ReviewDate = &review.Time
	}
	if deleted.Valid {
		sup.DeletedAt = &deleted.Time
	}
	return &sup, nil
}

func scanContract(scan func(...any) error) (*Contract, error) {
	var c Contract
	var start, end sql.NullTime
	if err := scan(&c.ID, &c.SupplierID, &c.RefNo, &c.Title, &start, &end, &c.AnnualValue, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if start.Valid {
		c.StartDate = &start.Time
	}
	if end.Valid {
		c.EndDate = &end.Time
	}
	return &c, nil
}
