package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// WorkItem and GovernanceItem share a shape; governance items additionally
// carry a governance_type. Both upsert by ref_no during imports.
type WorkItem struct {
	ID                int64      `json:"id"`
	RefNo             string     `json:"ref_no"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	GovernanceType    string     `json:"governance_type,omitempty"`
	Department        string     `json:"department"`
	ResponsibleUserID *int64     `json:"responsible_user_id,omitempty"`
	Status            string     `json:"status"`
	RAGStatus         string     `json:"rag_status"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	CreatedBy         *int64     `json:"created_by,omitempty"`
	UpdatedBy         *int64     `json:"updated_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	Version           int        `json:"version"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

type WorkItemFilter struct {
	Search            string
	Department        string
	Status            string
	RAGStatus         string
	ResponsibleUserID int64
	DueBefore         *time.Time
	IncludeDeleted    bool
	Limit             int
	Offset            int
}

type WorkItemsStore interface {
	Create(ctx context.Context, item *WorkItem) (int64, error)
	Update(ctx context.Context, item *WorkItem, expectedVersion int) error
	Get(ctx context.Context, id int64) (*WorkItem, error)
	GetByRefNo(ctx context.Context, refNo string) (*WorkItem, error)
	List(ctx context.Context, filter WorkItemFilter) ([]WorkItem, error)
	SoftDelete(ctx context.Context, id, updatedBy int64) error
	UpsertByRefNo(ctx context.Context, item *WorkItem) (created bool, err error)
}

type workItemsStore struct {
	db    *sql.DB
	table string
	// governance_items has the extra governance_type column
	withType bool
}

func NewWorkItemsStore(db *sql.DB) WorkItemsStore {
	return &workItemsStore{db: db, table: "work_items"}
}

func NewGovernanceItemsStore(db *sql.DB) WorkItemsStore {
	return &workItemsStore{db: db, table: "governance_items", withType: true}
}

func (s *workItemsStore) columns() string {
	cols := `id, ref_no, title, description, `
	if s.withType {
		cols += `governance_type, `
	}
	cols += `department, responsible_user_id, status, rag_status, deadline, created_by, updated_by, created_at, updated_at, version, deleted_at`
	return cols
}

func (s *workItemsStore) Create(ctx context.Context, item *WorkItem) (int64, error) {
	now := time.Now().UTC()
	if item.Version <= 0 {
		item.Version = 1
	}
	if strings.TrimSpace(item.Status) == "" {
		item.Status = "open"
	}
	var res sql.Result
	var err error
	if s.withType {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO `+s.table+`(ref_no, title, description, governance_type, department, responsible_user_id, status, rag_status, deadline, created_by, updated_by, created_at, updated_at, version, deleted_at)
			VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			strings.TrimSpace(item.RefNo), strings.TrimSpace(item.Title), item.Description, strings.TrimSpace(item.GovernanceType),
			strings.TrimSpace(item.Department), nullableID(item.ResponsibleUserID), item.Status, strings.TrimSpace(item.RAGStatus),
			nullableTime(item.Deadline), nullableID(item.CreatedBy), nullableID(item.UpdatedBy), now, now, item.Version, nil)
	} else {
		res, err = s.db.ExecContext(ctx, `
			INSERT INTO `+s.table+`(ref_no, title, description, department, responsible_user_id, status, rag_status, deadline, created_by, updated_by, created_at, updated_at, version, deleted_at)
			VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			strings.TrimSpace(item.RefNo), strings.TrimSpace(item.Title), item.Description,
			strings.TrimSpace(item.Department), nullableID(item.ResponsibleUserID), item.Status, strings.TrimSpace(item.RAGStatus),
			nullableTime(item.Deadline), nullableID(item.CreatedBy), nullableID(item.UpdatedBy), now, now, item.Version, nil)
	}
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return id, nil
}

func (s *workItemsStore) Update(ctx context.Context, item *WorkItem, expectedVersion int) error {
	now := time.Now().UTC()
	set := `title=?, description=?, `
	args := []any{strings.TrimSpace(item.Title), item.Description}
	if s.withType {
		set += `governance_type=?, `
		args = append(args, strings.TrimSpace(item.GovernanceType))
	}
	set += `department=?, responsible_user_id=?, status=?, rag_status=?, deadline=?, updated_by=?, updated_at=?, version=version+1`
	args = append(args, strings.TrimSpace(item.Department), nullableID(item.ResponsibleUserID), item.Status,
		strings.TrimSpace(item.RAGStatus), nullableTime(item.Deadline), nullableID(item.UpdatedBy), now,
		item.ID, expectedVersion)
	res, err := s.db.ExecContext(ctx, `UPDATE `+s.table+` SET `+set+` WHERE id=? AND version=?`, args...)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrConflict
	}
	item.Version = expectedVersion + 1
	item.UpdatedAt = now
	return nil
}

func (s *workItemsStore) Get(ctx context.Context, id int64) (*WorkItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+s.columns()+` FROM `+s.table+` WHERE id=?`, id)
	item, err := s.scanFrom(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (s *workItemsStore) GetByRefNo(ctx context.Context, refNo string) (*WorkItem, error) {
	ref := strings.TrimSpace(refNo)
	if ref == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+s.columns()+` FROM `+s.table+` WHERE ref_no=? COLLATE NOCASE`, ref)
	item, err := s.scanFrom(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (s *workItemsStore) List(ctx context.Context, filter WorkItemFilter) ([]WorkItem, error) {
	var clauses []string
	var args []any
	if !filter.IncludeDeleted {
		clauses = append(clauses, "deleted_at IS NULL")
	}
	if dep := strings.TrimSpace(filter.Department); dep != "" {
		clauses = append(clauses, "department=?")
		args = append(args, dep)
	}
	if st := strings.TrimSpace(filter.Status); st != "" {
		clauses = append(clauses, "status=?")
		args = append(args, st)
	}
	if rag := strings.TrimSpace(filter.RAGStatus); rag != "" {
		clauses = append(clauses, "rag_status=?")
		args = append(args, rag)
	}
	if filter.ResponsibleUserID > 0 {
		clauses = append(clauses, "responsible_user_id=?")
		args = append(args, filter.ResponsibleUserID)
	}
	if filter.DueBefore != nil {
		clauses = append(clauses, "deadline IS NOT NULL AND deadline <= ?")
		args = append(args, filter.DueBefore.UTC())
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		clauses = append(clauses, "(LOWER(title) LIKE ? OR LOWER(ref_no) LIKE ?)")
		like := "%" + strings.ToLower(q) + "%"
		args = append(args, like, like)
	}
	query := `SELECT ` + s.columns() + ` FROM ` + s.table
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY ref_no"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WorkItem
	for rows.Next() {
		item, err := s.scanFrom(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *item)
	}
	return out, rows.Err()
}

func (s *workItemsStore) SoftDelete(ctx context.Context, id, updatedBy int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE `+s.table+` SET deleted_at=?, updated_at=?, updated_by=?, version=version+1 WHERE id=? AND deleted_at IS NULL`,
		now, now, updatedBy, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrConflict
	}
	return nil
}

func (s *workItemsStore) UpsertByRefNo(ctx context.Context, item *WorkItem) (bool, error) {
	existing, err := s.GetByRefNo(ctx, item.RefNo)
	if err != nil {
		return false, err
	}
	if existing == nil {
		_, err := s.Create(ctx, item)
		return true, err
	}
	item.ID = existing.ID
	if err := s.Update(ctx, item, existing.Version); err != nil {
		return false, err
	}
	return false, nil
}

func (s *workItemsStore) scanFrom(scan func(...any) error) (*WorkItem, error) {
	var item WorkItem
	var responsible, createdBy, updatedBy sql.NullInt64
	var deadline, deleted sql.NullTime
	dest := []any{&item.ID, &item.RefNo, &item.Title, &item.Description}
	if s.withType {
		dest = append(dest, &item.GovernanceType)
	}
	dest = append(dest, &item.Department, &responsible, &item.Status, &item.RAGStatus, &deadline,
		&createdBy, &updatedBy, &item.CreatedAt, &item.UpdatedAt, &item.Version, &deleted)
	if err := scan(dest...); err != nil {
		return nil, err
	}
	if responsible.Valid {
		item.ResponsibleUserID = &responsible.Int64
	}
	if createdBy.Valid {
		item.CreatedBy = &createdBy.Int64
	}
	if updatedBy.Valid {
		item.UpdatedBy = &updatedBy.Int64
	}
	if deadline.Valid {
		item.Deadline = &deadline.Time
	}
	if deleted.Valid {
		item.DeletedAt = &deleted.Time
	}
	return &item, nil
}
