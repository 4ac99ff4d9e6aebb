package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type RiskTheme struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type RiskCategory struct {
	ID                int64     `json:"id"`
	ThemeID           int64     `json:"theme_id"`
	ThemeName         string    `json:"theme_name,omitempty"`
	Name              string    `json:"name"`
	AppetiteThreshold float64   `json:"appetite_threshold"`
	CreatedAt         time.Time `json:"created_at"`
}

// Risk stores raw ordinal components only. Scores, RAG, tier and appetite are
// always recomputed from these on read; client-supplied derived values are
// ignored.
type Risk struct {
	ID                  int64      `json:"id"`
	RefNo               string     `json:"ref_no"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	CategoryID          *int64     `json:"category_id,omitempty"`
	Department          string     `json:"department"`
	OwnerUserID         *int64     `json:"owner_user_id,omitempty"`
	ResponsibleUserID   *int64     `json:"responsible_user_id,omitempty"`
	FinancialImpact     int        `json:"financial_impact"`
	RegulatoryImpact    int        `json:"regulatory_impact"`
	ReputationalImpact  int        `json:"reputational_impact"`
	InherentProbability int        `json:"inherent_probability"`
	ResidualImpact      int        `json:"residual_impact"`
	ResidualProbability int        `json:"residual_probability"`
	Status              string     `json:"status"`
	ReviewDate          *time.Time `json:"review_date,omitempty"`
	CreatedBy           *int64     `json:"created_by,omitempty"`
	UpdatedBy           *int64     `json:"updated_by,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	Version             int        `json:"version"`
	DeletedAt           *time.Time `json:"deleted_at,omitempty"`
}

type RiskControl struct {
	ID            int64     `json:"id"`
	RiskID        int64     `json:"risk_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Effectiveness string    `json:"effectiveness"`
	OwnerUserID   *int64    `json:"owner_user_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type RiskAction struct {
	ID          int64      `json:"id"`
	RiskID      int64      `json:"risk_id"`
	Title       string     `json:"title"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	OwnerUserID *int64     `json:"owner_user_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type RiskFilter struct {
	Search            string
	CategoryID        int64
	ThemeID           int64
	Department        string
	Status            string
	ResponsibleUserID int64
	IncludeDeleted    bool
	Limit             int
	Offset            int
}

type RisksStore interface {
	CreateTheme(ctx context.Context, theme *RiskTheme) (int64, error)
	ListThemes(ctx context.Context) ([]RiskTheme, error)
	DeleteTheme(ctx context.Context, id int64) error

	CreateCategory(ctx context.Context, cat *RiskCategory) (int64, error)
	UpdateCategory(ctx context.Context, cat *RiskCategory) error
	GetCategory(ctx context.Context, id int64) (*RiskCategory, error)
	ListCategories(ctx context.Context, themeID int64) ([]RiskCategory, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateRisk(ctx context.Context, risk *Risk) (int64, error)
	UpdateRisk(ctx context.Context, risk *Risk, expectedVersion int) error
	GetRisk(ctx context.Context, id int64) (*Risk, error)
	GetRiskByRefNo(ctx context.Context, refNo string) (*Risk, error)
	ListRisks(ctx context.Context, filter RiskFilter) ([]Risk, error)
	SoftDeleteRisk(ctx context.Context, id, updatedBy int64) error
	UpsertRiskByRefNo(ctx context.Context, risk *Risk) (created bool, err error)
	NextRefNo(ctx context.Context, prefix string) (string, error)

	CreateControl(ctx context.Context, c *RiskControl) (int64, error)
	UpdateControl(ctx context.Context, c *RiskControl) error
	ListControls(ctx context.Context, riskID int64) ([]RiskControl, error)
	DeleteControl(ctx context.Context, id int64) error

	CreateAction(ctx context.Context, a *RiskAction) (int64, error)
	UpdateAction(ctx context.Context, a *RiskAction) error
	ListActions(ctx context.Context, riskID int64) ([]RiskAction, error)
	ListActionsDueBefore(ctx context.Context, cutoff time.Time) ([]RiskAction, error)
	DeleteAction(ctx context.Context, id int64) error
}

type risksStore struct {
	db *sql.DB
}

func NewRisksStore(db *sql.DB) RisksStore {
	return &risksStore{db: db}
}

func (s *risksStore) CreateTheme(ctx context.Context, theme *RiskTheme) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO risk_themes(name) VALUES(?)`, strings.TrimSpace(theme.Name))
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	theme.ID = id
	return id, nil
}

func (s *risksStore) ListThemes(ctx context.Context) ([]RiskTheme, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM risk_themes ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RiskTheme
	for rows.Next() {
		var t RiskTheme
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *risksStore) DeleteTheme(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM risk_themes WHERE id=?`, id)
	return err
}

func (s *risksStore) CreateCategory(ctx context.Context, cat *RiskCategory) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO risk_categories(theme_id, name, appetite_threshold) VALUES(?,?,?)`,
		cat.ThemeID, strings.TrimSpace(cat.Name), cat.AppetiteThreshold)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	cat.ID = id
	return id, nil
}

func (s *risksStore) UpdateCategory(ctx context.Context, cat *RiskCategory) error {
	res, err := s.db.ExecContext(ctx, `UPDATE risk_categories SET theme_id=?, name=?, appetite_threshold=? WHERE id=?`,
		cat.ThemeID, strings.TrimSpace(cat.Name), cat.AppetiteThreshold, cat.ID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

const categoryColumns = `c.id, c.theme_id, t.name, c.name, c.appetite_threshold, c.created_at`

func (s *risksStore) GetCategory(ctx context.Context, id int64) (*RiskCategory, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+` FROM risk_categories c JOIN risk_themes t ON t.id=c.theme_id WHERE c.id=?`, id)
	var c RiskCategory
	err := row.Scan(&c.ID, &c.ThemeID, &c.ThemeName, &c.Name, &c.AppetiteThreshold, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *risksStore) ListCategories(ctx context.Context, themeID int64) ([]RiskCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM risk_categories c JOIN risk_themes t ON t.id=c.theme_id`
	var args []any
	if themeID > 0 {
		query += ` WHERE c.theme_id=?`
		args = append(args, themeID)
	}
	query += ` ORDER BY t.name, c.name`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RiskCategory
	for rows.Next() {
		var c RiskCategory
		if err := rows.Scan(&c.ID, &c.ThemeID, &c.ThemeName, &c.Name, &c.AppetiteThreshold, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *risksStore) DeleteCategory(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM risk_categories WHERE id=?`, id)
	return err
}

const riskColumns = `id, ref_no, title, description, category_id, department, owner_user_id, responsible_user_id,
	financial_impact, regulatory_impact, reputational_impact, inherent_probability, residual_impact, residual_probability,
	status, review_date, created_by, updated_by, created_at, updated_at, version, deleted_at`

func (s *risksStore) CreateRisk(ctx context.Context, risk *Risk) (int64, error) {
	now := time.Now().UTC()
	if risk.Version <= 0 {
		risk.Version = 1
	}
	if strings.TrimSpace(risk.Status) == "" {
		risk.Status = "open"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO risks(ref_no, title, description, category_id, department, owner_user_id, responsible_user_id,
			financial_impact, regulatory_impact, reputational_impact, inherent_probability, residual_impact, residual_probability,
			status, review_date, created_by, updated_by, created_at, updated_at, version, deleted_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		strings.TrimSpace(risk.RefNo), strings.TrimSpace(risk.Title), risk.Description, nullableID(risk.CategoryID),
		strings.TrimSpace(risk.Department), nullableID(risk.OwnerUserID), nullableID(risk.ResponsibleUserID),
		risk.FinancialImpact, risk.RegulatoryImpact, risk.ReputationalImpact, risk.InherentProbability,
		risk.ResidualImpact, risk.ResidualProbability, risk.Status, nullableTime(risk.ReviewDate),
		nullableID(risk.CreatedBy), nullableID(risk.UpdatedBy), now, now, risk.Version, nil)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	risk.ID = id
	risk.CreatedAt = now
	risk.UpdatedAt = now
	return id, nil
}

func (s *risksStore) UpdateRisk(ctx context.Context, risk *Risk, expectedVersion int) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE risks SET title=?, description=?, category_id=?, department=?, owner_user_id=?, responsible_user_id=?,
			financial_impact=?, regulatory_impact=?, reputational_impact=?, inherent_probability=?,
			residual_impact=?, residual_probability=?, status=?, review_date=?, updated_by=?, updated_at=?, version=version+1
		WHERE id=? AND version=?`,
		strings.TrimSpace(risk.Title), risk.Description, nullableID(risk.CategoryID), strings.TrimSpace(risk.Department),
		nullableID(risk.OwnerUserID), nullableID(risk.ResponsibleUserID),
		risk.FinancialImpact, risk.RegulatoryImpact, risk.ReputationalImpact, risk.InherentProbability,
		risk.ResidualImpact, risk.ResidualProbability, risk.Status, nullableTime(risk.ReviewDate),
		nullableID(risk.UpdatedBy), now, risk.ID, expectedVersion)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrConflict
	}
	risk.Version = expectedVersion + 1
	risk.UpdatedAt = now
	return nil
}

func (s *risksStore) GetRisk(ctx context.Context, id int64) (*Risk, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+riskColumns+` FROM risks WHERE id=?`, id)
	return scanRiskRow(row)
}

func (s *risksStore) GetRiskByRefNo(ctx context.Context, refNo string) (*Risk, error) {
	ref := strings.TrimSpace(refNo)
	if ref == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+riskColumns+` FROM risks WHERE ref_no=? COLLATE NOCASE`, ref)
	return scanRiskRow(row)
}

func (s *risksStore) ListRisks(ctx context.Context, filter RiskFilter) ([]Risk, error) {
	var clauses []string
	var args []any
	if !filter.IncludeDeleted {
		clauses = append(clauses, "deleted_at IS NULL")
	}
	if filter.CategoryID > 0 {
		clauses = append(clauses, "category_id=?")
		args = append(args, filter.CategoryID)
	}
	if filter.ThemeID > 0 {
		clauses = append(clauses, "category_id IN (SELECT id FROM risk_categories WHERE theme_id=?)")
		args = append(args, filter.ThemeID)
	}
	if dep := strings.TrimSpace(filter.Department); dep != "" {
		clauses = append(clauses, "department=?")
		args = append(args, dep)
	}
	if st := strings.TrimSpace(filter.Status); st != "" {
		clauses = append(clauses, "status=?")
		args = append(args, st)
	}
	if filter.ResponsibleUserID > 0 {
		clauses = append(clauses, "responsible_user_id=?")
		args = append(args, filter.ResponsibleUserID)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		clauses = append(clauses, "(LOWER(title) LIKE ? OR LOWER(ref_no) LIKE ? OR LOWER(description) LIKE ?)")
		like := "%" + strings.ToLower(q) + "%"
		args = append(args, like, like, like)
	}
	query := `SELECT ` + riskColumns + ` FROM risks`
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
	var out []Risk
	for rows.Next() {
		r, err := scanRiskRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func (s *risksStore) SoftDeleteRisk(ctx context.Context, id, updatedBy int64) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE risks SET deleted_at=?, updated_at=?, updated_by=?, version=version+1 WHERE id=? AND deleted_at IS NULL`,
		now, now, updatedBy, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrConflict
	}
	return nil
}

// UpsertRiskByRefNo is the import path: last writer wins on the natural key,
// no version check.
func (s *risksStore) UpsertRiskByRefNo(ctx context.Context, risk *Risk) (bool, error) {
	existing, err := s.GetRiskByRefNo(ctx, risk.RefNo)
	if err != nil {
		return false, err
	}
	if existing == nil {
		_, err := s.CreateRisk(ctx, risk)
		return true, err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE risks SET title=?, description=?, category_id=?, department=?, owner_user_id=?, responsible_user_id=?,
			financial_impact=?, regulatory_impact=?, reputational_impact=?, inherent_probability=?,
			residual_impact=?, residual_probability=?, status=?, review_date=?, updated_by=?, updated_at=?, version=version+1, deleted_at=NULL
		WHERE id=?`,
		strings.TrimSpace(risk.Title), risk.Description, nullableID(risk.CategoryID), strings.TrimSpace(risk.Department),
		nullableID(risk.OwnerUserID), nullableID(risk.ResponsibleUserID),
		risk.FinancialImpact, risk.RegulatoryImpact, risk.ReputationalImpact, risk.InherentProbability,
		risk.ResidualImpact, risk.ResidualProbability, risk.Status, nullableTime(risk.ReviewDate),
		nullableID(risk.UpdatedBy), now, existing.ID)
	if err != nil {
		return false, err
	}
	risk.ID = existing.ID
	return false, nil
}

func (s *risksStore) NextRefNo(ctx context.Context, prefix string) (string, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM risks`).Scan(&count); err != nil {
		return "", err
	}
	seq := count + 1
	for {
		candidate := refNoFromSeq(prefix, seq)
		existing, err := s.GetRiskByRefNo(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		seq++
	}
}

func (s *risksStore) CreateControl(ctx context.Context, c *RiskControl) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO risk_controls(risk_id, title, description, effectiveness, owner_user_id, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?)`,
		c.RiskID, strings.TrimSpace(c.Title), c.Description, strings.TrimSpace(c.Effectiveness), nullableID(c.OwnerUserID), now, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	c.ID = id
	return id, nil
}

func (s *risksStore) UpdateControl(ctx context.Context, c *RiskControl) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE risk_controls SET title=?, description=?, effectiveness=?, owner_user_id=?, updated_at=? WHERE id=?`,
		strings.TrimSpace(c.Title), c.Description, strings.TrimSpace(c.Effectiveness), nullableID(c.OwnerUserID), time.Now().UTC(), c.ID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *risksStore) ListControls(ctx context.Context, riskID int64) ([]RiskControl, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, risk_id, title, description, effectiveness, owner_user_id, created_at, updated_at
		FROM risk_controls WHERE risk_id=? ORDER BY id`, riskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RiskControl
	for rows.Next() {
		var c RiskControl
		var owner sql.NullInt64
		if err := rows.Scan(&c.ID, &c.RiskID, &c.Title, &c.Description, &c.Effectiveness, &owner, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if owner.Valid {
			c.OwnerUserID = &owner.Int64
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *risksStore) DeleteControl(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM risk_controls WHERE id=?`, id)
	return err
}

func (s *risksStore) CreateAction(ctx context.Context, a *RiskAction) (int64, error) {
	now := time.Now().UTC()
	if strings.TrimSpace(a.Status) == "" {
		a.Status = "open"
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO risk_actions(risk_id, title, status, due_date, owner_user_id, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?)`,
		a.RiskID, strings.TrimSpace(a.Title), a.Status, nullableTime(a.DueDate), nullableID(a.OwnerUserID), now, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	a.ID = id
	return id, nil
}

func (s *risksStore) UpdateAction(ctx context.Context, a *RiskAction) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE risk_actions SET title=?, status=?, due_date=?, owner_user_id=?, updated_at=? WHERE id=?`,
		strings.TrimSpace(a.Title), a.Status, nullableTime(a.DueDate), nullableID(a.OwnerUserID), time.Now().UTC(), a.ID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *risksStore) ListActions(ctx context.Context, riskID int64) ([]RiskAction, error) {
	return s.queryActions(ctx, `SELECT id, risk_id, title, status, due_date, owner_user_id, created_at, updated_at
		FROM risk_actions WHERE risk_id=? ORDER BY id`, riskID)
}

func (s *risksStore) ListActionsDueBefore(ctx context.Context, cutoff time.Time) ([]RiskAction, error) {
	return s.queryActions(ctx, `SELECT id, risk_id, title, status, due_date, owner_user_id, created_at, updated_at
		FROM risk_actions WHERE status!='done' AND due_date IS NOT NULL AND due_date <= ? ORDER BY due_date`, cutoff)
}

func (s *risksStore) queryActions(ctx context.Context, query string, args ...any) ([]RiskAction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RiskAction
	for rows.Next() {
		var a RiskAction
		var due sql.NullTime
		var owner sql.NullInt64
		if err := rows.Scan(&a.ID, &a.RiskID, &a.Title, &a.Status, &due, &owner, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if due.Valid {
			a.DueDate = &due.Time
		}
		if owner.Valid {
			a.OwnerUserID = &owner.Int64
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *risksStore) DeleteAction(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM risk_actions WHERE id=?`, id)
	return err
}

func scanRiskRow(row *sql.Row) (*Risk, error) {
	r, err := scanRiskFrom(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

func scanRiskRows(rows *sql.Rows) (*Risk, error) {
	return scanRiskFrom(rows.Scan)
}

func scanRiskFrom(scan func(...any) error) (*Risk, error) {
	var r Risk
	var categoryID, owner, responsible, createdBy, updatedBy sql.NullInt64
	var review, deleted sql.NullTime
	err := scan(&r.ID, &r.RefNo, &r.Title, &r.Description, &categoryID, &r.Department, &owner, &responsible,
		&r.FinancialImpact, &r.RegulatoryImpact, &r.ReputationalImpact, &r.InherentProbability,
		&r.ResidualImpact, &r.ResidualProbability, &r.Status, &review, &createdBy, &updatedBy,
		&r.CreatedAt, &r.UpdatedAt, &r.Version, &deleted)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		r.CategoryID = &categoryID.Int64
	}
	if owner.Valid {
		r.OwnerUserID = &owner.Int64
	}
	if responsible.Valid {
		r.ResponsibleUserID = &responsible.Int64
	}
	if createdBy.Valid {
		r.CreatedBy = &createdBy.Int64
	}
	if updatedBy.Valid {
		r.UpdatedBy = &updatedBy.Int64
	}
	if review.Valid {
		r.ReviewDate = &review.Time
	}
	if deleted.Valid {
		r.DeletedAt = &deleted.Time
	}
	return &r, nil
}
