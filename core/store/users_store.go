package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"
)

type User struct {
	ID                    int64      `json:"id"`
	Username              string     `json:"username"`
	Email                 string     `json:"email"`
	FullName              string     `json:"full_name"`
	Department            string     `json:"department"`
	Position              string     `json:"position"`
	PasswordHash          string     `json:"-"`
	Salt                  string     `json:"-"`
	RequirePasswordChange bool       `json:"require_password_change"`
	Active                bool       `json:"active"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type UserFilter struct {
	Search     string
	Department string
	ActiveOnly bool
	Limit      int
	Offset     int
}

type UsersStore interface {
	Create(ctx context.Context, user *User, roles []string) (int64, error)
	Update(ctx context.Context, user *User, roles []string) error
	GetByID(ctx context.Context, id int64) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, []string, error)
	List(ctx context.Context, filter UserFilter) ([]User, error)
	ListDirectory(ctx context.Context) ([]User, error)
	RolesFor(ctx context.Context, userID int64) ([]string, error)
}

type usersStore struct {
	db *sql.DB
}

func NewUsersStore(db *sql.DB) UsersStore {
	return &usersStore{db: db}
}

const userColumns = `id, username, email, full_name, department, position, password_hash, salt, require_password_change, active, created_at, updated_at`

func (s *usersStore) Create(ctx context.Context, user *User, roles []string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC()
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	res, err := tx.ExecContext(ctx, `
		INSERT INTO users(username, email, full_name, department, position, password_hash, salt, require_password_change, active, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		user.Username, strings.TrimSpace(user.Email), strings.TrimSpace(user.FullName), strings.TrimSpace(user.Department),
		strings.TrimSpace(user.Position), user.PasswordHash, user.Salt, boolToInt(user.RequirePasswordChange), boolToInt(user.Active), now, now)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	id, _ := res.LastInsertId()
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	if err := assignRolesTx(ctx, tx, id, roles); err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *usersStore) Update(ctx context.Context, user *User, roles []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET email=?, full_name=?, department=?, position=?, password_hash=?, salt=?, require_password_change=?, active=?, updated_at=?
		WHERE id=?`,
		strings.TrimSpace(user.Email), strings.TrimSpace(user.FullName), strings.TrimSpace(user.Department), strings.TrimSpace(user.Position),
		user.PasswordHash, user.Salt, boolToInt(user.RequirePasswordChange), boolToInt(user.Active), now, user.ID); err != nil {
		tx.Rollback()
		return err
	}
	if roles != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id=?`, user.ID); err != nil {
			tx.Rollback()
			return err
		}
		if err := assignRolesTx(ctx, tx, user.ID, roles); err != nil {
			tx.Rollback()
			return err
		}
	}
	user.UpdatedAt = now
	return tx.Commit()
}

func assignRolesTx(ctx context.Context, tx *sql.Tx, userID int64, roles []string) error {
	for _, role := range roles {
		name := strings.ToLower(strings.TrimSpace(role))
		if name == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO roles(name) VALUES(?)`, name); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO user_roles(user_id, role_id)
			SELECT ?, id FROM roles WHERE name=?`, userID, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *usersStore) GetByID(ctx context.Context, id int64) (*User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id)
	return scanUser(row)
}

func (s *usersStore) FindByUsername(ctx context.Context, username string) (*User, []string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username=?`,
		strings.ToLower(strings.TrimSpace(username)))
	user, err := scanUser(row)
	if err != nil || user == nil {
		return nil, nil, err
	}
	roles, err := s.RolesFor(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, roles, nil
}

func (s *usersStore) RolesFor(ctx context.Context, userID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.name FROM roles r JOIN user_roles ur ON ur.role_id=r.id WHERE ur.user_id=? ORDER BY r.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		roles = append(roles, name)
	}
	return roles, rows.Err()
}

func (s *usersStore) List(ctx context.Context, filter UserFilter) ([]User, error) {
	var clauses []string
	var args []any
	if filter.ActiveOnly {
		clauses = append(clauses, "active=1")
	}
	if dep := strings.TrimSpace(filter.Department); dep != "" {
		clauses = append(clauses, "department=?")
		args = append(args, dep)
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		clauses = append(clauses, "(LOWER(username) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?)")
		like := "%" + strings.ToLower(q) + "%"
		args = append(args, like, like, like)
	}
	query := `SELECT ` + userColumns + ` FROM users`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY full_name, username"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// ListDirectory returns every active user; the import resolver snapshots this
// once per job.
func (s *usersStore) ListDirectory(ctx context.Context) ([]User, error) {
	return s.List(ctx, UserFilter{ActiveOnly: true})
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var reqChange, active int
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Department, &u.Position,
		&u.PasswordHash, &u.Salt, &reqChange, &active, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.RequirePasswordChange = reqChange != 0
	u.Active = active != 0
	return &u, nil
}

func scanUserRows(rows *sql.Rows) (*User, error) {
	var u User
	var reqChange, active int
	if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.FullName, &u.Department, &u.Position,
		&u.PasswordHash, &u.Salt, &reqChange, &active, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.RequirePasswordChange = reqChange != 0
	u.Active = active != 0
	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func rolesToJSON(roles []string) string {
	if len(roles) == 0 {
		return "[]"
	}
	b, err := json.Marshal(roles)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func rolesFromJSON(raw string) []string {
	var roles []string
	if err := json.Unmarshal([]byte(raw), &roles); err != nil {
		return nil
	}
	return roles
}
