package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type NotificationsStore interface {
	Create(ctx context.Context, n *Notification) (int64, error)
	ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
}

type notificationsStore struct {
	db *sql.DB
}

func NewNotificationsStore(db *sql.DB) NotificationsStore {
	return &notificationsStore{db: db}
}

func (s *notificationsStore) Create(ctx context.Context, n *Notification) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications(user_id, kind, title, body, read_at, created_at) VALUES(?,?,?,?,?,?)`,
		n.UserID, strings.TrimSpace(n.Kind), strings.TrimSpace(n.Title), n.Body, nil, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	n.ID = id
	n.CreatedAt = now
	return id, nil
}

func (s *notificationsStore) ListForUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT id, user_id, kind, title, body, read_at, created_at FROM notifications WHERE user_id=?`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += ` ORDER BY id DESC LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Notification
	for rows.Next() {
		var n Notification
		var read sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &read, &n.CreatedAt); err != nil {
			return nil, err
		}
		if read.Valid {
			n.ReadAt = &read.Time
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *notificationsStore) MarkRead(ctx context.Context, id, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications SET read_at=? WHERE id=? AND user_id=? AND read_at IS NULL`,
		time.Now().UTC(), id, userID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
