package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Notification struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

type NotificationsStore interface {
	AddNotification(ctx context.Context, n *Notification) (int64, error)
	ListNotifications(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

type notificationsStore struct {
	db *sql.DB
}

func NewNotificationsStore(db *sql.DB) NotificationsStore {
	return &notificationsStore{db: db}
}

func (s *notificationsStore) AddNotification(ctx context.Context, n *Notification) (int64, error) {
	if strings.TrimSpace(n.UserID) == "" {
		return 0, errors.New("notification user id required")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications(user_id, subject, body, read, created_at) VALUES(?,?,?,?,?)`,
		strings.TrimSpace(n.UserID), strings.TrimSpace(n.Subject), n.Body, boolToInt(n.Read), now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	n.ID = id
	n.CreatedAt = now
	return id, nil
}

func (s *notificationsStore) ListNotifications(ctx context.Context, userID string, limit int) ([]Notification, error) {
	query := `SELECT id, user_id, subject, body, read, created_at FROM notifications WHERE user_id=? ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query, strings.TrimSpace(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Notification
	for rows.Next() {
		var n Notification
		var read int
		if err := rows.Scan(&n.ID, &n.UserID, &n.Subject, &n.Body, &read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Read = read == 1
		res = append(res, n)
	}
	return res, rows.Err()
}

func (s *notificationsStore) MarkRead(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET read=1 WHERE id=?`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
