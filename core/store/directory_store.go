package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type Barangay struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Captain       string    `json:"captain,omitempty"`
	ContactNumber string    `json:"contact_number,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Hotline struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Number      string    `json:"number"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DirectoryStore covers the two reference directories the console maintains:
// barangays and emergency hotlines.
type DirectoryStore interface {
	CreateBarangay(ctx context.Context, b *Barangay) (int64, error)
	ListBarangays(ctx context.Context) ([]Barangay, error)
	UpdateBarangay(ctx context.Context, b *Barangay) error
	DeleteBarangay(ctx context.Context, id int64) error

	CreateHotline(ctx context.Context, h *Hotline) (int64, error)
	ListHotlines(ctx context.Context) ([]Hotline, error)
	UpdateHotline(ctx context.Context, h *Hotline) error
	DeleteHotline(ctx context.Context, id int64) error
}

type directoryStore struct {
	db *sql.DB
}

func NewDirectoryStore(db *sql.DB) DirectoryStore {
	return &directoryStore{db: db}
}

func (s *directoryStore) CreateBarangay(ctx context.Context, b *Barangay) (int64, error) {
	if strings.TrimSpace(b.Name) == "" {
		return 0, errors.New("barangay name required")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO barangays(name, captain, contact_number, created_at, updated_at) VALUES(?,?,?,?,?)`,
		strings.TrimSpace(b.Name), strings.TrimSpace(b.Captain), strings.TrimSpace(b.ContactNumber), now, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	b.ID = id
	b.CreatedAt = now
	b.UpdatedAt = now
	return id, nil
}

func (s *directoryStore) ListBarangays(ctx context.Context) ([]Barangay, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, captain, contact_number, created_at, updated_at FROM barangays ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Barangay
	for rows.Next() {
		var b Barangay
		if err := rows.Scan(&b.ID, &b.Name, &b.Captain, &b.ContactNumber, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

func (s *directoryStore) UpdateBarangay(ctx context.Context, b *Barangay) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE barangays SET name=?, captain=?, contact_number=?, updated_at=? WHERE id=?`,
		strings.TrimSpace(b.Name), strings.TrimSpace(b.Captain), strings.TrimSpace(b.ContactNumber), now, b.ID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	b.UpdatedAt = now
	return nil
}

func (s *directoryStore) DeleteBarangay(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM barangays WHERE id=?`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *directoryStore) CreateHotline(ctx context.Context, h *Hotline) (int64, error) {
	if strings.TrimSpace(h.Name) == "" || strings.TrimSpace(h.Number) == "" {
		return 0, errors.New("hotline name and number required")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO hotlines(name, number, description, created_at, updated_at) VALUES(?,?,?,?,?)`,
		strings.TrimSpace(h.Name), strings.TrimSpace(h.Number), strings.TrimSpace(h.Description), now, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	h.ID = id
	h.CreatedAt = now
	h.UpdatedAt = now
	return id, nil
}

func (s *directoryStore) ListHotlines(ctx context.Context) ([]Hotline, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, number, description, created_at, updated_at FROM hotlines ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Hotline
	for rows.Next() {
		var h Hotline
		if err := rows.Scan(&h.ID, &h.Name, &h.Number, &h.Description, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, h)
	}
	return res, rows.Err()
}

func (s *directoryStore) UpdateHotline(ctx context.Context, h *Hotline) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE hotlines SET name=?, number=?, description=?, updated_at=? WHERE id=?`,
		strings.TrimSpace(h.Name), strings.TrimSpace(h.Number), strings.TrimSpace(h.Description), now, h.ID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	h.UpdatedAt = now
	return nil
}

func (s *directoryStore) DeleteHotline(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM hotlines WHERE id=?`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}
