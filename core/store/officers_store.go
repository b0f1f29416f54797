package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type Officer struct {
	ID               int64     `json:"id"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Email            string    `json:"email,omitempty"`
	BadgeNumber      string    `json:"badge_number"`
	Rank             string    `json:"rank"`
	AssignedReportID *int64    `json:"assigned_report_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type OfficersStore interface {
	CreateOfficer(ctx context.Context, o *Officer) (int64, error)
	GetOfficer(ctx context.Context, id int64) (*Officer, error)
	ListOfficers(ctx context.Context) ([]Officer, error)
	UpdateOfficer(ctx context.Context, o *Officer) error
	DeleteOfficer(ctx context.Context, id int64) error
	// AssignOfficer sets or clears the officer's active report. A nil
	// reportID releases the officer.
	AssignOfficer(ctx context.Context, officerID int64, reportID *int64) (*Officer, error)
	ListOfficersByReport(ctx context.Context, reportID int64) ([]Officer, error)
}

type officersStore struct {
	db *sql.DB
}

func NewOfficersStore(db *sql.DB) OfficersStore {
	return &officersStore{db: db}
}

const officerColumns = `id, first_name, last_name, email, badge_number, rank, assigned_report_id, created_at, updated_at`

func (s *officersStore) CreateOfficer(ctx context.Context, o *Officer) (int64, error) {
	if strings.TrimSpace(o.LastName) == "" && strings.TrimSpace(o.FirstName) == "" {
		return 0, errors.New("officer name required")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO officers(first_name, last_name, email, badge_number, rank, assigned_report_id, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?,?)`,
		strings.TrimSpace(o.FirstName), strings.TrimSpace(o.LastName), strings.TrimSpace(o.Email),
		strings.TrimSpace(o.BadgeNumber), strings.TrimSpace(o.Rank), nullableID(o.AssignedReportID), now, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	o.ID = id
	o.CreatedAt = now
	o.UpdatedAt = now
	return id, nil
}

func (s *officersStore) GetOfficer(ctx context.Context, id int64) (*Officer, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+officerColumns+` FROM officers WHERE id=?`, id)
	var o Officer
	var assigned sql.NullInt64
	if err := row.Scan(&o.ID, &o.FirstName, &o.LastName, &o.Email, &o.BadgeNumber, &o.Rank, &assigned, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if assigned.Valid {
		o.AssignedReportID = &assigned.Int64
	}
	return &o, nil
}

func (s *officersStore) ListOfficers(ctx context.Context) ([]Officer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+officerColumns+` FROM officers ORDER BY last_name ASC, first_name ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOfficers(rows)
}

func (s *officersStore) ListOfficersByReport(ctx context.Context, reportID int64) ([]Officer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+officerColumns+` FROM officers WHERE assigned_report_id=? ORDER BY id ASC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOfficers(rows)
}

func collectOfficers(rows *sql.Rows) ([]Officer, error) {
	var res []Officer
	for rows.Next() {
		var o Officer
		var assigned sql.NullInt64
		if err := rows.Scan(&o.ID, &o.FirstName, &o.LastName, &o.Email, &o.BadgeNumber, &o.Rank, &assigned, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		if assigned.Valid {
			o.AssignedReportID = &assigned.Int64
		}
		res = append(res, o)
	}
	return res, rows.Err()
}

func (s *officersStore) UpdateOfficer(ctx context.Context, o *Officer) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE officers SET first_name=?, last_name=?, email=?, badge_number=?, rank=?, updated_at=? WHERE id=?`,
		strings.TrimSpace(o.FirstName), strings.TrimSpace(o.LastName), strings.TrimSpace(o.Email),
		strings.TrimSpace(o.BadgeNumber), strings.TrimSpace(o.Rank), now, o.ID)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	o.UpdatedAt = now
	return nil
}

func (s *officersStore) DeleteOfficer(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM officers WHERE id=?`, id)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *officersStore) AssignOfficer(ctx context.Context, officerID int64, reportID *int64) (*Officer, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE officers SET assigned_report_id=?, updated_at=? WHERE id=?`,
		nullableID(reportID), now, officerID)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetOfficer(ctx, officerID)
}
