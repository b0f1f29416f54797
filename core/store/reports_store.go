package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Report struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	WhatHappened     string     `json:"what_happened,omitempty"`
	WhoInvolved      string     `json:"who_involved,omitempty"`
	CategoryID       *int64     `json:"category_id,omitempty"`
	SubcategoryIndex *int       `json:"subcategory_index,omitempty"`
	StreetAddress    string     `json:"street_address,omitempty"`
	Barangay         string     `json:"barangay,omitempty"`
	NearbyLandmark   string     `json:"nearby_landmark,omitempty"`
	Latitude         *float64   `json:"latitude,omitempty"`
	Longitude        *float64   `json:"longitude,omitempty"`
	Status           string     `json:"status"`
	IncidentDate     string     `json:"incident_date,omitempty"`
	IncidentTime     string     `json:"incident_time,omitempty"`
	ArrivedAt        *time.Time `json:"arrived_at,omitempty"`
	IsArchived       bool       `json:"is_archived"`
	Attachments      []string   `json:"attachments,omitempty"`
	InvolvedOfficers []int64    `json:"involved_officers,omitempty"`
	ReporterID       string     `json:"reporter_id,omitempty"`
	PoliceNotes      string     `json:"police_notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

type Witness struct {
	ID        int64     `json:"id"`
	ReportID  int64     `json:"report_id"`
	UserID    string    `json:"user_id"`
	Statement string    `json:"statement,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportPatch is a partial field set; nil fields are left untouched.
type ReportPatch struct {
	Title            *string
	Description      *string
	WhatHappened     *string
	WhoInvolved      *string
	CategoryID       *int64
	SubcategoryIndex *int
	StreetAddress    *string
	Barangay         *string
	NearbyLandmark   *string
	Latitude         *float64
	Longitude        *float64
	Status           *string
	IncidentDate     *string
	IncidentTime     *string
	ArrivedAt        *time.Time
	IsArchived       *bool
	Attachments      []string
	InvolvedOfficers []int64
	PoliceNotes      *string
}

type ReportFilter struct {
	Status          string
	CategoryID      int64
	IncludeArchived bool
	Limit           int
	Offset          int
}

type ReportsStore interface {
	CreateReport(ctx context.Context, r *Report) (int64, error)
	GetReport(ctx context.Context, id int64) (*Report, error)
	ListReports(ctx context.Context, filter ReportFilter) ([]Report, error)
	UpdateReportFields(ctx context.Context, id int64, patch ReportPatch) (*Report, error)
	ArchiveReport(ctx context.Context, id int64) (*Report, error)
	RestoreReport(ctx context.Context, id int64) (*Report, error)

	AddWitness(ctx context.Context, w *Witness) (int64, error)
	ListWitnesses(ctx context.Context, reportID int64) ([]Witness, error)
	DeleteWitness(ctx context.Context, witnessID int64) error
}

type reportsStore struct {
	db *sql.DB
}

func NewReportsStore(db *sql.DB) ReportsStore {
	return &reportsStore{db: db}
}

const reportColumns = `id, title, description, what_happened, who_involved, category_id, subcategory_index,
	street_address, barangay, nearby_landmark, latitude, longitude, status, incident_date, incident_time,
	arrived_at, is_archived, attachments, involved_officers, reporter_id, police_notes, created_at, updated_at`

func (s *reportsStore) CreateReport(ctx context.Context, r *Report) (int64, error) {
	if strings.TrimSpace(r.Status) == "" {
		r.Status = "pending"
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reports(title, description, what_happened, who_involved, category_id, subcategory_index,
			street_address, barangay, nearby_landmark, latitude, longitude, status, incident_date, incident_time,
			arrived_at, is_archived, attachments, involved_officers, reporter_id, police_notes, created_at, updated_at)
		VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		strings.TrimSpace(r.Title), r.Description, r.WhatHappened, r.WhoInvolved,
		nullableID(r.CategoryID), nullableInt(r.SubcategoryIndex),
		strings.TrimSpace(r.StreetAddress), strings.TrimSpace(r.Barangay), strings.TrimSpace(r.NearbyLandmark),
		nullableFloat(r.Latitude), nullableFloat(r.Longitude), r.Status,
		strings.TrimSpace(r.IncidentDate), strings.TrimSpace(r.IncidentTime),
		nullableTime(r.ArrivedAt), boolToInt(r.IsArchived),
		stringsToJSON(r.Attachments), idsToJSON(r.InvolvedOfficers),
		strings.TrimSpace(r.ReporterID), r.PoliceNotes, now, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	r.ID = id
	r.CreatedAt = now
	r.UpdatedAt = now
	return id, nil
}

func (s *reportsStore) GetReport(ctx context.Context, id int64) (*Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reportColumns+` FROM reports WHERE id=?`, id)
	return scanReport(row)
}

func (s *reportsStore) ListReports(ctx context.Context, filter ReportFilter) ([]Report, error) {
	var clauses []string
	var args []any
	if !filter.IncludeArchived {
		clauses = append(clauses, "is_archived=0 AND status!='cancelled'")
	}
	if filter.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, filter.Status)
	}
	if filter.CategoryID > 0 {
		clauses = append(clauses, "category_id=?")
		args = append(args, filter.CategoryID)
	}
	query := `SELECT ` + reportColumns + ` FROM reports`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Report
	for rows.Next() {
		r, err := scanReportRow(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

func (s *reportsStore) UpdateReportFields(ctx context.Context, id int64, patch ReportPatch) (*Report, error) {
	var sets []string
	var args []any
	set := func(col string, val any) {
		sets = append(sets, col+"=?")
		args = append(args, val)
	}
	if patch.Title != nil {
		set("title", strings.TrimSpace(*patch.Title))
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.WhatHappened != nil {
		set("what_happened", *patch.WhatHappened)
	}
	if patch.WhoInvolved != nil {
		set("who_involved", *patch.WhoInvolved)
	}
	if patch.CategoryID != nil {
		set("category_id", *patch.CategoryID)
	}
	if patch.SubcategoryIndex != nil {
		set("subcategory_index", *patch.SubcategoryIndex)
	}
	if patch.StreetAddress != nil {
		set("street_address", strings.TrimSpace(*patch.StreetAddress))
	}
	if patch.Barangay != nil {
		set("barangay", strings.TrimSpace(*patch.Barangay))
	}
	if patch.NearbyLandmark != nil {
		set("nearby_landmark", strings.TrimSpace(*patch.NearbyLandmark))
	}
	if patch.Latitude != nil {
		set("latitude", *patch.Latitude)
	}
	if patch.Longitude != nil {
		set("longitude", *patch.Longitude)
	}
	if patch.Status != nil {
		set("status", strings.ToLower(strings.TrimSpace(*patch.Status)))
	}
	if patch.IncidentDate != nil {
		set("incident_date", strings.TrimSpace(*patch.IncidentDate))
	}
	if patch.IncidentTime != nil {
		set("incident_time", strings.TrimSpace(*patch.IncidentTime))
	}
	if patch.ArrivedAt != nil {
		set("arrived_at", patch.ArrivedAt.UTC())
	}
	if patch.IsArchived != nil {
		set("is_archived", boolToInt(*patch.IsArchived))
	}
	if patch.Attachments != nil {
		set("attachments", stringsToJSON(patch.Attachments))
	}
	if patch.InvolvedOfficers != nil {
		set("involved_officers", idsToJSON(patch.InvolvedOfficers))
	}
	if patch.PoliceNotes != nil {
		set("police_notes", *patch.PoliceNotes)
	}
	if len(sets) == 0 {
		return s.GetReport(ctx, id)
	}
	set("updated_at", time.Now().UTC())
	args = append(args, id)
	res, err := s.db.ExecContext(ctx, `UPDATE reports SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetReport(ctx, id)
}

func (s *reportsStore) ArchiveReport(ctx context.Context, id int64) (*Report, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE reports SET is_archived=1, updated_at=? WHERE id=?`, now, id)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetReport(ctx, id)
}

func (s *reportsStore) RestoreReport(ctx context.Context, id int64) (*Report, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `UPDATE reports SET is_archived=0, updated_at=? WHERE id=?`, now, id)
	if err != nil {
		return nil, err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetReport(ctx, id)
}

func (s *reportsStore) AddWitness(ctx context.Context, w *Witness) (int64, error) {
	if strings.TrimSpace(w.UserID) == "" {
		return 0, errors.New("witness user id required")
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO report_witnesses(report_id, user_id, statement, created_at) VALUES(?,?,?,?)`,
		w.ReportID, strings.TrimSpace(w.UserID), w.Statement, now)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	w.ID = id
	w.CreatedAt = now
	return id, nil
}

func (s *reportsStore) ListWitnesses(ctx context.Context, reportID int64) ([]Witness, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, report_id, user_id, statement, created_at
		FROM report_witnesses WHERE report_id=? ORDER BY created_at ASC, id ASC`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Witness
	for rows.Next() {
		var w Witness
		if err := rows.Scan(&w.ID, &w.ReportID, &w.UserID, &w.Statement, &w.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, w)
	}
	return res, rows.Err()
}

func (s *reportsStore) DeleteWitness(ctx context.Context, witnessID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM report_witnesses WHERE id=?`, witnessID)
	return err
}

type reportScanner interface {
	Scan(dest ...any) error
}

func scanReportFields(sc reportScanner) (Report, error) {
	var r Report
	var categoryID sql.NullInt64
	var subIdx sql.NullInt64
	var lat, lon sql.NullFloat64
	var arrived sql.NullTime
	var archived int
	var attachmentsRaw, officersRaw string
	err := sc.Scan(&r.ID, &r.Title, &r.Description, &r.WhatHappened, &r.WhoInvolved, &categoryID, &subIdx,
		&r.StreetAddress, &r.Barangay, &r.NearbyLandmark, &lat, &lon, &r.Status, &r.IncidentDate, &r.IncidentTime,
		&arrived, &archived, &attachmentsRaw, &officersRaw, &r.ReporterID, &r.PoliceNotes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return r, err
	}
	if categoryID.Valid {
		r.CategoryID = &categoryID.Int64
	}
	if subIdx.Valid {
		idx := int(subIdx.Int64)
		r.SubcategoryIndex = &idx
	}
	if lat.Valid {
		r.Latitude = &lat.Float64
	}
	if lon.Valid {
		r.Longitude = &lon.Float64
	}
	r.ArrivedAt = timeFromNull(arrived)
	r.IsArchived = archived == 1
	r.Attachments = jsonToStrings(attachmentsRaw)
	r.InvolvedOfficers = jsonToIDs(officersRaw)
	return r, nil
}

func scanReport(row *sql.Row) (*Report, error) {
	r, err := scanReportFields(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func scanReportRow(rows *sql.Rows) (Report, error) {
	return scanReportFields(rows)
}
