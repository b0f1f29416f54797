package store

import (
	"context"
	"database/sql"
	"fmt"

	"dispatch-console/core/utils"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		full_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'dispatcher',
		active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		username TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT '',
		csrf_token TEXT NOT NULL,
		ip TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_seen_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		expires_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		action TEXT NOT NULL,
		details TEXT,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		subcategories TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		what_happened TEXT NOT NULL DEFAULT '',
		who_involved TEXT NOT NULL DEFAULT '',
		category_id INTEGER,
		subcategory_index INTEGER,
		street_address TEXT NOT NULL DEFAULT '',
		barangay TEXT NOT NULL DEFAULT '',
		nearby_landmark TEXT NOT NULL DEFAULT '',
		latitude REAL,
		longitude REAL,
		status TEXT NOT NULL DEFAULT 'pending',
		incident_date TEXT NOT NULL DEFAULT '',
		incident_time TEXT NOT NULL DEFAULT '',
		arrived_at TIMESTAMP,
		is_archived INTEGER NOT NULL DEFAULT 0,
		attachments TEXT NOT NULL DEFAULT '[]',
		involved_officers TEXT NOT NULL DEFAULT '[]',
		reporter_id TEXT NOT NULL DEFAULT '',
		police_notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS report_witnesses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id INTEGER NOT NULL,
		user_id TEXT NOT NULL,
		statement TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY(report_id) REFERENCES reports(id) ON DELETE CASCADE
	);`,
	`CREATE INDEX IF NOT EXISTS idx_report_witnesses_report ON report_witnesses(report_id);`,
	`CREATE TABLE IF NOT EXISTS officers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		badge_number TEXT NOT NULL DEFAULT '',
		rank TEXT NOT NULL DEFAULT '',
		assigned_report_id INTEGER,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS barangays (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		captain TEXT NOT NULL DEFAULT '',
		contact_number TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS hotlines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		number TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		subject TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '',
		read INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_archived ON reports(is_archived);`,
}

// ApplyMigrations runs the ordered statement list. Statements are written so
// re-running them is harmless.
func ApplyMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if logger != nil {
		logger.Printf("DB migrations applied (%d statements)", len(migrations))
	}
	return nil
}
