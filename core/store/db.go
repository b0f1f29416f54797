package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dispatch-console/config"
	"dispatch-console/core/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// NewDB opens the configured database. SQLite is the default and needs no
// external service; postgres deployments set db_driver=postgres and a db_url.
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	driver := "sqlite"
	if cfg != nil && strings.TrimSpace(cfg.DBDriver) != "" {
		driver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	}
	switch driver {
	case "sqlite":
		path := "data/dispatch.db"
		if cfg != nil && strings.TrimSpace(cfg.DBPath) != "" {
			path = strings.TrimSpace(cfg.DBPath)
		}
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create db dir: %w", err)
			}
		}
		db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
		if err != nil {
			return nil, err
		}
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY churn under concurrent handlers.
		db.SetMaxOpenConns(1)
		if logger != nil {
			logger.Printf("DB sqlite open path=%s", path)
		}
		return db, nil
	case "postgres", "pgx":
		if cfg == nil || strings.TrimSpace(cfg.DBURL) == "" {
			return nil, fmt.Errorf("db_url required for postgres driver")
		}
		db, err := sql.Open("pgx", strings.TrimSpace(cfg.DBURL))
		if err != nil {
			return nil, err
		}
		if logger != nil {
			logger.Printf("DB postgres open")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}
