package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"threatwatch/config"
	"threatwatch/core/utils"
)

// NewDB opens the configured database. The default is a single sqlite file,
// matching the deployment shape this service replaces; postgres is selected
// with db_driver=postgres and a db_url.
func NewDB(cfg *config.AppConfig, logger *utils.Logger) (*sql.DB, error) {
	if cfg != nil && cfg.DBDriver == "postgres" {
		db, err := sql.Open("pgx", cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		logger.Printf("connected to postgres")
		return db, nil
	}

	path := "data/threatwatch.db"
	if cfg != nil && cfg.DBPath != "" {
		path = cfg.DBPath
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY churn under concurrent handlers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	logger.Printf("opened sqlite database at %s", path)
	return db, nil
}
