package store

import (
	"context"
	"database/sql"
	"fmt"

	"threatwatch/core/utils"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS threats (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		status TEXT NOT NULL,
		categories TEXT NOT NULL DEFAULT '[]',
		level INTEGER NOT NULL,
		resolution TEXT,
		created_at TIMESTAMP NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		threat_id INTEGER NOT NULL,
		action TEXT NOT NULL,
		details TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY(threat_id) REFERENCES threats(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		threat_id INTEGER NOT NULL,
		sender TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		FOREIGN KEY(threat_id) REFERENCES threats(id) ON DELETE CASCADE
	);`,
	`CREATE INDEX IF NOT EXISTS idx_threats_status ON threats(status);`,
	`CREATE INDEX IF NOT EXISTS idx_activity_log_threat ON activity_log(threat_id);`,
	`CREATE INDEX IF NOT EXISTS idx_messages_threat ON messages(threat_id);`,
}

// ApplyMigrations applies the sqlite schema. The postgres path goes through
// ApplyPostgresMigrations instead.
func ApplyMigrations(ctx context.Context, db *sql.DB, logger *utils.Logger) error {
	logger.Printf("applying sqlite migrations")
	for i, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlite migration #%d failed: %w", i+1, err)
		}
	}
	return nil
}
