package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchema creates the snapshot table. The DDL is valid for both SQLite
// and PostgreSQL.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRecordsQuery := `
	CREATE TABLE IF NOT EXISTS package_records (
		position INTEGER PRIMARY KEY,
		record TEXT NOT NULL
	);
	`

	statements := []string{
		createRecordsQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
