package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Zinaxy/HailAndCottonPrac/internal/ports"
)

// Dialect selects the bind parameter style of the SQL driver.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

func (d Dialect) String() string {
	switch d {
	case DialectSQLite:
		return "sqlite"
	case DialectPostgres:
		return "postgres"
	default:
		return "unknown"
	}
}

func (d Dialect) insertRecordQuery() string {
	if d == DialectPostgres {
		return `INSERT INTO package_records (position, record) VALUES ($1, $2);`
	}
	return `INSERT INTO package_records (position, record) VALUES (?, ?);`
}

// SQLSnapshotStore keeps one row per record in package_records, ordered by
// position. Replace swaps the whole table content inside one transaction.
type SQLSnapshotStore struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewSQLSnapshotStore(db *sql.DB, dialect Dialect) *SQLSnapshotStore {
	return &SQLSnapshotStore{DB: db, Dialect: dialect}
}

var _ ports.SnapshotStore = (*SQLSnapshotStore)(nil)

// Return all stored records ordered by position.
func (s *SQLSnapshotStore) Load(ctx context.Context) ([]string, error) {
	if s.DB == nil {
		return nil, errors.New("sql snapshot: DB is nil")
	}

	query := `
	SELECT record
	FROM package_records
	ORDER BY position;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load records: query package_records table: %w", err)
	}
	defer rows.Close()

	lines := make([]string, 0, 64)
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, fmt.Errorf("load records: scan row: %w", err)
		}
		lines = append(lines, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load records: row iteration: %w", err)
	}

	return lines, nil
}

func (s *SQLSnapshotStore) Replace(ctx context.Context, lines []string) error {
	if s.DB == nil {
		return errors.New("sql snapshot: DB is nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace records: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM package_records;`); err != nil {
		return fmt.Errorf("replace records: clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.Dialect.insertRecordQuery())
	if err != nil {
		return fmt.Errorf("replace records: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, line := range lines {
		if _, err := stmt.ExecContext(ctx, i+1, line); err != nil {
			return fmt.Errorf("replace records: insert position=%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace records: commit tx: %w", err)
	}

	return nil
}
