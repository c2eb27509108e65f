// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// Two drivers are registered by the blank imports below and either can
// be selected by name:
//
//	"sqlite3": github.com/mattn/go-sqlite3, needs cgo
//	"sqlite":  modernc.org/sqlite, pure Go
//
// Both speak the same SQL, so nothing else in this file depends on the
// choice.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mls-workflow/cadastro-api/internal/storage"
	"github.com/mls-workflow/cadastro-api/internal/types"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at dsn with the named driver, creates
// the cadastro table if it does not already exist, and returns a
// ready-to-use *SQLite.
func New(ctx context.Context, driver, dsn string) (*SQLite, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// Every connection to ":memory:" gets its own empty database.
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS cadastro (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			name  TEXT    NOT NULL,
			email TEXT    NOT NULL,
			age   INTEGER NOT NULL
		)
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// CreateRecord inserts a new row into the cadastro table.
func (s *SQLite) CreateRecord(ctx context.Context, rec types.Record) (int64, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO cadastro (name, email, age) VALUES (?, ?, ?)",
	)
	if err != nil {
		return 0, fmt.Errorf("CreateRecord: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, rec.Name, rec.Email, rec.Age)
	if err != nil {
		return 0, fmt.Errorf("CreateRecord: exec: %w", err)
	}

	lastID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateRecord: last insert id: %w", err)
	}

	return lastID, nil
}

// GetRecordByID fetches exactly one row matched by primary key.
func (s *SQLite) GetRecordByID(ctx context.Context, id int64) (types.Record, bool, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, email, age FROM cadastro WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.Record{}, false, fmt.Errorf("GetRecordByID: prepare: %w", err)
	}
	defer stmt.Close()

	var rec types.Record
	err = stmt.QueryRowContext(ctx, id).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.Age,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Record{}, false, nil
	}
	if err != nil {
		return types.Record{}, false, fmt.Errorf("GetRecordByID: scan: %w", err)
	}

	return rec, true, nil
}

// ListRecords returns all rows as a slice.
func (s *SQLite) ListRecords(ctx context.Context) ([]types.Record, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, email, age FROM cadastro ORDER BY id",
	)
	if err != nil {
		return nil, fmt.Errorf("ListRecords: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRecords: query: %w", err)
	}
	defer rows.Close()

	records := make([]types.Record, 0)
	for rows.Next() {
		var rec types.Record
		if err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Email,
			&rec.Age,
		); err != nil {
			return nil, fmt.Errorf("ListRecords: scan row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRecords: rows iteration: %w", err)
	}

	return records, nil
}

// UpdateRecordByID writes every column of rec to the row with the given id.
func (s *SQLite) UpdateRecordByID(ctx context.Context, id int64, rec types.Record) (bool, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"UPDATE cadastro SET name = ?, email = ?, age = ? WHERE id = ?",
	)
	if err != nil {
		return false, fmt.Errorf("UpdateRecordByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, rec.Name, rec.Email, rec.Age, id)
	if err != nil {
		return false, fmt.Errorf("UpdateRecordByID: exec: %w", err)
	}

	return affected(result, "UpdateRecordByID")
}

// DeleteRecordByID removes a row by primary key.
func (s *SQLite) DeleteRecordByID(ctx context.Context, id int64) (bool, error) {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM cadastro WHERE id = ?")
	if err != nil {
		return false, fmt.Errorf("DeleteRecordByID: prepare: %w", err)
	}
	defer stmt.Close()

	result, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return false, fmt.Errorf("DeleteRecordByID: exec: %w", err)
	}

	return affected(result, "DeleteRecordByID")
}

// Close closes the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

func affected(result sql.Result, op string) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	return n > 0, nil
}
