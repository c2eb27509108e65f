// Package storage defines the Storage interface, the contract that any
// database backend must satisfy to hold cadastro records.
//
// Each method maps to exactly one SQL statement. "Not found" is reported
// through the boolean result, never as an error: an error always means
// the database itself failed.
package storage

import (
	"context"

	"github.com/mls-workflow/cadastro-api/internal/types"
)

// Storage is the database contract.
type Storage interface {
	// CreateRecord inserts a new record and returns the auto-generated
	// primary-key ID. The ID of rec is ignored.
	CreateRecord(ctx context.Context, rec types.Record) (int64, error)

	// GetRecordByID fetches a single record by primary key. ok is false
	// when no row matched.
	GetRecordByID(ctx context.Context, id int64) (rec types.Record, ok bool, err error)

	// ListRecords returns every record ordered by ID.
	// Returns an empty slice (not nil) if there are none.
	ListRecords(ctx context.Context) ([]types.Record, error)

	// UpdateRecordByID overwrites name, email and age of the record with
	// the given id. ok is false when no row matched.
	UpdateRecordByID(ctx context.Context, id int64, rec types.Record) (ok bool, err error)

	// DeleteRecordByID removes a record permanently. ok is false when no
	// row matched.
	DeleteRecordByID(ctx context.Context, id int64) (ok bool, err error)

	// Close releases the underlying connection pool.
	Close() error
}
