// Package postgres implements storage.Storage on PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mls-workflow/cadastro-api/internal/storage"
	"github.com/mls-workflow/cadastro-api/internal/types"
)

// Postgres is the pgx-backed record store.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ storage.Storage = (*Postgres)(nil)

// New connects to dsn, pings the server and creates the cadastro table
// if it does not exist.
func New(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse dsn: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: new pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping db: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS cadastro (
			id    BIGSERIAL    PRIMARY KEY,
			name  VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			age   INTEGER      NOT NULL
		)
	`)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: create table: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// CreateRecord inserts rec and returns the generated id.
func (p *Postgres) CreateRecord(ctx context.Context, rec types.Record) (int64, error) {
	var id int64
	err := p.pool.QueryRow(ctx,
		`INSERT INTO cadastro (name, email, age) VALUES ($1, $2, $3) RETURNING id`,
		rec.Name, rec.Email, rec.Age,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("CreateRecord: insert: %w", err)
	}
	return id, nil
}

// GetRecordByID returns the record with the given id.
func (p *Postgres) GetRecordByID(ctx context.Context, id int64) (types.Record, bool, error) {
	var rec types.Record
	err := p.pool.QueryRow(ctx,
		`SELECT id, name, email, age FROM cadastro WHERE id = $1`,
		id,
	).Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.Age,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Record{}, false, nil
	}
	if err != nil {
		return types.Record{}, false, fmt.Errorf("GetRecordByID: scan: %w", err)
	}
	return rec, true, nil
}

// ListRecords returns all records ordered by id.
func (p *Postgres) ListRecords(ctx context.Context) ([]types.Record, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, email, age FROM cadastro ORDER BY id`)
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

// UpdateRecordByID overwrites all columns of the row with the given id.
func (p *Postgres) UpdateRecordByID(ctx context.Context, id int64, rec types.Record) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE cadastro SET name = $1, email = $2, age = $3 WHERE id = $4`,
		rec.Name, rec.Email, rec.Age, id,
	)
	if err != nil {
		return false, fmt.Errorf("UpdateRecordByID: exec: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteRecordByID removes the row with the given id.
func (p *Postgres) DeleteRecordByID(ctx context.Context, id int64) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM cadastro WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("DeleteRecordByID: exec: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
