package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Schema creates the usage table. Applied at startup; idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS usage_records (
    id          UUID PRIMARY KEY,
    request_id  TEXT NOT NULL,
    provider    TEXT NOT NULL,
    model       TEXT NOT NULL DEFAULT '',
    file_bytes  BIGINT NOT NULL,
    outcome     TEXT NOT NULL,
    http_status INT NOT NULL,
    gateway_ms  BIGINT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_records_created_at ON usage_records (created_at);
`

// DBConfig holds connection settings for the usage database.
type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Repository persists usage records to postgres.
type Repository struct {
	db *sqlx.DB
}

// NewRepository connects, verifies the connection, and ensures the
// schema exists.
func NewRepository(cfg DBConfig) (*Repository, error) {
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure usage schema: %w", err)
	}

	return &Repository{db: db}, nil
}

// WriteBatch inserts records in one transaction.
func (r *Repository) WriteBatch(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO usage_records
			(id, request_id, provider, model, file_bytes, outcome, http_status, gateway_ms, created_at)
		VALUES
			(:id, :request_id, :provider, :model, :file_bytes, :outcome, :http_status, :gateway_ms, :created_at)`

	for _, rec := range records {
		if _, err := tx.NamedExecContext(ctx, query, rec); err != nil {
			return fmt.Errorf("failed to insert usage record %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}
