package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// Ping checks database connectivity
func (r *BaseRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Migrate creates the tables used by the postgres storage driver.
func (r *BaseRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS doctors (
	position   SERIAL,
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS doctor_summary (
	id         SMALLINT PRIMARY KEY DEFAULT 1 CHECK (id = 1),
	data       JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS patients (
	position   SERIAL,
	id         TEXT PRIMARY KEY,
	data       JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS appointments (
	seq              SERIAL,
	id               TEXT PRIMARY KEY,
	patient_name     TEXT NOT NULL,
	patient_phone    TEXT NOT NULL,
	selected_doctor  TEXT NOT NULL,
	appointment_date TEXT NOT NULL,
	appointment_time TEXT NOT NULL,
	notes            TEXT NOT NULL DEFAULT '',
	document_name    TEXT NOT NULL DEFAULT '',
	document_size    BIGINT NOT NULL DEFAULT 0,
	booking_date     TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL,
	created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS outbox_events (
	id            UUID PRIMARY KEY,
	event_type    TEXT NOT NULL,
	payload       JSONB NOT NULL,
	status        TEXT NOT NULL,
	error_message TEXT,
	retry_count   INT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL,
	processed_at  TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_outbox_events_status_created
	ON outbox_events (status, created_at);
`
