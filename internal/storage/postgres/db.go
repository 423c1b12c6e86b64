package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

// Open connects to PostgreSQL and tunes the connection pool.
func Open(ctx context.Context, dataSourceName string, log *zap.SugaredLogger) (*sql.DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Info("Successfully connected to PostgreSQL database.")
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           BIGINT PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	label        TEXT NOT NULL DEFAULT '',
	avatar       TEXT NOT NULL DEFAULT '',
	job_position TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS messages (
	id         BIGSERIAL PRIMARY KEY,
	content    TEXT NOT NULL,
	author_id  BIGINT REFERENCES users(id),
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	like_count INTEGER NOT NULL DEFAULT 0 CHECK (like_count >= 0)
);

CREATE TABLE IF NOT EXISTS message_likes (
	message_id BIGINT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	user_id    BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (message_id, user_id)
);

CREATE INDEX IF NOT EXISTS messages_created_at_idx ON messages (created_at DESC);
`

// Migrate creates the feed tables when they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
