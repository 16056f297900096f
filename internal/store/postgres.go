package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const initSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            SERIAL PRIMARY KEY,
	first_name    VARCHAR(50)  NOT NULL,
	last_name     VARCHAR(50)  NOT NULL,
	email         VARCHAR(100) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	user_type     VARCHAR(50)  NOT NULL DEFAULT 'healthcare',
	is_active     BOOLEAN      NOT NULL DEFAULT TRUE,
	is_verified   BOOLEAN      NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ,
	last_login    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS analyses (
	id                 UUID PRIMARY KEY,
	user_id            INTEGER NOT NULL REFERENCES users(id),
	filename           TEXT    NOT NULL,
	file_size_bytes    BIGINT  NOT NULL,
	predicted_class    TEXT    NOT NULL,
	primary_confidence DOUBLE PRECISION NOT NULL,
	model_version      TEXT    NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS analyses_user_idx ON analyses (user_id, created_at DESC);
`

// Store wraps the Postgres connection used for accounts and analysis history.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

func New(ctx context.Context, connStr string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, initSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{
		db:     db,
		logger: logger.Named("postgres"),
	}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
