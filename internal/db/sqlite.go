package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const gamesSchema = `
CREATE TABLE IF NOT EXISTS games (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	board TEXT NOT NULL,
	current_player TEXT NOT NULL CHECK (current_player IN ('X', 'O')),
	status TEXT NOT NULL CHECK (status IN ('in_progress', 'won', 'draw')),
	winner TEXT CHECK (winner IN ('X', 'O')),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_games_created_at ON games(created_at DESC);
`

// SQLiteConnect opens the SQLite database at path and verifies the schema.
func SQLiteConnect(ctx context.Context, path string) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", path)
	pool, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	pool.SetMaxOpenConns(1)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}

	if err := InitializeSQLite(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	slog.InfoContext(ctx, "Connected to sqlite database", "db.path", path)
	return pool, nil
}

// InitializeSQLite creates the games table if it doesn't exist.
func InitializeSQLite(ctx context.Context, pool *sqlx.DB) error {
	if _, err := pool.ExecContext(ctx, gamesSchema); err != nil {
		return fmt.Errorf("failed to create games table: %w", err)
	}
	return nil
}
