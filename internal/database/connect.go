package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/tokenscope/internal/config"
)

// Connect creates a connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	connStr := BuildConnString(cfg)

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS tokens (
	id             TEXT PRIMARY KEY,
	symbol         TEXT NOT NULL,
	name           TEXT NOT NULL,
	pair_address   TEXT NOT NULL DEFAULT '',
	category       TEXT NOT NULL,
	price          DOUBLE PRECISION NOT NULL,
	previous_price DOUBLE PRECISION NOT NULL,
	volume_24h     DOUBLE PRECISION NOT NULL DEFAULT 0,
	market_cap     DOUBLE PRECISION NOT NULL DEFAULT 0,
	liquidity      DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS price_ticks (
	token_id   TEXT NOT NULL,
	price      DOUBLE PRECISION NOT NULL,
	ts         BIGINT NOT NULL,
	session_id TEXT NOT NULL,
	PRIMARY KEY (token_id, ts, session_id)
);
`

// Schema creates the tokens and price_ticks tables if missing.
func Schema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
