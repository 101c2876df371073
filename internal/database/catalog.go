package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/rickgao/tokenscope/internal/model"
	"github.com/rickgao/tokenscope/internal/provider"
)

// Querier runs a query returning rows. Satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const catalogQuery = `
SELECT id, symbol, name, pair_address, category,
       price, previous_price, volume_24h, market_cap, liquidity, created_at
FROM tokens
ORDER BY created_at, id`

// Catalog is a batch provider reading the tokens table.
type Catalog struct {
	db     Querier
	logger *slog.Logger
}

// NewCatalog creates a Catalog over db.
func NewCatalog(db Querier, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{db: db, logger: logger}
}

// Fetch returns every catalog token, oldest first.
func (c *Catalog) Fetch(ctx context.Context) ([]model.Token, error) {
	rows, err := c.db.Query(ctx, catalogQuery)
	if err != nil {
		return nil, &provider.FetchError{Source: "postgres", Err: fmt.Errorf("query tokens: %w", err)}
	}
	defer rows.Close()

	var tokens []model.Token
	for rows.Next() {
		tok, err := scanToken(rows)
		if err != nil {
			return nil, &provider.FetchError{Source: "postgres", Err: err}
		}
		tokens = append(tokens, tok)
	}
	if err := rows.Err(); err != nil {
		return nil, &provider.FetchError{Source: "postgres", Err: fmt.Errorf("iterate tokens: %w", err)}
	}

	c.logger.Debug("loaded catalog", "count", len(tokens))
	return tokens, nil
}

// scanToken maps one tokens row to a model.Token.
func scanToken(row pgx.Row) (model.Token, error) {
	var (
		tok       model.Token
		category  string
		createdAt time.Time
	)

	err := row.Scan(
		&tok.ID,
		&tok.Symbol,
		&tok.Name,
		&tok.PairAddress,
		&category,
		&tok.Price,
		&tok.PreviousPrice,
		&tok.Volume24h,
		&tok.MarketCap,
		&tok.Liquidity,
		&createdAt,
	)
	if err != nil {
		return model.Token{}, fmt.Errorf("scan token: %w", err)
	}

	tok.Category, err = model.ParseCategory(category)
	if err != nil {
		return model.Token{}, fmt.Errorf("token %s: %w", tok.ID, err)
	}
	tok.CreatedAt = createdAt.UnixMilli()

	return tok, nil
}
