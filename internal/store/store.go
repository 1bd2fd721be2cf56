// Package store persists export-run history and a TTL cache of fetched
// quotes, backed by SQLite or Postgres.
package store

import (
	"context"
	"time"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

// CachedQuote is one cached provider fetch: fundamentals plus earnings
// history, stored together so a cache hit skips both provider calls.
type CachedQuote struct {
	Record   model.FinancialRecord `json:"record"`
	Earnings model.EarningsHistory `json:"earnings"`
}

// Store defines the persistence interface for the export pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, inputPath string, tickerCount int) (*model.Run, error)
	CompleteRun(ctx context.Context, runID string, status model.RunStatus, fetchedCount int, outputPath, errMsg string) error
	ListRuns(ctx context.Context, limit int) ([]model.Run, error)

	// Quote cache. GetCachedQuote returns (nil, nil) on a miss or an
	// expired entry.
	GetCachedQuote(ctx context.Context, ticker string) (*CachedQuote, error)
	SetCachedQuote(ctx context.Context, ticker string, q *CachedQuote, ttl time.Duration) error
	DeleteExpiredQuotes(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
