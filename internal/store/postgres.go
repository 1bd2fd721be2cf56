package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: connect")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS export_runs (
	id            UUID PRIMARY KEY,
	input_path    TEXT NOT NULL,
	ticker_count  INTEGER NOT NULL,
	fetched_count INTEGER NOT NULL DEFAULT 0,
	output_path   TEXT,
	status        TEXT NOT NULL DEFAULT 'running',
	error         TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS quote_cache (
	ticker     TEXT PRIMARY KEY,
	payload    JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_export_runs_status ON export_runs(status);
CREATE INDEX IF NOT EXISTS idx_export_runs_created_at ON export_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_quote_cache_expires_at ON quote_cache(expires_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, inputPath string, tickerCount int) (*model.Run, error) {
	run := &model.Run{
		ID:          uuid.New().String(),
		InputPath:   inputPath,
		TickerCount: tickerCount,
		Status:      model.RunStatusRunning,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO export_runs (id, input_path, ticker_count, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.InputPath, run.TickerCount, string(run.Status), run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, fetchedCount int, outputPath, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE export_runs
		 SET status = $1, fetched_count = $2, output_path = $3, error = $4, updated_at = $5
		 WHERE id = $6`,
		string(status), fetchedCount, outputPath, errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: complete run")
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, input_path, ticker_count, fetched_count,
		        COALESCE(output_path, ''), status, COALESCE(error, ''),
		        created_at, updated_at
		 FROM export_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var status string
		if err := rows.Scan(&r.ID, &r.InputPath, &r.TickerCount, &r.FetchedCount,
			&r.OutputPath, &status, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		r.Status = model.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func (s *PostgresStore) GetCachedQuote(ctx context.Context, ticker string) (*CachedQuote, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM quote_cache WHERE ticker = $1 AND expires_at > now()`,
		ticker,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get cached quote")
	}

	var q CachedQuote
	if err := json.Unmarshal(payload, &q); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached quote")
	}
	return &q, nil
}

func (s *PostgresStore) SetCachedQuote(ctx context.Context, ticker string, q *CachedQuote, ttl time.Duration) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal cached quote")
	}
	now := time.Now().UTC()
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quote_cache (ticker, payload, cached_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (ticker) DO UPDATE SET payload = EXCLUDED.payload,
		   cached_at = EXCLUDED.cached_at, expires_at = EXCLUDED.expires_at`,
		ticker, payload, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached quote")
}

func (s *PostgresStore) DeleteExpiredQuotes(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM quote_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired quotes")
	}
	return int(tag.RowsAffected()), nil
}
