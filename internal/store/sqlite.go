package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures
// WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS export_runs (
	id            TEXT PRIMARY KEY,
	input_path    TEXT NOT NULL,
	ticker_count  INTEGER NOT NULL,
	fetched_count INTEGER NOT NULL DEFAULT 0,
	output_path   TEXT,
	status        TEXT NOT NULL DEFAULT 'running',
	error         TEXT,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS quote_cache (
	ticker     TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_export_runs_status ON export_runs(status);
CREATE INDEX IF NOT EXISTS idx_export_runs_created_at ON export_runs(created_at);
CREATE INDEX IF NOT EXISTS idx_quote_cache_expires_at ON quote_cache(expires_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, inputPath string, tickerCount int) (*model.Run, error) {
	run := &model.Run{
		ID:          uuid.New().String(),
		InputPath:   inputPath,
		TickerCount: tickerCount,
		Status:      model.RunStatusRunning,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO export_runs (id, input_path, ticker_count, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputPath, run.TickerCount, string(run.Status), run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, status model.RunStatus, fetchedCount int, outputPath, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE export_runs
		 SET status = ?, fetched_count = ?, output_path = ?, error = ?, updated_at = ?
		 WHERE id = ?`,
		string(status), fetchedCount, outputPath, errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: complete run")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", runID)
	}
	return nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_path, ticker_count, fetched_count,
		        COALESCE(output_path, ''), status, COALESCE(error, ''),
		        created_at, updated_at
		 FROM export_runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var status string
		if err := rows.Scan(&r.ID, &r.InputPath, &r.TickerCount, &r.FetchedCount,
			&r.OutputPath, &status, &r.Error, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Status = model.RunStatus(status)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) GetCachedQuote(ctx context.Context, ticker string) (*CachedQuote, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM quote_cache WHERE ticker = ? AND expires_at > ?`,
		ticker, time.Now().UTC(),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached quote")
	}

	var q CachedQuote
	if err := json.Unmarshal([]byte(payload), &q); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached quote")
	}
	return &q, nil
}

func (s *SQLiteStore) SetCachedQuote(ctx context.Context, ticker string, q *CachedQuote, ttl time.Duration) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal cached quote")
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quote_cache (ticker, payload, cached_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(ticker) DO UPDATE SET payload = excluded.payload,
		   cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		ticker, string(payload), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached quote")
}

func (s *SQLiteStore) DeleteExpiredQuotes(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM quote_cache WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired quotes")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return int(n), nil
}
