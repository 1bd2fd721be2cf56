// Package export orchestrates the screening run: read the ticker
// universe, fetch fundamentals per ticker with retry, join exchange
// metadata, enrich with derived ratios, and write the timestamped CSV.
package export

import (
	"context"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kabu-lab/kabuscreen/internal/indicator"
	"github.com/kabu-lab/kabuscreen/internal/model"
	"github.com/kabu-lab/kabuscreen/internal/quote"
	"github.com/kabu-lab/kabuscreen/internal/resilience"
	"github.com/kabu-lab/kabuscreen/internal/store"
	"github.com/kabu-lab/kabuscreen/internal/universe"
)

// Options configures one export run.
type Options struct {
	// InputPath is the listed-issues file (TSV or XLSX).
	InputPath string

	// Limit caps the universe size (0 = all). Negative is an error.
	Limit int

	// OutputDir receives the CSV. Created if missing.
	OutputDir string

	// IncludeETF keeps fund rows in the universe.
	IncludeETF bool

	// Encoding of the input file ("utf-8" or "shift_jis").
	Encoding string
}

// Result summarizes a completed export run.
type Result struct {
	RunID        string
	OutputPath   string
	TickerCount  int
	FetchedCount int
}

// Pipeline runs exports. Store is optional; when set it records run
// history and serves the quote cache.
type Pipeline struct {
	Provider quote.Provider
	Store    store.Store
	Retry    resilience.RetryConfig
	CacheTTL time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewPipeline builds a Pipeline with the standard fetch retry schedule.
func NewPipeline(provider quote.Provider, st store.Store, cacheTTL time.Duration) *Pipeline {
	return &Pipeline{
		Provider: provider,
		Store:    st,
		Retry:    resilience.FetchRetryConfig(),
		CacheTTL: cacheTTL,
		now:      time.Now,
	}
}

// Run executes the pipeline. Per-ticker fetch failures drop the ticker
// and continue; a missing input file, a negative limit, an empty
// universe, or zero successful fetches abort the run with no output.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Limit < 0 {
		return nil, eris.Errorf("export: limit must be positive, got %d", opts.Limit)
	}

	uopts := universe.Options{
		Limit:      opts.Limit,
		IncludeETF: opts.IncludeETF,
		Encoding:   opts.Encoding,
	}
	tickers, err := universe.ReadTickers(opts.InputPath, uopts)
	if err != nil {
		return nil, err
	}
	if len(tickers) == 0 {
		return nil, eris.Errorf("export: no tickers in %s", opts.InputPath)
	}

	meta, err := universe.LoadMeta(opts.InputPath, uopts)
	if err != nil {
		return nil, err
	}

	var runID string
	if p.Store != nil {
		run, err := p.Store.CreateRun(ctx, opts.InputPath, len(tickers))
		if err != nil {
			return nil, err
		}
		runID = run.ID
	}

	res, err := p.run(ctx, opts, tickers, meta)
	if p.Store != nil && runID != "" {
		status := model.RunStatusComplete
		errMsg := ""
		outputPath := ""
		fetched := 0
		if err != nil {
			status = model.RunStatusFailed
			errMsg = err.Error()
		} else {
			outputPath = res.OutputPath
			fetched = res.FetchedCount
		}
		if cerr := p.Store.CompleteRun(ctx, runID, status, fetched, outputPath, errMsg); cerr != nil {
			zap.L().Warn("export: record run", zap.Error(cerr))
		}
	}
	if err != nil {
		return nil, err
	}
	res.RunID = runID
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, opts Options, tickers []string, meta map[string]model.StockMeta) (*Result, error) {
	records := make([]model.Record, 0, len(tickers))
	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "export: canceled")
		}

		rec, earnings, ok := p.fetch(ctx, ticker)
		if !ok {
			continue
		}

		records = append(records, model.Record{
			Meta:      meta[ticker],
			Financial: *rec,
			Earnings:  earnings,
		})
	}

	if len(records) == 0 {
		return nil, eris.Errorf("export: no data fetched for any of %d tickers", len(tickers))
	}

	EnrichRecords(records)

	path, err := p.writeOutput(records, opts.OutputDir)
	if err != nil {
		return nil, err
	}

	zap.L().Info("export: complete",
		zap.Int("tickers", len(tickers)),
		zap.Int("fetched", len(records)),
		zap.String("output", path),
	)

	return &Result{
		OutputPath:   path,
		TickerCount:  len(tickers),
		FetchedCount: len(records),
	}, nil
}

// fetch returns fundamentals and earnings for ticker, consulting the
// quote cache first. ok is false when retries are exhausted and the
// ticker should be dropped.
func (p *Pipeline) fetch(ctx context.Context, ticker string) (*model.FinancialRecord, model.EarningsHistory, bool) {
	if p.Store != nil {
		cached, err := p.Store.GetCachedQuote(ctx, ticker)
		if err != nil {
			zap.L().Warn("export: cache read", zap.String("ticker", ticker), zap.Error(err))
		} else if cached != nil {
			return &cached.Record, cached.Earnings, true
		}
	}

	cfg := p.Retry
	cfg.ShouldRetry = fetchShouldRetry
	cfg.OnRetry = resilience.RetryLogger("fetch fundamentals", ticker)

	rec, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) (*model.FinancialRecord, error) {
		return p.Provider.FetchFundamentals(ctx, ticker)
	})
	if err != nil {
		zap.L().Warn("export: dropping ticker after retries",
			zap.String("ticker", ticker),
			zap.Error(err),
		)
		return nil, model.EarningsHistory{}, false
	}

	earnings, err := p.Provider.FetchEarnings(ctx, ticker)
	if err != nil {
		zap.L().Warn("export: earnings unavailable",
			zap.String("ticker", ticker),
			zap.Error(err),
		)
		earnings = model.EarningsHistory{}
	}

	if p.Store != nil && p.CacheTTL > 0 {
		q := &store.CachedQuote{Record: *rec, Earnings: earnings}
		if err := p.Store.SetCachedQuote(ctx, ticker, q, p.CacheTTL); err != nil {
			zap.L().Warn("export: cache write", zap.String("ticker", ticker), zap.Error(err))
		}
	}

	return rec, earnings, true
}

// fetchShouldRetry treats no-data responses as transient alongside the
// usual network and 5xx cases: the provider intermittently returns
// empty payloads for tickers it does cover.
func fetchShouldRetry(err error) bool {
	return resilience.IsTransient(err) || errors.Is(err, quote.ErrNoData)
}

// EnrichRecords fills the derived ratio columns and the earnings growth
// flag on every record.
func EnrichRecords(records []model.Record) {
	indicator.Enrich(records)
	for i := range records {
		r := &records[i]
		r.Ratios.PSR = indicator.PSR(r.Financial.MarketCap, r.Financial.TotalRevenue)
		r.Ratios.PEGRatio = indicator.PEGRatio(r.Financial.TrailingPE, r.Financial.EarningsGrowth)
		r.ConsecutiveGrowth = r.Earnings.ConsecutiveGrowth()
	}
}

func (p *Pipeline) writeOutput(records []model.Record, outputDir string) (string, error) {
	now := time.Now
	if p.now != nil {
		now = p.now
	}
	return WriteCSV(records, outputDir, now())
}
