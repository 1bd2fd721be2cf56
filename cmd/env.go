package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/kabu-lab/kabuscreen/internal/export"
	"github.com/kabu-lab/kabuscreen/internal/quote"
	"github.com/kabu-lab/kabuscreen/internal/store"
)

// newStore opens the configured store backend and applies migrations.
func newStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	switch cfg.Store.Driver {
	case "sqlite":
		s, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = s
	case "postgres":
		s, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		st = s
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func newProvider() quote.Provider {
	return quote.NewYahooClient(quote.Config{
		BaseURL:        cfg.Quote.BaseURL,
		UserAgent:      cfg.Quote.UserAgent,
		Timeout:        time.Duration(cfg.Quote.TimeoutSecs) * time.Second,
		RequestsPerSec: cfg.Quote.RequestsPerSec,
	})
}

// newExportPipeline wires the provider and store into a pipeline. The
// caller closes the returned store.
func newExportPipeline(ctx context.Context) (*export.Pipeline, store.Store, error) {
	st, err := newStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	ttl := time.Duration(cfg.Quote.CacheTTLHours) * time.Hour
	return export.NewPipeline(newProvider(), st, ttl), st, nil
}
