package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kabu-lab/kabuscreen/internal/export"
	"github.com/kabu-lab/kabuscreen/internal/model"
	"github.com/kabu-lab/kabuscreen/internal/quote"
	"github.com/kabu-lab/kabuscreen/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for runs, exports, and on-demand quotes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pipeline, st, err := newExportPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(ctx, pipeline, st, newProvider()),
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})

		return g.Wait()
	},
}

// newRouter builds the API routes. baseCtx outlives individual requests
// and scopes background exports.
func newRouter(baseCtx context.Context, pipeline *export.Pipeline, st store.Store, provider quote.Provider) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
		limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
		runs, err := st.ListRuns(req.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	r.Post("/export", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Input      string `json:"input"`
			Limit      int    `json:"limit"`
			IncludeETF bool   `json:"include_etf"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, eris.New("invalid request body"))
			return
		}
		if body.Limit < 0 {
			writeError(w, http.StatusBadRequest, eris.New("limit must be positive"))
			return
		}

		opts := exportOptions()
		if body.Input != "" {
			opts.InputPath = body.Input
		}
		opts.Limit = body.Limit
		opts.IncludeETF = body.IncludeETF

		// Exports run for minutes; respond immediately and log the outcome.
		go func() {
			res, err := pipeline.Run(baseCtx, opts)
			if err != nil {
				zap.L().Error("export failed", zap.Error(err))
				return
			}
			zap.L().Info("export complete",
				zap.String("output", res.OutputPath),
				zap.Int("fetched", res.FetchedCount),
			)
		}()

		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
	})

	r.Get("/quote/{ticker}", func(w http.ResponseWriter, req *http.Request) {
		ticker := chi.URLParam(req, "ticker")

		rec, err := provider.FetchFundamentals(req.Context(), ticker)
		if err != nil {
			writeError(w, http.StatusBadGateway, err)
			return
		}
		earnings, err := provider.FetchEarnings(req.Context(), ticker)
		if err != nil {
			zap.L().Warn("earnings unavailable", zap.String("ticker", ticker), zap.Error(err))
			earnings = model.EarningsHistory{}
		}

		records := []model.Record{{Financial: *rec, Earnings: earnings}}
		export.EnrichRecords(records)
		writeJSON(w, http.StatusOK, records[0])
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
