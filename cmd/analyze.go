package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kabu-lab/kabuscreen/internal/analysis"
	"github.com/kabu-lab/kabuscreen/internal/export"
	"github.com/kabu-lab/kabuscreen/internal/insight"
	"github.com/kabu-lab/kabuscreen/pkg/anthropic"
)

var (
	analyzeCSV      string
	analyzeConfig   string
	analyzeJSON     bool
	analyzeInsights bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank the latest export by net cash ratio",
	RunE: func(cmd *cobra.Command, args []string) error {
		acfg := analysis.DefaultConfig()
		if analyzeConfig != "" {
			c, err := analysis.LoadConfig(analyzeConfig)
			if err != nil {
				return err
			}
			acfg = c
		}

		csvPath := analyzeCSV
		if csvPath == "" {
			p, err := export.LatestCSV(cfg.Export.OutputDir)
			if err != nil {
				return err
			}
			csvPath = p
		}

		records, err := export.ReadCSV(csvPath)
		if err != nil {
			return err
		}

		ranked := analysis.RankByNetCash(records, acfg)
		summary := analysis.Summarize(ranked)

		commentary := ""
		if analyzeInsights {
			commentary = generateCommentary(cmd, ranked, summary)
		}

		out := cmd.OutOrStdout()
		if analyzeJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Source     string                 `json:"source"`
				Ranked     []analysis.RankedStock `json:"ranked"`
				Summary    analysis.Summary       `json:"summary"`
				Commentary string                 `json:"commentary,omitempty"`
			}{csvPath, ranked, summary, commentary})
		}

		fmt.Fprintf(out, "source: %s\n\n", csvPath)
		fmt.Fprintf(out, "%-5s %-8s %-24s %12s %16s\n", "rank", "ticker", "name", "net_cash", "market_cap")
		for _, r := range ranked {
			fmt.Fprintf(out, "%-5d %-8s %-24s %12.3f %16.0f\n",
				r.Rank, r.Ticker, r.Name, r.NetCashRatio, r.MarketCap)
		}
		fmt.Fprintf(out, "\n%d stocks, mean %.3f, median %.3f\n",
			summary.Count, summary.MeanNetCashRatio, summary.MedianNetCashRatio)
		if commentary != "" {
			fmt.Fprintf(out, "\n%s\n", commentary)
		}
		return nil
	},
}

// generateCommentary is best effort: a missing API key or a failed call
// logs a warning and the analysis still prints.
func generateCommentary(cmd *cobra.Command, ranked []analysis.RankedStock, summary analysis.Summary) string {
	if cfg.Insight.Key == "" {
		zap.L().Warn("insights requested but no API key configured, skipping")
		return ""
	}

	gen := insight.NewGenerator(anthropic.NewClient(cfg.Insight.Key), cfg.Insight.Model)
	text, err := gen.Commentary(cmd.Context(), ranked, summary)
	if err != nil {
		zap.L().Warn("commentary generation failed", zap.Error(err))
		return ""
	}
	return text
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCSV, "csv", "", "export CSV to analyze (default: newest in output dir)")
	analyzeCmd.Flags().StringVar(&analyzeConfig, "config", "", "analysis config YAML")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "emit JSON instead of a table")
	analyzeCmd.Flags().BoolVar(&analyzeInsights, "insights", false, "add Claude commentary on the ranking")
	rootCmd.AddCommand(analyzeCmd)
}
