// Package insight generates short natural-language commentary on the
// ranked screening results.
package insight

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kabu-lab/kabuscreen/internal/analysis"
	"github.com/kabu-lab/kabuscreen/pkg/anthropic"
)

const defaultModel = "claude-haiku-4-5-20251001"

const systemPrompt = `You are an equity research assistant. Given a ranked
list of Japanese stocks screened by net cash ratio, write a short factual
commentary (3-5 sentences) on notable concentrations by sector or market
cap and any outliers in the ranking. Do not give investment advice.`

// Generator produces commentary via the Anthropic API.
type Generator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewGenerator builds a Generator. An empty model selects the default.
func NewGenerator(client anthropic.Client, model string) *Generator {
	if model == "" {
		model = defaultModel
	}
	return &Generator{
		client:    client,
		model:     model,
		maxTokens: 1024,
	}
}

// Commentary returns a short text commentary on the ranked cohort.
func (g *Generator) Commentary(ctx context.Context, ranked []analysis.RankedStock, summary analysis.Summary) (string, error) {
	if len(ranked) == 0 {
		return "", eris.New("insight: empty ranking")
	}

	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     g.model,
		MaxTokens: g.maxTokens,
		System:    systemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildPrompt(ranked, summary)},
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "insight: commentary")
	}

	resp.Usage.LogCost(g.model, "insight")

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", eris.New("insight: empty response")
	}
	return text, nil
}

func buildPrompt(ranked []analysis.RankedStock, summary analysis.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Screened cohort: %d stocks, mean net cash ratio %.3f, median %.3f.\n\n",
		summary.Count, summary.MeanNetCashRatio, summary.MedianNetCashRatio)
	b.WriteString("rank\tticker\tname\tnet_cash_ratio\tmarket_cap\n")
	for _, r := range ranked {
		fmt.Fprintf(&b, "%d\t%s\t%s\t%.3f\t%.0f\n",
			r.Rank, r.Ticker, r.Name, r.NetCashRatio, r.MarketCap)
	}
	return b.String()
}
