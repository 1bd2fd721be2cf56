package insight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kabu-lab/kabuscreen/internal/analysis"
	"github.com/kabu-lab/kabuscreen/pkg/anthropic"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type stubClient struct {
	req  anthropic.MessageRequest
	resp *anthropic.MessageResponse
	err  error
}

func (s *stubClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.req = req
	return s.resp, s.err
}

func sampleRanking() ([]analysis.RankedStock, analysis.Summary) {
	ranked := []analysis.RankedStock{
		{Rank: 1, Ticker: "7203", Name: "トヨタ自動車", NetCashRatio: 0.9, MarketCap: 3e13},
		{Rank: 2, Ticker: "1301", Name: "極洋", NetCashRatio: 0.5, MarketCap: 4e10},
	}
	return ranked, analysis.Summarize(ranked)
}

func TestCommentary(t *testing.T) {
	client := &stubClient{
		resp: &anthropic.MessageResponse{
			Content: []anthropic.ContentBlock{{Type: "text", Text: "  The cohort skews large-cap.  "}},
		},
	}
	ranked, summary := sampleRanking()

	text, err := NewGenerator(client, "").Commentary(context.Background(), ranked, summary)
	require.NoError(t, err)
	assert.Equal(t, "The cohort skews large-cap.", text)

	assert.Equal(t, defaultModel, client.req.Model)
	assert.Contains(t, client.req.Messages[0].Content, "7203")
	assert.Contains(t, client.req.Messages[0].Content, "トヨタ自動車")
	assert.NotEmpty(t, client.req.System)
}

func TestCommentaryEmptyRanking(t *testing.T) {
	_, err := NewGenerator(&stubClient{}, "").Commentary(context.Background(), nil, analysis.Summary{})
	require.Error(t, err)
}

func TestCommentaryEmptyResponse(t *testing.T) {
	client := &stubClient{resp: &anthropic.MessageResponse{}}
	ranked, summary := sampleRanking()

	_, err := NewGenerator(client, "custom-model").Commentary(context.Background(), ranked, summary)
	require.Error(t, err)
	assert.Equal(t, "custom-model", client.req.Model)
}
