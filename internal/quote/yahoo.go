package quote

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kabu-lab/kabuscreen/internal/model"
	"github.com/kabu-lab/kabuscreen/internal/resilience"
)

const fundamentalsModules = "price,summaryDetail,financialData,defaultKeyStatistics"

// Config holds quote client settings.
type Config struct {
	BaseURL        string        `yaml:"base_url" mapstructure:"base_url"`
	UserAgent      string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSec float64       `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// YahooClient implements Provider against a Yahoo-style quote-summary
// HTTP API.
type YahooClient struct {
	client  *resty.Client
	limiter *rate.Limiter
}

// NewYahooClient creates a rate-limited quote client.
func NewYahooClient(cfg Config) *YahooClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://query2.finance.yahoo.com"
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "kabuscreen/1.0"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 2
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("User-Agent", cfg.UserAgent).
		SetTimeout(cfg.Timeout)

	return &YahooClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
	}
}

// Symbol converts an exchange ticker code to the provider's symbol.
// Numeric-only codes get the Tokyo exchange suffix.
func Symbol(ticker string) string {
	for _, r := range ticker {
		if r < '0' || r > '9' {
			return ticker
		}
	}
	return ticker + ".T"
}

// FetchFundamentals fetches the flat financial field set for one ticker.
func (c *YahooClient) FetchFundamentals(ctx context.Context, ticker string) (*model.FinancialRecord, error) {
	var resp quoteSummaryResponse
	if err := c.get(ctx, Symbol(ticker), fundamentalsModules, &resp); err != nil {
		return nil, err
	}

	res := resp.first()
	if res == nil {
		return nil, resilience.NewTransientError(eris.Wrapf(ErrNoData, "quote: %s", ticker), 0)
	}

	record := &model.FinancialRecord{
		Ticker:            ticker,
		MarketCap:         res.Price.MarketCap.Raw,
		TotalCash:         res.FinancialData.TotalCash.Raw,
		TotalDebt:         res.FinancialData.TotalDebt.Raw,
		TotalAssets:       res.DefaultKeyStatistics.TotalAssets.Raw,
		BookValue:         res.DefaultKeyStatistics.BookValue.Raw,
		OperatingCashFlow: res.FinancialData.OperatingCashflow.Raw,
		Capex:             res.FinancialData.CapitalExpenditures.Raw,
		EBIT:              res.FinancialData.EBIT.Raw,
		GrossProfit:       res.FinancialData.GrossProfits.Raw,
		NetIncome:         res.DefaultKeyStatistics.NetIncomeToCommon.Raw,
		DividendYield:     res.SummaryDetail.DividendYield.Raw,
		TrailingPE:        res.SummaryDetail.TrailingPE.Raw,
		TotalRevenue:      res.FinancialData.TotalRevenue.Raw,
		EarningsGrowth:    res.FinancialData.EarningsGrowth.Raw,
		PayoutRatio:       res.SummaryDetail.PayoutRatio.Raw,
	}

	// A ticker-only record means the provider knows the symbol but has
	// nothing to say about it. Treat like a failed fetch.
	if record.FieldCount() == 0 {
		return nil, resilience.NewTransientError(eris.Wrapf(ErrNoData, "quote: %s", ticker), 0)
	}

	zap.L().Debug("quote: fetched fundamentals",
		zap.String("ticker", ticker),
		zap.Int("fields", record.FieldCount()),
	)

	return record, nil
}

// FetchEarnings fetches up to three years of annual net income.
func (c *YahooClient) FetchEarnings(ctx context.Context, ticker string) (model.EarningsHistory, error) {
	var resp quoteSummaryResponse
	if err := c.get(ctx, Symbol(ticker), "earnings", &resp); err != nil {
		return model.EarningsHistory{}, err
	}

	res := resp.first()
	if res == nil {
		return model.EarningsHistory{}, nil
	}

	yearly := append([]yearlyEarnings(nil), res.Earnings.FinancialsChart.Yearly...)
	sort.Slice(yearly, func(i, j int) bool { return yearly[i].Date > yearly[j].Date })

	var hist model.EarningsHistory
	if len(yearly) > 0 {
		hist.Y0 = yearly[0].Earnings.Raw
	}
	if len(yearly) > 1 {
		hist.Y1 = yearly[1].Earnings.Raw
	}
	if len(yearly) > 2 {
		hist.Y2 = yearly[2].Earnings.Raw
	}

	return hist, nil
}

func (c *YahooClient) get(ctx context.Context, symbol, modules string, out *quoteSummaryResponse) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "quote: rate limiter wait")
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("modules", modules).
		SetResult(out).
		Get("/v10/finance/quoteSummary/" + symbol)
	if err != nil {
		return eris.Wrapf(err, "quote: get %s", symbol)
	}

	status := resp.StatusCode()
	switch {
	case resilience.IsTransientHTTPStatus(status):
		return resilience.NewTransientError(eris.Errorf("quote: http %d for %s", status, symbol), status)
	case status >= 300:
		return eris.Errorf("quote: http %d for %s", status, symbol)
	}

	if apiErr := out.apiError(); apiErr != "" {
		return eris.Errorf("quote: provider error for %s: %s", symbol, strings.TrimSpace(apiErr))
	}

	return nil
}

// quoteSummaryResponse mirrors the provider's quote-summary envelope.
// Numbers arrive as {"raw": n, "fmt": "..."} objects; only raw is read,
// so a missing field stays nil.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price struct {
		MarketCap yahooNumber `json:"marketCap"`
	} `json:"price"`
	SummaryDetail struct {
		DividendYield yahooNumber `json:"dividendYield"`
		TrailingPE    yahooNumber `json:"trailingPE"`
		PayoutRatio   yahooNumber `json:"payoutRatio"`
	} `json:"summaryDetail"`
	FinancialData struct {
		TotalCash           yahooNumber `json:"totalCash"`
		TotalDebt           yahooNumber `json:"totalDebt"`
		OperatingCashflow   yahooNumber `json:"operatingCashflow"`
		CapitalExpenditures yahooNumber `json:"capitalExpenditures"`
		EBIT                yahooNumber `json:"ebit"`
		GrossProfits        yahooNumber `json:"grossProfits"`
		TotalRevenue        yahooNumber `json:"totalRevenue"`
		EarningsGrowth      yahooNumber `json:"earningsGrowth"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		TotalAssets       yahooNumber `json:"totalAssets"`
		BookValue         yahooNumber `json:"bookValue"`
		NetIncomeToCommon yahooNumber `json:"netIncomeToCommon"`
	} `json:"defaultKeyStatistics"`
	Earnings struct {
		FinancialsChart struct {
			Yearly []yearlyEarnings `json:"yearly"`
		} `json:"financialsChart"`
	} `json:"earnings"`
}

type yearlyEarnings struct {
	Date     int         `json:"date"`
	Revenue  yahooNumber `json:"revenue"`
	Earnings yahooNumber `json:"earnings"`
}

type yahooNumber struct {
	Raw *float64 `json:"raw"`
}

func (r *quoteSummaryResponse) first() *quoteSummaryResult {
	if len(r.QuoteSummary.Result) == 0 {
		return nil
	}
	return &r.QuoteSummary.Result[0]
}

func (r *quoteSummaryResponse) apiError() string {
	if r.QuoteSummary.Error == nil {
		return ""
	}
	return r.QuoteSummary.Error.Code + " " + r.QuoteSummary.Error.Description
}
