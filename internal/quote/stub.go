package quote

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

// StubProvider serves canned records for offline mode and tests.
type StubProvider struct {
	Records  map[string]*model.FinancialRecord
	Earnings map[string]model.EarningsHistory

	// FailuresBeforeSuccess makes the first N FetchFundamentals calls
	// per ticker fail with ErrNoData before returning the record.
	FailuresBeforeSuccess int

	calls map[string]int
}

// FetchFundamentals returns the canned record for ticker, or ErrNoData.
func (s *StubProvider) FetchFundamentals(_ context.Context, ticker string) (*model.FinancialRecord, error) {
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[ticker]++

	if s.calls[ticker] <= s.FailuresBeforeSuccess {
		return nil, eris.Wrapf(ErrNoData, "stub: %s", ticker)
	}

	rec, ok := s.Records[ticker]
	if !ok {
		return nil, eris.Wrapf(ErrNoData, "stub: %s", ticker)
	}
	return rec, nil
}

// FetchEarnings returns the canned earnings history for ticker.
func (s *StubProvider) FetchEarnings(_ context.Context, ticker string) (model.EarningsHistory, error) {
	return s.Earnings[ticker], nil
}

// Calls reports how many FetchFundamentals calls were made for ticker.
func (s *StubProvider) Calls(ticker string) int {
	return s.calls[ticker]
}
