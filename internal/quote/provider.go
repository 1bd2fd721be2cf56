// Package quote fetches per-ticker fundamental data from the
// market-data provider.
package quote

import (
	"context"
	"errors"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

// ErrNoData marks a response that carried no usable financial fields.
// The client wraps it as transient so the caller's retry policy treats
// an empty payload like a failed request.
var ErrNoData = errors.New("no financial data available")

// Provider is the market-data interface the export pipeline depends on.
type Provider interface {
	// FetchFundamentals returns the flat financial field set for one
	// ticker. A response with no usable fields is an error wrapping
	// ErrNoData.
	FetchFundamentals(ctx context.Context, ticker string) (*model.FinancialRecord, error)

	// FetchEarnings returns up to three years of annual net income,
	// most recent first. Missing years are nil, not an error.
	FetchEarnings(ctx context.Context, ticker string) (model.EarningsHistory, error)
}
