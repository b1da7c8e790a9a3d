package interfaces

import (
	"context"

	"stock-alerter/internal/types"
)

type MarketData interface {
	// DailyBars returns the ordered daily bar history for a symbol over the
	// given lookback range (e.g. "1y") and bar interval (e.g. "1d").
	DailyBars(ctx context.Context, symbol, lookback, interval string) ([]types.Bar, error)
}
