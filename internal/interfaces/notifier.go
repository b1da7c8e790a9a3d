package interfaces

import (
	"context"

	"stock-alerter/internal/types"
)

type Notifier interface {
	// NotifyRun delivers one run's worth of evaluation results. Delivery,
	// chunking and formatting policy belong to the implementation.
	NotifyRun(ctx context.Context, results []types.SignalResult) error
}

type HeadlineProvider interface {
	Headlines(ctx context.Context, symbol string, max int) ([]types.Headline, error)
}
