// Package engine sequences one alerting run: fetch bars, evaluate the rule
// set, and hand the batch of results to the notifier.
package engine

import (
	"context"
	"errors"
	"time"

	"stock-alerter/internal/analysis"
	"stock-alerter/internal/interfaces"
	"stock-alerter/internal/logger"
	"stock-alerter/internal/store"
	"stock-alerter/internal/types"
)

// Engine runs the fetch → evaluate → notify pipeline over the configured
// ticker list, one instrument at a time.
type Engine struct {
	cfg      *store.Config
	data     interfaces.MarketData
	notifier interfaces.Notifier
	sleep    func(time.Duration)
}

// New creates an engine over the given collaborators.
func New(cfg *store.Config, data interfaces.MarketData, notifier interfaces.Notifier) *Engine {
	return &Engine{cfg: cfg, data: data, notifier: notifier, sleep: time.Sleep}
}

// Run evaluates every configured ticker and sends the batched notification.
// Per-instrument failures (no data, short history, indeterminate values)
// skip that instrument and the run continues; a notification failure is
// logged but does not fail the run. Results come back in ticker order.
func (e *Engine) Run(ctx context.Context) ([]types.SignalResult, error) {
	timer := logger.StartOperation(ctx, "alert_run", "tickers", len(e.cfg.Tickers))
	ctx = timer.GetContext()

	results := make([]types.SignalResult, 0, len(e.cfg.Tickers))
	for i, symbol := range e.cfg.Tickers {
		if i > 0 {
			// Pause between instruments to stay under the data
			// source's rate limits.
			e.sleep(e.cfg.FetchDelay())
		}
		if err := ctx.Err(); err != nil {
			timer.EndWithError(err)
			return results, err
		}

		res, err := e.evaluateSymbol(ctx, symbol)
		if err != nil {
			logSkip(ctx, symbol, err)
			continue
		}

		logger.Signal(ctx, symbol, res.Buy, res.Price, res.Snapshot.RSI)
		results = append(results, res)
	}

	if err := e.notifier.NotifyRun(ctx, results); err != nil {
		// Failure to notify is not failure to evaluate.
		logger.ErrorWithErr(ctx, "Notification delivery failed", err)
	}

	timer.End("evaluated", len(results))
	return results, nil
}

func (e *Engine) evaluateSymbol(ctx context.Context, symbol string) (types.SignalResult, error) {
	bars, err := e.data.DailyBars(ctx, symbol, e.cfg.Lookback, e.cfg.Interval)
	if err != nil {
		return types.SignalResult{}, err
	}

	snap, err := analysis.Analyze(bars, e.cfg.Indicators)
	if err != nil {
		return types.SignalResult{}, err
	}

	return analysis.Evaluate(symbol, snap, e.cfg.Indicators), nil
}

func logSkip(ctx context.Context, symbol string, err error) {
	switch {
	case errors.Is(err, analysis.ErrInsufficientHistory):
		logger.Warn(ctx, "Skipping instrument: insufficient history", "symbol", symbol, "error", err)
	case errors.Is(err, analysis.ErrIndeterminate):
		logger.Warn(ctx, "Skipping instrument: indeterminate indicator", "symbol", symbol, "error", err)
	default:
		logger.Warn(ctx, "Skipping instrument: data unavailable", "symbol", symbol, "error", err)
	}
}
