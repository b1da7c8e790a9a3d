package notify

import (
	"context"
	"fmt"
	"io"
	"os"

	"stock-alerter/internal/store"
	"stock-alerter/internal/types"
)

// StdoutNotifier prints every result of a run, buy or hold, to a writer.
// Useful for local runs without a webhook. Implements interfaces.Notifier.
type StdoutNotifier struct {
	indicators store.IndicatorConfig
	out        io.Writer
}

// NewStdoutNotifier creates a notifier writing to standard output.
func NewStdoutNotifier(indicators store.IndicatorConfig) *StdoutNotifier {
	return &StdoutNotifier{indicators: indicators, out: os.Stdout}
}

// NewStdoutNotifierTo creates a notifier writing to w.
func NewStdoutNotifierTo(indicators store.IndicatorConfig, w io.Writer) *StdoutNotifier {
	return &StdoutNotifier{indicators: indicators, out: w}
}

// NotifyRun prints a per-instrument breakdown of flags and the decision.
func (s *StdoutNotifier) NotifyRun(_ context.Context, results []types.SignalResult) error {
	cfg := s.indicators
	for _, r := range results {
		decision := "HOLD"
		if r.Buy {
			decision = "BUY"
		}
		fmt.Fprintf(s.out, "\n%s: %s (price %.2f)\n", r.Symbol, decision, r.Price)
		fmt.Fprintf(s.out, "  price > EMA %-3d : %-5t (%.2f)\n", cfg.EMAShort, r.Flags.PriceAboveEMAShort, r.Snapshot.EMA[cfg.EMAShort])
		fmt.Fprintf(s.out, "  price > EMA %-3d : %-5t (%.2f)\n", cfg.EMAMid, r.Flags.PriceAboveEMAMid, r.Snapshot.EMA[cfg.EMAMid])
		fmt.Fprintf(s.out, "  price > EMA %-3d : %-5t (%.2f)\n", cfg.EMALong, r.Flags.PriceAboveEMALong, r.Snapshot.EMA[cfg.EMALong])
		fmt.Fprintf(s.out, "  RSI < %-9.0f : %-5t (%.2f)\n", cfg.RSIBuyThreshold, r.Flags.RSIOversold, r.Snapshot.RSI)
		fmt.Fprintf(s.out, "  price < KC lower: %-5t (%.2f)\n", r.Flags.BelowKeltnerLower, r.Snapshot.KeltnerLower)
		fmt.Fprintf(s.out, "  MACD bull cross : %-5t (hist %.2f)\n", r.Flags.MACDBullishCross, r.Snapshot.MACDHist)
	}
	return nil
}
