// Package analysis turns a daily bar history into a buy/hold signal: the
// indicator engine derives the configured series and reads their latest
// values into a snapshot, and the evaluator reduces the snapshot through a
// unanimous six-condition gate.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"time"

	"stock-alerter/internal/store"
	"stock-alerter/internal/ta"
	"stock-alerter/internal/types"
)

var (
	// ErrInsufficientHistory means the bar history is shorter than the
	// longest warm-up the configured windows require.
	ErrInsufficientHistory = errors.New("insufficient bar history")

	// ErrIndeterminate means a required latest value was non-finite even
	// after the formulas' special cases.
	ErrIndeterminate = errors.New("indeterminate indicator value")
)

// Analyze derives every configured series from the bars and reads the
// latest values into a snapshot. Pure function of (bars, cfg); the input
// bars are never mutated and no partial snapshot is returned on error.
func Analyze(bars []types.Bar, cfg store.IndicatorConfig) (types.Snapshot, error) {
	if len(bars) < cfg.MinBars() {
		return types.Snapshot{}, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientHistory, len(bars), cfg.MinBars())
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
	}

	snap := types.Snapshot{
		Close: ta.Last(closes),
		EMA:   map[int]float64{},
	}
	for _, w := range []int{cfg.EMAShort, cfg.EMAMid, cfg.EMALong} {
		snap.EMA[w] = ta.Last(ta.EMASeries(closes, w))
	}
	snap.RSI = ta.Last(ta.RSISeries(closes, cfg.RSIPeriod))

	basis, upper, lower := ta.Keltner(closes, highs, lows, cfg.KeltnerWindow, cfg.KeltnerATRWindow, cfg.KeltnerMultiplier)
	snap.KeltnerBasis = ta.Last(basis)
	snap.KeltnerUpper = ta.Last(upper)
	snap.KeltnerLower = ta.Last(lower)

	line, sig, hist := ta.MACDSeries(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	snap.MACD = ta.Last(line)
	snap.MACDSignal = ta.Last(sig)
	snap.MACDHist = ta.Last(hist)
	snap.PrevMACD = ta.Prev(line)
	snap.PrevMACDSignal = ta.Prev(sig)

	required := []float64{
		snap.Close, snap.RSI, snap.KeltnerLower,
		snap.MACD, snap.MACDSignal, snap.PrevMACD, snap.PrevMACDSignal,
	}
	for _, w := range []int{cfg.EMAShort, cfg.EMAMid, cfg.EMALong} {
		required = append(required, snap.EMA[w])
	}
	for _, v := range required {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return types.Snapshot{}, ErrIndeterminate
		}
	}

	return snap, nil
}

// Evaluate reduces a snapshot to a signal result. The aggregate buy
// decision is the conjunction of the six flags and nothing else.
func Evaluate(symbol string, snap types.Snapshot, cfg store.IndicatorConfig) types.SignalResult {
	flags := types.Flags{
		PriceAboveEMAShort: snap.Close > snap.EMA[cfg.EMAShort],
		PriceAboveEMAMid:   snap.Close > snap.EMA[cfg.EMAMid],
		PriceAboveEMALong:  snap.Close > snap.EMA[cfg.EMALong],
		RSIOversold:        snap.RSI < cfg.RSIBuyThreshold,
		BelowKeltnerLower:  snap.Close < snap.KeltnerLower,
		MACDBullishCross:   snap.MACD > snap.MACDSignal && snap.PrevMACD <= snap.PrevMACDSignal,
	}

	return types.SignalResult{
		Symbol:      symbol,
		Snapshot:    snap,
		Flags:       flags,
		Buy:         flags.All(),
		Price:       snap.Close,
		EvaluatedAt: time.Now().UTC(),
	}
}
