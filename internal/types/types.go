package types

import "time"

// Bar is one trading day's price record for one instrument. Bars are
// immutable once fetched; ordering follows the feed's trading-day order.
type Bar struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Snapshot holds the latest-value reads of every derived series for one
// instrument, plus the one look-back MACD pair needed for crossover checks.
type Snapshot struct {
	Close float64
	EMA   map[int]float64 // keyed by window length
	RSI   float64

	KeltnerBasis float64
	KeltnerLower float64
	KeltnerUpper float64

	MACD           float64
	MACDSignal     float64
	MACDHist       float64
	PrevMACD       float64
	PrevMACDSignal float64
}

// Flags are the per-condition booleans behind one buy/hold decision.
type Flags struct {
	PriceAboveEMAShort bool `json:"price_above_ema_short"`
	PriceAboveEMAMid   bool `json:"price_above_ema_mid"`
	PriceAboveEMALong  bool `json:"price_above_ema_long"`
	RSIOversold        bool `json:"rsi_oversold"`
	BelowKeltnerLower  bool `json:"below_keltner_lower"`
	MACDBullishCross   bool `json:"macd_bullish_cross"`
}

// All reports whether every condition holds. The aggregate buy decision is
// always derived through this method, never computed separately.
func (f Flags) All() bool {
	return f.PriceAboveEMAShort && f.PriceAboveEMAMid && f.PriceAboveEMALong &&
		f.RSIOversold && f.BelowKeltnerLower && f.MACDBullishCross
}

// SignalResult is one instrument's evaluation outcome for one run.
type SignalResult struct {
	Symbol      string    `json:"symbol"`
	Snapshot    Snapshot  `json:"-"`
	Flags       Flags     `json:"flags"`
	Buy         bool      `json:"buy"`
	Price       float64   `json:"price"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Headline is one scraped news headline attached to an alert for context.
type Headline struct {
	Title  string
	URL    string
	Source string
}
