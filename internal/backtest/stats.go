// Package backtest runs a one-shot illustrative day-trading simulation over
// an instrument's daily history. Outcomes come from a biased coin flip, not
// from market mechanics, so the numbers illustrate the shape of a strategy
// rather than predict it.
package backtest

import (
	"math"
	"time"

	"stock-alerter/internal/ta"
	"stock-alerter/internal/types"
)

// Row is one trading day enriched with the derived fields the simulation
// reads: daily return, short moving average, annualized rolling volatility,
// and the counter-trend signals.
type Row struct {
	Date       time.Time
	Weekday    time.Weekday
	Open       float64
	Close      float64
	Return     float64
	SMA        float64
	Volatility float64

	// Counter-trend signals: opening above the short SMA argues for a
	// bearish position, opening below it for a bullish one.
	ShortCall bool
	ShortPut  bool
}

// tradingDaysPerYear annualizes the rolling daily-return volatility.
const tradingDaysPerYear = 252

// Derive computes per-day returns, the short SMA, and annualized rolling
// volatility, then drops the warm-up rows where any of them is undefined.
func Derive(bars []types.Bar, smaWindow, volWindow int) []Row {
	if len(bars) == 0 || smaWindow <= 0 || volWindow <= 1 {
		return nil
	}

	rows := make([]Row, len(bars))
	returns := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for i, b := range bars {
		date := time.Unix(b.Ts, 0).UTC()
		ret := math.NaN()
		if i > 0 && bars[i-1].Close != 0 {
			ret = b.Close/bars[i-1].Close - 1
		}
		returns[i] = ret
		closes[i] = b.Close
		rows[i] = Row{
			Date:    date,
			Weekday: date.Weekday(),
			Open:    b.Open,
			Close:   b.Close,
			Return:  ret,
		}
	}

	sma := ta.SMASeries(closes, smaWindow)
	for i := range rows {
		rows[i].SMA = sma[i]
	}

	// Rolling sample standard deviation of returns, annualized.
	for i := range rows {
		rows[i].Volatility = math.NaN()
		if i < volWindow {
			continue
		}
		window := returns[i-volWindow+1 : i+1]
		mean := 0.0
		for _, r := range window {
			mean += r
		}
		mean /= float64(volWindow)
		variance := 0.0
		for _, r := range window {
			variance += (r - mean) * (r - mean)
		}
		variance /= float64(volWindow - 1)
		rows[i].Volatility = math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear)
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if math.IsNaN(r.Return) || math.IsNaN(r.SMA) || math.IsNaN(r.Volatility) {
			continue
		}
		r.ShortCall = r.Open > r.SMA
		r.ShortPut = r.Open < r.SMA
		out = append(out, r)
	}
	return out
}

// DayStats aggregates daily returns for one weekday.
type DayStats struct {
	Count          int
	MeanReturn     float64
	StdDevReturn   float64
	MeanVolatility float64
}

// WeekdayStats groups the derived rows by weekday.
func WeekdayStats(rows []Row) map[time.Weekday]DayStats {
	sums := map[time.Weekday]*struct {
		n        int
		ret, vol float64
	}{}
	for _, r := range rows {
		s := sums[r.Weekday]
		if s == nil {
			s = &struct {
				n        int
				ret, vol float64
			}{}
			sums[r.Weekday] = s
		}
		s.n++
		s.ret += r.Return
		s.vol += r.Volatility
	}

	stats := make(map[time.Weekday]DayStats, len(sums))
	for day, s := range sums {
		mean := s.ret / float64(s.n)
		variance := 0.0
		for _, r := range rows {
			if r.Weekday == day {
				variance += (r.Return - mean) * (r.Return - mean)
			}
		}
		std := 0.0
		if s.n > 1 {
			std = math.Sqrt(variance / float64(s.n-1))
		}
		stats[day] = DayStats{
			Count:          s.n,
			MeanReturn:     mean,
			StdDevReturn:   std,
			MeanVolatility: s.vol / float64(s.n),
		}
	}
	return stats
}

// SignalStats summarizes how the counter-trend signals would have resolved:
// a bearish day wins when the market closes down, a bullish one when it
// closes up.
type SignalStats struct {
	ShortCallDays    int
	ShortCallWinRate float64
	ShortCallAvgRet  float64
	ShortPutDays     int
	ShortPutWinRate  float64
	ShortPutAvgRet   float64
}

// AnalyzeSignals computes realized win rates for the two signals.
func AnalyzeSignals(rows []Row) SignalStats {
	var s SignalStats
	var callWins, putWins int
	for _, r := range rows {
		if r.ShortCall {
			s.ShortCallDays++
			s.ShortCallAvgRet += r.Return
			if r.Return < 0 {
				callWins++
			}
		}
		if r.ShortPut {
			s.ShortPutDays++
			s.ShortPutAvgRet += r.Return
			if r.Return > 0 {
				putWins++
			}
		}
	}
	if s.ShortCallDays > 0 {
		s.ShortCallWinRate = float64(callWins) / float64(s.ShortCallDays)
		s.ShortCallAvgRet /= float64(s.ShortCallDays)
	}
	if s.ShortPutDays > 0 {
		s.ShortPutWinRate = float64(putWins) / float64(s.ShortPutDays)
		s.ShortPutAvgRet /= float64(s.ShortPutDays)
	}
	return s
}
