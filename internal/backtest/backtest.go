package backtest

import (
	"math"
	"time"
)

// Strategy names for simulated trades.
const (
	StrategyShortCallSpread = "Short_Call_Spread"
	StrategyShortPutSpread  = "Short_Put_Spread"
)

// Trade is one simulated position.
type Trade struct {
	Date       time.Time
	Weekday    time.Weekday
	Strategy   string
	Price      float64
	PnLPct     float64
	Win        bool
	Volatility float64
}

// Report aggregates a simulation run.
type Report struct {
	From           time.Time
	To             time.Time
	Trades         []Trade
	TotalTrades    int
	Wins           int
	WinRate        float64
	AvgWin         float64
	AvgLoss        float64
	TotalReturn    float64
	AvgTradeReturn float64
	ReturnRisk     float64 // mean over std of per-trade P&L
}

// Run simulates the counter-trend strategy over the derived rows: trade
// only on the allowed weekdays from the given date, pick a direction from
// the SMA signal, and draw the outcome from the sampler.
func Run(rows []Row, from time.Time, weekdays []time.Weekday, sampler *Sampler) Report {
	allowed := make(map[time.Weekday]bool, len(weekdays))
	for _, d := range weekdays {
		allowed[d] = true
	}

	var report Report
	for _, r := range rows {
		if r.Date.Before(from) || !allowed[r.Weekday] {
			continue
		}

		var strategy string
		switch {
		case r.ShortCall:
			strategy = StrategyShortCallSpread
		case r.ShortPut:
			strategy = StrategyShortPutSpread
		default:
			// Open exactly on the SMA: no signal, no trade.
			continue
		}

		pnl, win := sampler.Outcome(r.Volatility)
		report.Trades = append(report.Trades, Trade{
			Date:       r.Date,
			Weekday:    r.Weekday,
			Strategy:   strategy,
			Price:      r.Close,
			PnLPct:     pnl,
			Win:        win,
			Volatility: r.Volatility,
		})
	}

	report.TotalTrades = len(report.Trades)
	if report.TotalTrades == 0 {
		return report
	}
	report.From = report.Trades[0].Date
	report.To = report.Trades[len(report.Trades)-1].Date

	var winSum, lossSum float64
	var losses int
	for _, t := range report.Trades {
		report.TotalReturn += t.PnLPct
		if t.Win {
			report.Wins++
			winSum += t.PnLPct
		} else {
			losses++
			lossSum += t.PnLPct
		}
	}
	report.WinRate = float64(report.Wins) / float64(report.TotalTrades)
	if report.Wins > 0 {
		report.AvgWin = winSum / float64(report.Wins)
	}
	if losses > 0 {
		report.AvgLoss = lossSum / float64(losses)
	}
	report.AvgTradeReturn = report.TotalReturn / float64(report.TotalTrades)

	if report.TotalTrades > 1 {
		variance := 0.0
		for _, t := range report.Trades {
			variance += (t.PnLPct - report.AvgTradeReturn) * (t.PnLPct - report.AvgTradeReturn)
		}
		std := math.Sqrt(variance / float64(report.TotalTrades-1))
		if std > 0 {
			report.ReturnRisk = report.AvgTradeReturn / std
		}
	}
	return report
}
