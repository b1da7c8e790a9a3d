package backtest

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"stock-alerter/internal/store"
)

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// WriteDayAnalysis prints the per-weekday return table with the configured
// trading days starred.
func WriteDayAnalysis(w io.Writer, stats map[time.Weekday]DayStats, tradingDays []time.Weekday) {
	starred := make(map[time.Weekday]bool, len(tradingDays))
	for _, d := range tradingDays {
		starred[d] = true
	}

	fmt.Fprintln(w, "\n=== OPTIMAL TRADING DAYS ANALYSIS ===")
	fmt.Fprintln(w, "Day | Avg Return | Std Dev | Count | Avg Vol")
	fmt.Fprintln(w, strings.Repeat("-", 50))
	for _, day := range weekdayOrder {
		s, ok := stats[day]
		if !ok {
			continue
		}
		star := " "
		if starred[day] {
			star = "★"
		}
		fmt.Fprintf(w, "%s%s | %.4f | %.4f | %d | %.4f\n",
			star, day.String()[:3], s.MeanReturn, s.StdDevReturn, s.Count, s.MeanVolatility)
	}
}

// WriteSignalAnalysis prints realized counter-trend signal performance.
func WriteSignalAnalysis(w io.Writer, s SignalStats, smaWindow int) {
	fmt.Fprintln(w, "\n=== SMA COUNTER-TREND SIGNAL ANALYSIS ===")
	fmt.Fprintf(w, "Short Call Signal (open > SMA%d) - Counter-trend Bearish:\n", smaWindow)
	fmt.Fprintf(w, "  Days: %d\n", s.ShortCallDays)
	fmt.Fprintf(w, "  Win Rate: %.2f%%\n", s.ShortCallWinRate*100)
	fmt.Fprintf(w, "  Avg Return: %.4f\n", s.ShortCallAvgRet)
	fmt.Fprintf(w, "\nShort Put Signal (open < SMA%d) - Counter-trend Bullish:\n", smaWindow)
	fmt.Fprintf(w, "  Days: %d\n", s.ShortPutDays)
	fmt.Fprintf(w, "  Win Rate: %.2f%%\n", s.ShortPutWinRate*100)
	fmt.Fprintf(w, "  Avg Return: %.4f\n", s.ShortPutAvgRet)
}

// WriteReport prints the simulation summary.
func WriteReport(w io.Writer, r Report) {
	fmt.Fprintln(w, "\n=== STRATEGY BACKTEST (ILLUSTRATIVE) ===")
	fmt.Fprintln(w, "Outcomes are drawn from a seeded biased coin flip, not from market")
	fmt.Fprintln(w, "mechanics. Treat every number below as illustrative.")
	if r.TotalTrades == 0 {
		fmt.Fprintln(w, "No trades generated in backtest period")
		return
	}
	fmt.Fprintf(w, "Backtest Period: %s to %s\n", r.From.Format("2006-01-02"), r.To.Format("2006-01-02"))
	fmt.Fprintf(w, "Total Trades: %d\n", r.TotalTrades)
	fmt.Fprintf(w, "Win Rate: %.2f%%\n", r.WinRate*100)
	fmt.Fprintf(w, "Average Win: %.2f%%\n", r.AvgWin*100)
	fmt.Fprintf(w, "Average Loss: %.2f%%\n", r.AvgLoss*100)
	fmt.Fprintf(w, "Total Return: %.2f%%\n", r.TotalReturn*100)
	fmt.Fprintf(w, "Average Return per Trade: %.2f%%\n", r.AvgTradeReturn*100)
	if r.ReturnRisk != 0 {
		fmt.Fprintf(w, "Return/Risk Ratio: %.2f\n", r.ReturnRisk)
	}

	byStrategy := map[string]int{}
	for _, t := range r.Trades {
		byStrategy[t.Strategy]++
	}
	names := make([]string, 0, len(byStrategy))
	for name := range byStrategy {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d trades\n", name, byStrategy[name])
	}
}

// WritePlan prints the canned trading plan that frames the simulation.
func WritePlan(w io.Writer, cfg store.PlannerConfig, r Report) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w, "\n"+line)
	fmt.Fprintf(w, "%s OPTIONS DAY TRADING STRATEGY - COMPREHENSIVE PLAN\n", cfg.Symbol)
	fmt.Fprintln(w, line)

	fmt.Fprintln(w, "\nSTRATEGY OVERVIEW:")
	fmt.Fprintf(w, "- Focus: %s options day trading on lower timeframes\n", cfg.Symbol)
	fmt.Fprintln(w, "- Primary approach: Counter-trend credit spreads with SMA filters")
	fmt.Fprintln(w, "- Secondary approach: Neutral strategies (Iron Butterflies/Condors)")

	fmt.Fprintln(w, "\nOPTIMAL TRADING SCHEDULE:")
	fmt.Fprintf(w, "- Trade ONLY on: %s\n", strings.Join(cfg.Weekdays, ", "))
	fmt.Fprintln(w, "- Entry time: 10:15 AM ET (after morning volatility)")
	fmt.Fprintln(w, "- Exit time: 12:00 PM ET (before lunch lull)")
	fmt.Fprintln(w, "- Average hold time: ~1.75 hours")

	fmt.Fprintln(w, "\nENTRY CRITERIA:")
	fmt.Fprintf(w, "- Open ABOVE %d-day SMA: Short Call Spread (bearish)\n", cfg.SMAWindow)
	fmt.Fprintf(w, "- Open BELOW %d-day SMA: Short Put Spread (bullish)\n", cfg.SMAWindow)
	fmt.Fprintln(w, "- Target Delta: 0.25 - 0.30 (illustrative constant, not computed)")

	fmt.Fprintln(w, "\nRISK MANAGEMENT:")
	fmt.Fprintf(w, "- Profit Target: %.0f%% of premium collected\n", cfg.ProfitTarget*100)
	fmt.Fprintf(w, "- Stop Loss: %.0f%% of premium collected\n", cfg.StopLoss*100)
	fmt.Fprintln(w, "- Maximum risk per trade: 1-2% of account")
	fmt.Fprintln(w, "- Never hold positions past 3:50 PM ET")

	if r.TotalTrades > 0 {
		fmt.Fprintln(w, "\nSIMULATED PERFORMANCE:")
		fmt.Fprintf(w, "- Win Rate: %.1f%%\n", r.WinRate*100)
		fmt.Fprintf(w, "- Average Return per Trade: %.2f%%\n", r.AvgTradeReturn*100)
	}

	fmt.Fprintln(w, "\nRISK WARNINGS:")
	fmt.Fprintln(w, "- 0DTE options are extremely risky and can result in 100% loss")
	fmt.Fprintln(w, "- Simulated outcomes come from a biased coin flip, not a market model")
	fmt.Fprintln(w, "- Past performance does not guarantee future results")

	fmt.Fprintln(w, "\n"+line)
}
