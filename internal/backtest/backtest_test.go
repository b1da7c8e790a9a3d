package backtest

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"stock-alerter/internal/store"
	"stock-alerter/internal/types"
)

// weekdayBars builds n consecutive weekday bars starting Monday 2024-01-01.
func weekdayBars(n int, close func(i int) float64) []types.Bar {
	bars := make([]types.Bar, 0, n)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for len(bars) < n {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			c := close(len(bars))
			bars = append(bars, types.Bar{Ts: day.Unix(), Open: c, High: c + 1, Low: c - 1, Close: c})
		}
		day = day.AddDate(0, 0, 1)
	}
	return bars
}

func TestDeriveDropsWarmupRows(t *testing.T) {
	bars := weekdayBars(60, func(i int) float64 { return 100 + float64(i%7) })
	rows := Derive(bars, 5, 20)

	// Returns start at bar 1 and the volatility window needs 20 of them,
	// so the first 20 bars never survive.
	if len(rows) != 60-20 {
		t.Fatalf("Expected %d rows after warm-up, got %d", 60-20, len(rows))
	}
	for i, r := range rows {
		if math.IsNaN(r.Return) || math.IsNaN(r.SMA) || math.IsNaN(r.Volatility) {
			t.Fatalf("Row %d kept a NaN field: %+v", i, r)
		}
	}
}

func TestDeriveSignalsAreMutuallyExclusive(t *testing.T) {
	bars := weekdayBars(80, func(i int) float64 { return 100 + 10*math.Sin(float64(i)/3) })
	rows := Derive(bars, 5, 20)
	if len(rows) == 0 {
		t.Fatal("Expected derived rows")
	}
	for _, r := range rows {
		if r.ShortCall && r.ShortPut {
			t.Fatalf("Both signals set on %s: open=%.2f sma=%.2f", r.Date.Format("2006-01-02"), r.Open, r.SMA)
		}
		if r.ShortCall != (r.Open > r.SMA) {
			t.Errorf("ShortCall disagrees with open/SMA on %s", r.Date.Format("2006-01-02"))
		}
	}
}

func TestWeekdayStatsCountsEveryRowOnce(t *testing.T) {
	bars := weekdayBars(120, func(i int) float64 { return 100 + float64(i%11) })
	rows := Derive(bars, 5, 20)
	stats := WeekdayStats(rows)

	total := 0
	for _, s := range stats {
		total += s.Count
	}
	if total != len(rows) {
		t.Errorf("Stats cover %d rows, expected %d", total, len(rows))
	}
	for day, s := range stats {
		if day == time.Saturday || day == time.Sunday {
			t.Errorf("Weekend day %s in stats", day)
		}
		if s.StdDevReturn < 0 {
			t.Errorf("Negative std dev for %s", day)
		}
	}
}

func TestAnalyzeSignalsWinRateBounds(t *testing.T) {
	bars := weekdayBars(200, func(i int) float64 { return 100 + 5*math.Sin(float64(i)/4) })
	rows := Derive(bars, 5, 20)
	s := AnalyzeSignals(rows)

	if s.ShortCallDays+s.ShortPutDays == 0 {
		t.Fatal("Expected some signal days")
	}
	for _, wr := range []float64{s.ShortCallWinRate, s.ShortPutWinRate} {
		if wr < 0 || wr > 1 {
			t.Errorf("Win rate out of range: %f", wr)
		}
	}
}

func TestSamplerIsDeterministicForSeed(t *testing.T) {
	a := NewSampler(42, 0.75, 0.15, -0.25)
	b := NewSampler(42, 0.75, 0.15, -0.25)
	for i := 0; i < 100; i++ {
		pnlA, winA := a.Outcome(0.2)
		pnlB, winB := b.Outcome(0.2)
		if pnlA != pnlB || winA != winB {
			t.Fatalf("Draw %d diverged for identical seeds", i)
		}
	}
}

func TestSamplerOutcomesArePayoffLevels(t *testing.T) {
	s := NewSampler(1, 0.75, 0.15, -0.25)
	wins := 0
	const draws = 2000
	for i := 0; i < draws; i++ {
		pnl, win := s.Outcome(0.2)
		if win && pnl != 0.15 {
			t.Fatalf("Win paid %f, want 0.15", pnl)
		}
		if !win && pnl != -0.25 {
			t.Fatalf("Loss paid %f, want -0.25", pnl)
		}
		if win {
			wins++
		}
	}
	// Adjusted rate is 0.75 - 0.02 = 0.73; allow a generous band.
	rate := float64(wins) / draws
	if rate < 0.65 || rate > 0.81 {
		t.Errorf("Win rate %f far from adjusted rate 0.73", rate)
	}
}

func TestSamplerVolatilityPenaltyIsCapped(t *testing.T) {
	s := NewSampler(1, 0.75, 0.15, -0.25)
	if got := s.AdjustedWinRate(0.2); math.Abs(got-0.73) > 1e-12 {
		t.Errorf("AdjustedWinRate(0.2) = %f, want 0.73", got)
	}
	if got := s.AdjustedWinRate(5.0); got != 0.65 {
		t.Errorf("Penalty not capped: AdjustedWinRate(5.0) = %f, want 0.65", got)
	}
}

func TestRunFiltersByWeekdayAndDate(t *testing.T) {
	bars := weekdayBars(120, func(i int) float64 { return 100 + float64(i%9) })
	rows := Derive(bars, 5, 20)
	from := rows[len(rows)/2].Date
	weekdays := []time.Weekday{time.Monday, time.Wednesday}

	report := Run(rows, from, weekdays, NewSampler(7, 0.75, 0.15, -0.25))
	if report.TotalTrades == 0 {
		t.Fatal("Expected trades in the backtest window")
	}
	for _, tr := range report.Trades {
		if tr.Date.Before(from) {
			t.Errorf("Trade on %s predates the backtest start", tr.Date.Format("2006-01-02"))
		}
		if tr.Weekday != time.Monday && tr.Weekday != time.Wednesday {
			t.Errorf("Trade on disallowed weekday %s", tr.Weekday)
		}
		if tr.Strategy != StrategyShortCallSpread && tr.Strategy != StrategyShortPutSpread {
			t.Errorf("Unknown strategy %q", tr.Strategy)
		}
	}
}

func TestRunReportArithmetic(t *testing.T) {
	bars := weekdayBars(150, func(i int) float64 { return 100 + float64(i%13) })
	rows := Derive(bars, 5, 20)
	report := Run(rows, rows[0].Date, []time.Weekday{time.Monday, time.Wednesday}, NewSampler(3, 0.75, 0.15, -0.25))

	if report.TotalTrades != len(report.Trades) {
		t.Fatalf("TotalTrades %d != len(Trades) %d", report.TotalTrades, len(report.Trades))
	}
	sum := 0.0
	wins := 0
	for _, tr := range report.Trades {
		sum += tr.PnLPct
		if tr.Win {
			wins++
		}
	}
	if math.Abs(sum-report.TotalReturn) > 1e-9 {
		t.Errorf("TotalReturn %f != trade sum %f", report.TotalReturn, sum)
	}
	if wins != report.Wins {
		t.Errorf("Wins %d != counted %d", report.Wins, wins)
	}
	// Averages of identical payoffs can carry a ULP of summation error.
	if report.Wins > 0 && math.Abs(report.AvgWin-0.15) > 1e-12 {
		t.Errorf("AvgWin %.17g, want the profit target", report.AvgWin)
	}
	if report.Wins < report.TotalTrades && math.Abs(report.AvgLoss-(-0.25)) > 1e-12 {
		t.Errorf("AvgLoss %.17g, want the stop loss", report.AvgLoss)
	}
}

func TestRunEmptyWindow(t *testing.T) {
	bars := weekdayBars(60, func(i int) float64 { return 100 })
	rows := Derive(bars, 5, 20)
	report := Run(rows, time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC), []time.Weekday{time.Monday}, NewSampler(1, 0.75, 0.15, -0.25))
	if report.TotalTrades != 0 || len(report.Trades) != 0 {
		t.Errorf("Expected empty report, got %d trades", report.TotalTrades)
	}
}

func TestWritePlanMentionsConfiguredParameters(t *testing.T) {
	cfg := store.PlannerConfig{
		Symbol: "SPY", Weekdays: []string{"Monday", "Wednesday"},
		SMAWindow: 5, VolWindow: 20,
		WinRate: 0.75, ProfitTarget: 0.15, StopLoss: -0.25,
	}
	var buf bytes.Buffer
	WritePlan(&buf, cfg, Report{TotalTrades: 10, Wins: 7, WinRate: 0.7, AvgTradeReturn: 0.03})

	out := buf.String()
	for _, want := range []string{"SPY", "Monday, Wednesday", "5-day SMA", "Profit Target: 15%", "Stop Loss: -25%", "Win Rate: 70.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("Plan missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, Report{})
	if !strings.Contains(buf.String(), "No trades generated") {
		t.Errorf("Empty report should say no trades:\n%s", buf.String())
	}
}
