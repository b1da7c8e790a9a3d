package main

import (
	"context"
	"log"
	"os"
	"time"

	"stock-alerter/internal/backtest"
	"stock-alerter/internal/logger"
	"stock-alerter/internal/marketdata/yahoo"
	"stock-alerter/internal/store"

	"github.com/joho/godotenv"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	cfg, err := store.LoadConfig("config.yaml")
	must(err)

	must(logger.InitWithConfig(logger.LoadConfigFromEnv()))
	defer logger.Shutdown(context.Background())

	ctx := context.Background()
	p := cfg.Planner

	bars, err := yahoo.NewClient().DailyBars(ctx, p.Symbol, p.Lookback, "1d")
	must(err)
	logger.Info(ctx, "Fetched planner history", "symbol", p.Symbol, "bars", len(bars))

	rows := backtest.Derive(bars, p.SMAWindow, p.VolWindow)
	if len(rows) == 0 {
		log.Fatalf("not enough %s history for the %d-day volatility window", p.Symbol, p.VolWindow)
	}

	weekdays, err := cfg.PlannerWeekdays()
	must(err)

	from := rows[0].Date
	if p.BacktestFrom != "" {
		from, err = time.Parse("2006-01-02", p.BacktestFrom)
		must(err)
	}

	seed := p.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sampler := backtest.NewSampler(seed, p.WinRate, p.ProfitTarget, p.StopLoss)

	out := os.Stdout
	backtest.WriteDayAnalysis(out, backtest.WeekdayStats(rows), weekdays)
	backtest.WriteSignalAnalysis(out, backtest.AnalyzeSignals(rows), p.SMAWindow)

	report := backtest.Run(rows, from, weekdays, sampler)
	backtest.WriteReport(out, report)
	backtest.WritePlan(out, p, report)
}
