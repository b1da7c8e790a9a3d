package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-alerter/internal/engine"
	"stock-alerter/internal/interfaces"
	"stock-alerter/internal/logger"
	"stock-alerter/internal/marketdata/yahoo"
	"stock-alerter/internal/news"
	"stock-alerter/internal/notify"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutting down...")
		cancel()
	}()

	engine.New(cfg, yahoo.NewClient(), buildNotifier(ctx, cfg)).Run(ctx)
}

// buildNotifier wires the configured sink. A missing webhook URL is the one
// configuration failure that aborts before any evaluation starts.
func buildNotifier(ctx context.Context, cfg *store.Config) interfaces.Notifier {
	if cfg.Notify.Mode == "STDOUT" {
		return notify.NewStdoutNotifier(cfg.Indicators)
	}

	webhookURL := os.Getenv(cfg.Notify.WebhookEnv)
	if webhookURL == "" {
		log.Fatalf("%s environment variable is not set. "+
			"Set it before running, or switch notify.mode to STDOUT.", cfg.Notify.WebhookEnv)
	}

	opts := []notify.DiscordOption{}
	if cfg.News.Enabled {
		opts = append(opts, notify.WithHeadlines(news.NewScraper(15*time.Second), cfg.News.MaxHeadlines))
	}
	logger.Info(ctx, "Discord notifications enabled", "headlines", cfg.News.Enabled)
	return notify.NewDiscordNotifier(webhookURL, cfg.Indicators, opts...)
}
