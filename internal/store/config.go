package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type IndicatorConfig struct {
	EMAShort          int     `yaml:"ema_short"`
	EMAMid            int     `yaml:"ema_mid"`
	EMALong           int     `yaml:"ema_long"`
	RSIPeriod         int     `yaml:"rsi_period"`
	RSIBuyThreshold   float64 `yaml:"rsi_buy_threshold"`
	KeltnerWindow     int     `yaml:"keltner_window"`
	KeltnerATRWindow  int     `yaml:"keltner_atr_window"`
	KeltnerMultiplier float64 `yaml:"keltner_multiplier"`
	MACDFast          int     `yaml:"macd_fast"`
	MACDSlow          int     `yaml:"macd_slow"`
	MACDSignal        int     `yaml:"macd_signal"`
}

// MinBars returns the number of bars required before every derived series
// has a usable latest value: the longest configured window plus the MACD
// signal smoothing on top of it. RSI needs one extra bar for its first delta.
func (ic IndicatorConfig) MinBars() int {
	longest := ic.EMAShort
	for _, w := range []int{ic.EMAMid, ic.EMALong, ic.RSIPeriod + 1, ic.KeltnerWindow, ic.KeltnerATRWindow, ic.MACDFast, ic.MACDSlow} {
		if w > longest {
			longest = w
		}
	}
	return longest + ic.MACDSignal
}

type Config struct {
	Tickers       []string `yaml:"tickers"`
	Lookback      string   `yaml:"lookback"`
	Interval      string   `yaml:"interval"`
	FetchDelaySec int      `yaml:"fetch_delay_seconds"`

	Indicators IndicatorConfig `yaml:"indicators"`

	Notify struct {
		Mode       string `yaml:"mode"`        // DISCORD or STDOUT
		WebhookEnv string `yaml:"webhook_env"` // env var holding the webhook URL
	} `yaml:"notify"`

	News struct {
		Enabled      bool `yaml:"enabled"`
		MaxHeadlines int  `yaml:"max_headlines"`
	} `yaml:"news"`

	Planner PlannerConfig `yaml:"planner"`
}

type PlannerConfig struct {
	Symbol       string   `yaml:"symbol"`
	Lookback     string   `yaml:"lookback"`
	BacktestFrom string   `yaml:"backtest_from"` // YYYY-MM-DD
	Weekdays     []string `yaml:"weekdays"`
	SMAWindow    int      `yaml:"sma_window"`
	VolWindow    int      `yaml:"vol_window"`
	WinRate      float64  `yaml:"win_rate"`
	ProfitTarget float64  `yaml:"profit_target"`
	StopLoss     float64  `yaml:"stop_loss"`
	Seed         int64    `yaml:"seed"`
}

// FetchDelay returns the pause between per-ticker fetches.
func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelaySec) * time.Second
}

// PlannerWeekdays parses the configured weekday names.
func (c *Config) PlannerWeekdays() ([]time.Weekday, error) {
	names := map[string]time.Weekday{
		"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
		"wednesday": time.Wednesday, "thursday": time.Thursday,
		"friday": time.Friday, "saturday": time.Saturday,
	}
	out := make([]time.Weekday, 0, len(c.Planner.Weekdays))
	for _, n := range c.Planner.Weekdays {
		wd, ok := names[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %q", n)
		}
		out = append(out, wd)
	}
	return out, nil
}

func (c *Config) Validate() error {
	if len(c.Tickers) == 0 {
		return errors.New("tickers cannot be empty")
	}
	ic := c.Indicators
	for name, w := range map[string]int{
		"ema_short": ic.EMAShort, "ema_mid": ic.EMAMid, "ema_long": ic.EMALong,
		"rsi_period": ic.RSIPeriod, "keltner_window": ic.KeltnerWindow,
		"keltner_atr_window": ic.KeltnerATRWindow,
		"macd_fast":          ic.MACDFast, "macd_slow": ic.MACDSlow, "macd_signal": ic.MACDSignal,
	} {
		if w <= 0 {
			return fmt.Errorf("indicators.%s must be positive, got %d", name, w)
		}
	}
	if ic.MACDFast >= ic.MACDSlow {
		return fmt.Errorf("indicators.macd_fast (%d) must be shorter than macd_slow (%d)", ic.MACDFast, ic.MACDSlow)
	}
	if ic.KeltnerMultiplier <= 0 {
		return fmt.Errorf("indicators.keltner_multiplier must be positive, got %.2f", ic.KeltnerMultiplier)
	}
	if ic.RSIBuyThreshold <= 0 || ic.RSIBuyThreshold >= 100 {
		return fmt.Errorf("indicators.rsi_buy_threshold must be in (0, 100), got %.2f", ic.RSIBuyThreshold)
	}
	if c.Notify.Mode != "DISCORD" && c.Notify.Mode != "STDOUT" {
		return fmt.Errorf("invalid notify.mode '%s': must be 'DISCORD' or 'STDOUT'", c.Notify.Mode)
	}
	if c.Planner.WinRate < 0 || c.Planner.WinRate > 1 {
		return fmt.Errorf("planner.win_rate must be in [0, 1], got %.2f", c.Planner.WinRate)
	}
	if _, err := c.PlannerWeekdays(); err != nil {
		return fmt.Errorf("planner.weekdays: %w", err)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Lookback == "" {
		c.Lookback = "1y"
	}
	if c.Interval == "" {
		c.Interval = "1d"
	}
	if c.FetchDelaySec == 0 {
		c.FetchDelaySec = 2
	}
	if c.Notify.Mode == "" {
		c.Notify.Mode = "DISCORD"
	}
	if c.Notify.WebhookEnv == "" {
		c.Notify.WebhookEnv = "DISCORD_WEBHOOK_URL"
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 3
	}
	applyIndicatorDefaults(&c.Indicators)
	applyPlannerDefaults(&c.Planner)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}

// applyIndicatorDefaults fills zero-valued windows with the rule set's
// published defaults.
func applyIndicatorDefaults(ic *IndicatorConfig) {
	if ic.EMAShort == 0 {
		ic.EMAShort = 35
	}
	if ic.EMAMid == 0 {
		ic.EMAMid = 50
	}
	if ic.EMALong == 0 {
		ic.EMALong = 200
	}
	if ic.RSIPeriod == 0 {
		ic.RSIPeriod = 14
	}
	if ic.RSIBuyThreshold == 0 {
		ic.RSIBuyThreshold = 30
	}
	if ic.KeltnerWindow == 0 {
		ic.KeltnerWindow = 20
	}
	if ic.KeltnerATRWindow == 0 {
		ic.KeltnerATRWindow = 10
	}
	if ic.KeltnerMultiplier == 0 {
		ic.KeltnerMultiplier = 2.0
	}
	if ic.MACDFast == 0 {
		ic.MACDFast = 12
	}
	if ic.MACDSlow == 0 {
		ic.MACDSlow = 26
	}
	if ic.MACDSignal == 0 {
		ic.MACDSignal = 9
	}
}

func applyPlannerDefaults(p *PlannerConfig) {
	if p.Symbol == "" {
		p.Symbol = "SPY"
	}
	if p.Lookback == "" {
		p.Lookback = "5y"
	}
	if len(p.Weekdays) == 0 {
		p.Weekdays = []string{"Monday", "Wednesday"}
	}
	if p.SMAWindow == 0 {
		p.SMAWindow = 5
	}
	if p.VolWindow == 0 {
		p.VolWindow = 20
	}
	if p.WinRate == 0 {
		p.WinRate = 0.75
	}
	if p.ProfitTarget == 0 {
		p.ProfitTarget = 0.15
	}
	if p.StopLoss == 0 {
		p.StopLoss = -0.25
	}
}
