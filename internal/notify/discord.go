// Package notify delivers run results to a Discord webhook or to stdout.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"stock-alerter/internal/api"
	"stock-alerter/internal/interfaces"
	"stock-alerter/internal/logger"
	"stock-alerter/internal/store"
	"stock-alerter/internal/types"
)

// Discord webhook limits: at most 10 embeds per message, 4096 characters
// per embed description, and roughly 6000 characters across all embed text.
const (
	maxEmbedsPerMessage = 10
	maxCharsPerMessage  = 6000
	maxEmbedDescription = 4096
)

const (
	colorBuy  = 65280    // green
	colorHold = 16711680 // red
)

// Embed is a single Discord rich embed.
type Embed struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Color       int         `json:"color"`
	Footer      EmbedFooter `json:"footer"`
}

// EmbedFooter holds the embed footer line.
type EmbedFooter struct {
	Text string `json:"text"`
}

// webhookPayload is the message body POSTed to the webhook.
type webhookPayload struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds"`
}

// DiscordNotifier posts buy signals from a run to a Discord webhook as a
// batch of embeds, chunked to the webhook's message limits. It implements
// interfaces.Notifier.
type DiscordNotifier struct {
	api        *api.Client
	webhookURL string
	indicators store.IndicatorConfig
	headlines  interfaces.HeadlineProvider
	maxHeads   int
	now        func() time.Time
}

// DiscordOption configures a DiscordNotifier.
type DiscordOption func(*DiscordNotifier)

// WithHeadlines attaches a headline provider whose top stories are appended
// to each buy embed.
func WithHeadlines(p interfaces.HeadlineProvider, max int) DiscordOption {
	return func(d *DiscordNotifier) {
		d.headlines = p
		d.maxHeads = max
	}
}

// WithClock overrides the timestamp source. Used by tests.
func WithClock(now func() time.Time) DiscordOption {
	return func(d *DiscordNotifier) {
		d.now = now
	}
}

// NewDiscordNotifier creates a notifier targeting the given webhook URL.
func NewDiscordNotifier(webhookURL string, indicators store.IndicatorConfig, opts ...DiscordOption) *DiscordNotifier {
	d := &DiscordNotifier{
		api:        api.NewClient(api.WithTimeout(15 * time.Second)),
		webhookURL: webhookURL,
		indicators: indicators,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NotifyRun sends one batched alert covering every buy decision in the run.
// Holds are not sent. Returns nil without a network call when the run has
// no buys.
func (d *DiscordNotifier) NotifyRun(ctx context.Context, results []types.SignalResult) error {
	var buys []types.SignalResult
	for _, r := range results {
		if r.Buy {
			buys = append(buys, r)
		}
	}
	if len(buys) == 0 {
		logger.Info(ctx, "No buy signals this run, skipping alert")
		return nil
	}

	embeds := make([]Embed, 0, len(buys))
	symbols := make([]string, 0, len(buys))
	for _, r := range buys {
		embeds = append(embeds, d.buildEmbed(ctx, r))
		symbols = append(symbols, r.Symbol)
	}
	content := fmt.Sprintf("**Daily Chart Analysis:** ✅ BUY SIGNAL! ✅ (%s)", strings.Join(symbols, ", "))

	for _, chunk := range chunkEmbeds(embeds) {
		payload := webhookPayload{Content: content, Embeds: chunk}
		if _, err := d.api.POST(ctx, d.webhookURL, payload); err != nil {
			return fmt.Errorf("discord webhook: %w", err)
		}
	}

	logger.Info(ctx, "Discord alert sent", "buys", len(buys))
	return nil
}

func (d *DiscordNotifier) buildEmbed(ctx context.Context, r types.SignalResult) Embed {
	cfg := d.indicators
	snap := r.Snapshot
	f := r.Flags

	var b strings.Builder
	fmt.Fprintf(&b, "**Current Price:** $%.2f\n", r.Price)
	b.WriteString("--- Indicator Details ---\n")
	fmt.Fprintf(&b, "- **Price > EMA %d**: %t (EMA %d: %.2f)\n", cfg.EMAShort, f.PriceAboveEMAShort, cfg.EMAShort, snap.EMA[cfg.EMAShort])
	fmt.Fprintf(&b, "- **Price > EMA %d**: %t (EMA %d: %.2f)\n", cfg.EMAMid, f.PriceAboveEMAMid, cfg.EMAMid, snap.EMA[cfg.EMAMid])
	fmt.Fprintf(&b, "- **Price > EMA %d**: %t (EMA %d: %.2f)\n", cfg.EMALong, f.PriceAboveEMALong, cfg.EMALong, snap.EMA[cfg.EMALong])
	fmt.Fprintf(&b, "- **RSI < %.0f**: %t (RSI: %.2f)\n", cfg.RSIBuyThreshold, f.RSIOversold, snap.RSI)
	fmt.Fprintf(&b, "- **Price < KC Lower**: %t (KC Lower: %.2f)\n", f.BelowKeltnerLower, snap.KeltnerLower)
	fmt.Fprintf(&b, "- **MACD Bullish Crossover**: %t (MACD Hist: %.2f)", f.MACDBullishCross, snap.MACDHist)

	if d.headlines != nil && d.maxHeads > 0 {
		heads, err := d.headlines.Headlines(ctx, r.Symbol, d.maxHeads)
		if err != nil {
			logger.Warn(ctx, "Headline lookup failed", "symbol", r.Symbol, "error", err)
		} else if len(heads) > 0 {
			b.WriteString("\n--- Recent News ---")
			for _, h := range heads {
				fmt.Fprintf(&b, "\n- [%s](%s)", h.Title, h.URL)
			}
		}
	}

	color := colorHold
	if r.Buy {
		color = colorBuy
	}

	return Embed{
		Title:       fmt.Sprintf("📈 Stock Analysis for %s 📈", r.Symbol),
		Description: truncate(b.String(), maxEmbedDescription),
		Color:       color,
		Footer:      EmbedFooter{Text: "Analysis Date: " + d.now().Format("2006-01-02 15:04:05")},
	}
}

// truncate cuts s to at most max bytes on a rune boundary, marking the cut
// with an ellipsis. The webhook rejects over-long descriptions outright.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	const ellipsis = "…"
	cut := max - len(ellipsis)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}

func embedSize(e Embed) int {
	return len(e.Title) + len(e.Description) + len(e.Footer.Text)
}

// chunkEmbeds splits embeds into webhook-sized messages, respecting both
// the embed count and the character limits.
func chunkEmbeds(embeds []Embed) [][]Embed {
	var chunks [][]Embed
	var current []Embed
	chars := 0

	for _, e := range embeds {
		size := embedSize(e)
		if len(current) > 0 && (len(current) >= maxEmbedsPerMessage || chars+size > maxCharsPerMessage) {
			chunks = append(chunks, current)
			current = nil
			chars = 0
		}
		current = append(current, e)
		chars += size
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
