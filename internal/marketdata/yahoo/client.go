// Package yahoo fetches daily OHLCV history from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"time"

	"stock-alerter/internal/api"
	"stock-alerter/internal/logger"
	"stock-alerter/internal/types"
)

// ErrNoData indicates the provider returned no usable bars for a symbol.
// Unknown tickers and delisted instruments surface this way.
var ErrNoData = errors.New("no market data available")

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client fetches bar history from the chart endpoint. It implements
// interfaces.MarketData.
type Client struct {
	api     *api.Client
	limiter *RateLimiter
}

// NewClient creates a Yahoo Finance client with browser-like headers and a
// conservative request rate.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a client pointed at an alternate endpoint.
// Used by tests to target a local server.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		api: api.NewClient(
			api.WithBaseURL(baseURL),
			api.WithTimeout(30*time.Second),
			api.WithHeaders(api.YahooFinanceHeaders()),
			api.WithLogging(true),
		),
		limiter: NewRateLimiter(2, 500*time.Millisecond),
	}
}

// chartResponse mirrors the chart API payload. Quote arrays use pointers
// because Yahoo emits JSON nulls for halted or missing sessions.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyBars returns the symbol's bar history in ascending time order.
// lookback and interval use the provider's range syntax ("1y", "1d").
func (c *Client) DailyBars(ctx context.Context, symbol, lookback, interval string) ([]types.Bar, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	timer := logger.StartOperation(ctx, "fetch_bars", "symbol", symbol, "range", lookback)
	path := fmt.Sprintf("/v8/finance/chart/%s?range=%s&interval=%s",
		url.PathEscape(symbol), url.QueryEscape(lookback), url.QueryEscape(interval))

	resp, err := c.api.GET(timer.GetContext(), path)
	if err != nil {
		timer.EndWithError(err)
		return nil, fmt.Errorf("chart request for %s: %w", symbol, err)
	}

	var payload chartResponse
	if err := resp.ParseJSON(&payload); err != nil {
		timer.EndWithError(err)
		return nil, fmt.Errorf("chart response for %s: %w", symbol, err)
	}

	bars, err := barsFromChart(&payload)
	if err != nil {
		timer.EndWithError(err)
		return nil, fmt.Errorf("%w: %s", err, symbol)
	}

	timer.End("bars", len(bars))
	return bars, nil
}

func barsFromChart(payload *chartResponse) ([]types.Bar, error) {
	if payload.Chart.Error != nil {
		return nil, ErrNoData
	}
	if len(payload.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 || len(result.Timestamp) == 0 {
		return nil, ErrNoData
	}
	quote := result.Indicators.Quote[0]

	bars := make([]types.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		o := deref(quote.Open, i)
		h := deref(quote.High, i)
		l := deref(quote.Low, i)
		cl := deref(quote.Close, i)
		v := deref(quote.Volume, i)

		// Sessions with null quotes carry no usable price; skip them.
		if math.IsNaN(o) || math.IsNaN(h) || math.IsNaN(l) || math.IsNaN(cl) {
			continue
		}
		if math.IsNaN(v) {
			v = 0
		}
		bars = append(bars, types.Bar{Ts: ts, Open: o, High: h, Low: l, Close: cl, Vol: v})
	}

	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

func deref(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}
