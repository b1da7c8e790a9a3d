package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func chartJSON(timestamps []int64, closes []string) string {
	ts := make([]string, len(timestamps))
	for i, t := range timestamps {
		ts[i] = fmt.Sprintf("%d", t)
	}
	quotes := strings.Join(closes, ",")
	return fmt.Sprintf(`{"chart":{"result":[{"timestamp":[%s],"indicators":{"quote":[{
		"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}]}}],"error":null}}`,
		strings.Join(ts, ","), quotes, quotes, quotes, quotes, quotes)
}

func TestDailyBarsParsesChartResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/AAPL") {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("range") != "1y" || r.URL.Query().Get("interval") != "1d" {
			t.Errorf("Unexpected query %s", r.URL.RawQuery)
		}
		fmt.Fprint(w, chartJSON([]int64{1700000000, 1700086400, 1700172800}, []string{"100.5", "101.25", "99.75"}))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	bars, err := client.DailyBars(context.Background(), "AAPL", "1y", "1d")
	if err != nil {
		t.Fatalf("DailyBars failed: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("Expected 3 bars, got %d", len(bars))
	}
	if bars[0].Ts != 1700000000 || bars[0].Close != 100.5 {
		t.Errorf("Unexpected first bar: %+v", bars[0])
	}
	for i := 1; i < len(bars); i++ {
		if bars[i].Ts <= bars[i-1].Ts {
			t.Errorf("Bars not in ascending time order at %d", i)
		}
	}
}

func TestDailyBarsSkipsNullSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON([]int64{1, 2, 3}, []string{"100", "null", "102"}))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	bars, err := client.DailyBars(context.Background(), "MSFT", "1y", "1d")
	if err != nil {
		t.Fatalf("DailyBars failed: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("Expected null session dropped, got %d bars", len(bars))
	}
	if bars[0].Close != 100 || bars[1].Close != 102 {
		t.Errorf("Unexpected bars after null skip: %+v", bars)
	}
}

func TestDailyBarsUnknownSymbolIsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	_, err := client.DailyBars(context.Background(), "NOSUCH", "1y", "1d")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected ErrNoData, got %v", err)
	}
}

func TestDailyBarsAllNullIsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartJSON([]int64{1, 2}, []string{"null", "null"}))
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	_, err := client.DailyBars(context.Background(), "HALT", "1y", "1d")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("Expected ErrNoData for all-null quotes, got %v", err)
	}
}

func TestDailyBarsHTTPErrorIsNotNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClientWithBaseURL(server.URL)
	_, err := client.DailyBars(context.Background(), "AAPL", "1y", "1d")
	if err == nil {
		t.Fatal("Expected an error for HTTP 429")
	}
	if errors.Is(err, ErrNoData) {
		t.Error("Transport errors must stay distinct from the no-data case")
	}
}

func TestRateLimiterHonorsContextCancel(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected deadline exceeded while bucket empty, got %v", err)
	}
}
