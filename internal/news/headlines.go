// Package news scrapes recent headlines for an instrument, used to enrich
// buy alerts.
package news

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"stock-alerter/internal/api"
	"stock-alerter/internal/logger"
	"stock-alerter/internal/types"
)

const defaultGoogleBase = "https://news.google.com"

// Scraper collects headlines from Google News, falling back to the Yahoo
// Finance quote page when the search returns nothing. It implements
// interfaces.HeadlineProvider.
type Scraper struct {
	timeout    time.Duration
	googleBase string
	yahooBase  string
	api        *api.Client
}

// ScraperOption configures a Scraper.
type ScraperOption func(*Scraper)

// WithGoogleBase overrides the Google News endpoint. Used by tests.
func WithGoogleBase(base string) ScraperOption {
	return func(s *Scraper) { s.googleBase = base }
}

// WithYahooBase overrides the Yahoo Finance endpoint. Used by tests.
func WithYahooBase(base string) ScraperOption {
	return func(s *Scraper) { s.yahooBase = base }
}

// NewScraper creates a headline scraper.
func NewScraper(timeout time.Duration, opts ...ScraperOption) *Scraper {
	s := &Scraper{
		timeout:    timeout,
		googleBase: defaultGoogleBase,
		yahooBase:  "https://finance.yahoo.com",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.api = api.NewClient(
		api.WithTimeout(timeout),
		api.WithHeaders(api.YahooFinanceHeaders()),
	)
	return s
}

// Headlines returns up to max recent headlines for the symbol. A scrape
// that finds nothing is not an error; the caller gets an empty slice.
func (s *Scraper) Headlines(ctx context.Context, symbol string, max int) ([]types.Headline, error) {
	if max <= 0 {
		return nil, nil
	}

	heads, err := s.scrapeGoogleNews(ctx, symbol, max)
	if err != nil {
		logger.Warn(ctx, "Google News scrape failed, trying quote page", "symbol", symbol, "error", err)
	}
	if len(heads) > 0 {
		return heads, nil
	}

	return s.scrapeYahooQuotePage(ctx, symbol, max)
}

func (s *Scraper) scrapeGoogleNews(ctx context.Context, symbol string, max int) ([]types.Headline, error) {
	headlines := []types.Headline{}

	opts := []colly.CollectorOption{colly.MaxDepth(1)}
	if s.googleBase == defaultGoogleBase {
		opts = append(opts, colly.AllowedDomains("news.google.com", "www.google.com"))
	}
	c := colly.NewCollector(opts...)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(headlines) >= max {
			return
		}

		title := strings.TrimSpace(e.ChildText("h3, h4"))
		link := e.ChildAttr("a", "href")
		if title == "" || link == "" {
			return
		}

		// Google News links are relative redirects.
		if strings.HasPrefix(link, "./articles/") {
			link = s.googleBase + link[1:]
		}

		headlines = append(headlines, types.Headline{
			Title:  title,
			URL:    link,
			Source: "GoogleNews",
		})
	})

	query := url.QueryEscape(symbol + " stock")
	searchURL := fmt.Sprintf("%s/search?q=%s&hl=en-US&gl=US&ceid=US:en", s.googleBase, query)

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}
	c.Wait()

	logger.Debug(ctx, "Google News scrape completed", "symbol", symbol, "headlines", len(headlines))
	return headlines, nil
}

func (s *Scraper) scrapeYahooQuotePage(ctx context.Context, symbol string, max int) ([]types.Headline, error) {
	pageURL := fmt.Sprintf("%s/quote/%s/news", s.yahooBase, url.PathEscape(symbol))

	resp, err := s.api.GET(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("quote page for %s: %w", symbol, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("parse quote page for %s: %w", symbol, err)
	}

	headlines := []types.Headline{}
	doc.Find("li.stream-item h3 a, li.js-stream-content h3 a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Text())
		link, _ := sel.Attr("href")
		if title == "" || link == "" {
			return true
		}
		if strings.HasPrefix(link, "/") {
			link = s.yahooBase + link
		}
		headlines = append(headlines, types.Headline{Title: title, URL: link, Source: "YahooFinance"})
		return len(headlines) < max
	})

	logger.Debug(ctx, "Quote page scrape completed", "symbol", symbol, "headlines", len(headlines))
	return headlines, nil
}
