// Package trends downloads and parses the Google Trends daily-searches RSS feed.
package trends

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"infocommander/internal/model"
)

const feedURL = "https://trends.google.com/trends/trendingsearches/daily/rss?geo=%s"

const maxEntries = 10

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses trend feeds.
type Fetcher struct {
	client  HTTPClient
	timeout time.Duration
}

// New creates a Fetcher with the given HTTP client.
func New(client HTTPClient) *Fetcher {
	return &Fetcher{
		client:  client,
		timeout: 30 * time.Second,
	}
}

// Fetch returns the top daily trending searches for a region code.
func (f *Fetcher) Fetch(ctx context.Context, geo string) ([]model.Trend, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(feedURL, geo), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "InfoCommanderBot/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	var items []model.Trend
	for _, item := range feed.Items {
		if len(items) == maxEntries {
			break
		}
		items = append(items, model.Trend{
			Title:   item.Title,
			Traffic: approxTraffic(item),
		})
	}
	return items, nil
}

// approxTraffic pulls the ht:approx_traffic extension Google attaches to
// each trend entry, or "N/A" when absent.
func approxTraffic(item *gofeed.Item) string {
	ext, ok := item.Extensions["ht"]
	if !ok {
		return "N/A"
	}
	vals, ok := ext["approx_traffic"]
	if !ok || len(vals) == 0 || vals[0].Value == "" {
		return "N/A"
	}
	return vals[0].Value
}
