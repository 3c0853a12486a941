// Package search wraps the Google Custom Search API for news snippets and
// image lookup.
package search

import (
	"context"
	"fmt"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"infocommander/internal/model"
)

const newsResultCount = 3

// Client queries a configured custom search engine.
type Client struct {
	svc *customsearch.Service
	cx  string
}

// New creates a Client authenticated with an API key.
func New(ctx context.Context, apiKey, searchEngineID string) (*Client, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create customsearch service: %w", err)
	}
	return &Client{svc: svc, cx: searchEngineID}, nil
}

// NewWithService creates a Client from an existing service (useful for testing).
func NewWithService(svc *customsearch.Service, searchEngineID string) *Client {
	return &Client{svc: svc, cx: searchEngineID}
}

// News returns up to three title/snippet pairs for a query.
func (c *Client) News(ctx context.Context, query string) ([]model.NewsResult, error) {
	resp, err := c.svc.Cse.List().
		Cx(c.cx).
		Q(query).
		Num(newsResultCount).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}

	var results []model.NewsResult
	for _, item := range resp.Items {
		results = append(results, model.NewsResult{
			Title:   item.Title,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

// Image returns the link of the first image hit for a keyword, or an empty
// string when the engine finds nothing.
func (c *Client) Image(ctx context.Context, keyword string) (string, error) {
	resp, err := c.svc.Cse.List().
		Cx(c.cx).
		Q(keyword).
		SearchType("image").
		Num(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("image search: %w", err)
	}
	if len(resp.Items) == 0 {
		return "", nil
	}
	return resp.Items[0].Link, nil
}
