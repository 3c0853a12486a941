// Package images resolves an illustration image for a keyword on a strict
// best-effort basis: a missing image never blocks text delivery.
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"infocommander/internal/model"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ImageSearcher is the general image-search fallback provider.
type ImageSearcher interface {
	Image(ctx context.Context, keyword string) (string, error)
}

// Resolver tries a concept-art provider first for concept keywords, then
// falls back to general image search.
type Resolver struct {
	unsplashKey string
	searcher    ImageSearcher
	client      HTTPClient
	log         *slog.Logger
}

// New creates a Resolver. Either provider may be absent: an empty Unsplash
// key or a nil searcher simply disables that provider.
func New(unsplashKey string, searcher ImageSearcher, client HTTPClient, log *slog.Logger) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Resolver{
		unsplashKey: unsplashKey,
		searcher:    searcher,
		client:      client,
		log:         log,
	}
}

// Resolve returns an image URL for the keyword or an empty string. Provider
// failures (quota, network, unconfigured) are swallowed: the caller can rely
// on Resolve never failing.
func (r *Resolver) Resolve(ctx context.Context, keyword string, kind model.ImageKind) string {
	if keyword == "" {
		return ""
	}

	if kind == model.ImageConcept && r.unsplashKey != "" {
		if u, err := r.unsplash(ctx, keyword); err != nil {
			r.log.Debug("unsplash lookup failed", "keyword", keyword, "error", err)
		} else if u != "" {
			return u
		}
	}

	if r.searcher == nil {
		return ""
	}
	u, err := r.searcher.Image(ctx, keyword)
	if err != nil {
		r.log.Debug("image search failed", "keyword", keyword, "error", err)
		return ""
	}
	return u
}

func (r *Resolver) unsplash(ctx context.Context, keyword string) (string, error) {
	endpoint := fmt.Sprintf(
		"https://api.unsplash.com/search/photos?query=%s&per_page=1&client_id=%s",
		url.QueryEscape(keyword), url.QueryEscape(r.unsplashKey),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	var parsed struct {
		Results []struct {
			URLs struct {
				Regular string `json:"regular"`
			} `json:"urls"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return "", nil
	}
	return parsed.Results[0].URLs.Regular, nil
}
