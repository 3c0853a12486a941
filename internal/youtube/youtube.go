// Package youtube wraps the YouTube Data API v3 calls used by the bot:
// keyword search, trending listings, and channel monitoring.
package youtube

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"infocommander/internal/model"
)

const watchURL = "https://www.youtube.com/watch?v=%s"

// Client queries the YouTube Data API.
type Client struct {
	svc *yt.Service
	now func() time.Time
}

// New creates a Client authenticated with an API key.
func New(ctx context.Context, apiKey string) (*Client, error) {
	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}
	return &Client{svc: svc, now: time.Now}, nil
}

// NewWithService creates a Client from an existing service (useful for testing).
func NewWithService(svc *yt.Service) *Client {
	return &Client{svc: svc, now: time.Now}
}

// Search returns the most-viewed video matching a keyword within the given
// recency window, or nil when nothing matches.
func (c *Client) Search(ctx context.Context, keyword string, days int) (*model.Video, error) {
	publishedAfter := c.now().AddDate(0, 0, -days).UTC().Format(time.RFC3339)

	resp, err := c.svc.Search.List([]string{"snippet"}).
		Q(keyword).
		Order("viewCount").
		Type("video").
		RelevanceLanguage("zh-Hant").
		PublishedAfter(publishedAfter).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	v := searchItemToVideo(resp.Items[0])
	return &v, nil
}

// MostPopular returns the top trending videos for a region.
func (c *Client) MostPopular(ctx context.Context, regionCode string) ([]model.Video, error) {
	resp, err := c.svc.Videos.List([]string{"snippet"}).
		Chart("mostPopular").
		RegionCode(regionCode).
		MaxResults(3).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("most popular for %s: %w", regionCode, err)
	}

	var videos []model.Video
	for _, item := range resp.Items {
		videos = append(videos, model.Video{
			ID:      item.Id,
			Title:   item.Snippet.Title,
			Channel: item.Snippet.ChannelTitle,
			URL:     fmt.Sprintf(watchURL, item.Id),
		})
	}
	return videos, nil
}

// ChannelLatest returns up to three videos a channel published in the last
// 24 hours. The search response carries a shortened description, so each hit
// is followed up with a videos.list call for the full one.
func (c *Client) ChannelLatest(ctx context.Context, channelID string) ([]model.Video, error) {
	publishedAfter := c.now().AddDate(0, 0, -1).UTC().Format(time.RFC3339)

	resp, err := c.svc.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		Order("date").
		Type("video").
		PublishedAfter(publishedAfter).
		MaxResults(3).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("channel latest for %s: %w", channelID, err)
	}

	var videos []model.Video
	for _, item := range resp.Items {
		v := searchItemToVideo(item)

		detail, err := c.svc.Videos.List([]string{"snippet"}).
			Id(v.ID).
			Context(ctx).
			Do()
		if err == nil && len(detail.Items) > 0 {
			v.Description = detail.Items[0].Snippet.Description
		}

		videos = append(videos, v)
	}
	return videos, nil
}

func searchItemToVideo(item *yt.SearchResult) model.Video {
	v := model.Video{
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		Channel:     item.Snippet.ChannelTitle,
	}
	if item.Id != nil {
		v.ID = item.Id.VideoId
		v.URL = fmt.Sprintf(watchURL, v.ID)
	}
	if t, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
		v.PublishedAt = t
	}
	return v
}
