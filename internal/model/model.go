// Package model defines the domain types used across the application.
package model

import "time"

// Origin identifies how a piece of source material reached the bot.
type Origin string

// Supported request origins, decided once at the ingress boundary.
const (
	OriginURL      Origin = "url"
	OriginDocument Origin = "document"
	OriginText     Origin = "text"
	OriginRevision Origin = "revision"
)

// ContentRequest is one inbound unit of work for the pipeline.
// For OriginRevision, Raw holds the previously generated article text and
// Instruction holds the user's edit request.
type ContentRequest struct {
	Origin      Origin
	Raw         string
	MimeType    string // set for OriginDocument
	Instruction string // set for OriginRevision
}

// ExtractedText is the plain-text output of the source reader.
// Text contains no markup and is truncated to the reader's cap.
type ExtractedText struct {
	Text      string
	SourceURL string
}

// ImageKind selects the image provider strategy.
type ImageKind string

// Supported image kinds.
const (
	ImageNews    ImageKind = "news"
	ImageConcept ImageKind = "concept"
)

// ImageDecision is the model's suggestion for an illustration image.
type ImageDecision struct {
	Type    ImageKind `json:"type"`
	Keyword string    `json:"keyword"`
}

// RewriteResult is the structured output of the rewrite engine.
type RewriteResult struct {
	Content       string         `json:"content"`
	ImageDecision *ImageDecision `json:"image_decision,omitempty"`
}

// DeliveryPayload is the JSON body posted to the outbound automation webhook.
// Delivery is fire-and-forget: at most once, no delivery guarantee.
type DeliveryPayload struct {
	Target    string `json:"target"`
	Content   string `json:"content"`
	ImageURL  string `json:"imageUrl"`
	SourceURL string `json:"sourceUrl,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Draft is a generated post saved to the vault for later publishing.
type Draft struct {
	ID        int64
	ChatID    int64
	Content   string
	ImageURL  string
	CreatedAt time.Time
}

// Video describes a YouTube video returned by search or listing calls.
type Video struct {
	ID          string
	Title       string
	Description string
	Channel     string
	URL         string
	PublishedAt time.Time
}

// NewsResult is one hit from the news search provider.
type NewsResult struct {
	Title   string
	Snippet string
}

// Trend is one entry from the Google Trends daily feed.
type Trend struct {
	Title   string
	Traffic string
}
