// Package reader turns inbound material (web pages, documents, raw text)
// into plain text for the rewrite engine.
package reader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"infocommander/internal/model"
)

// Caps bound the prompt size sent downstream, in runes.
const (
	WebTextCap = 15000
	PDFTextCap = 20000
)

// browserUA reduces anti-bot blocking on news sites.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

const maxDownloadBytes = 20 * 1024 * 1024

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Reader extracts plain text from the supported source kinds.
type Reader struct {
	client  HTTPClient
	timeout time.Duration
}

// New creates a Reader with the given HTTP client.
func New(client HTTPClient) *Reader {
	return &Reader{
		client:  client,
		timeout: 10 * time.Second,
	}
}

// Read produces plain text for a content request. Any network, parse, or
// decode failure is returned with a human-readable cause; the caller replies
// with it directly instead of retrying.
func (r *Reader) Read(ctx context.Context, req model.ContentRequest) (model.ExtractedText, error) {
	switch req.Origin {
	case model.OriginURL:
		if id, ok := VideoID(req.Raw); ok {
			return r.readYouTube(ctx, id, req.Raw)
		}
		return r.readWeb(ctx, req.Raw)
	case model.OriginDocument:
		return r.readDocument(ctx, req.Raw, req.MimeType)
	case model.OriginText, model.OriginRevision:
		return model.ExtractedText{Text: Truncate(req.Raw, WebTextCap)}, nil
	default:
		return model.ExtractedText{}, fmt.Errorf("unsupported origin %q", req.Origin)
	}
}

func (r *Reader) readWeb(ctx context.Context, pageURL string) (model.ExtractedText, error) {
	body, _, err := r.download(ctx, pageURL)
	if err != nil {
		return model.ExtractedText{}, fmt.Errorf("page is unreachable (the site may block crawlers): %w", err)
	}

	text, err := ExtractArticleText(bytes.NewReader(body))
	if err != nil {
		return model.ExtractedText{}, fmt.Errorf("page could not be parsed: %w", err)
	}
	if text == "" {
		return model.ExtractedText{}, fmt.Errorf("no readable text found on the page")
	}

	return model.ExtractedText{
		Text:      Truncate(text, WebTextCap),
		SourceURL: pageURL,
	}, nil
}

func (r *Reader) readDocument(ctx context.Context, fileURL, mimeType string) (model.ExtractedText, error) {
	switch mimeType {
	case "application/pdf", "text/plain":
	default:
		return model.ExtractedText{}, fmt.Errorf("unsupported document type %q, only PDF and TXT are accepted", mimeType)
	}

	body, _, err := r.download(ctx, fileURL)
	if err != nil {
		return model.ExtractedText{}, fmt.Errorf("document download failed: %w", err)
	}

	if mimeType == "text/plain" {
		return model.ExtractedText{Text: Truncate(string(body), WebTextCap)}, nil
	}

	text, err := extractPDFText(body)
	if err != nil {
		return model.ExtractedText{}, fmt.Errorf("document is not a readable PDF: %w", err)
	}
	return model.ExtractedText{Text: Truncate(text, PDFTextCap)}, nil
}

func (r *Reader) download(ctx context.Context, url string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// ExtractArticleText strips non-content markup from an HTML document and
// returns whitespace-collapsed plain text. The primary article container is
// preferred; the whole body is the fallback.
func ExtractArticleText(html io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(html)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside, iframe, noscript, .ads, .advertisement").Remove()

	text := doc.Find("article").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Find("body").Text()
	}

	return strings.Join(strings.Fields(text), " "), nil
}

func extractPDFText(data []byte) (string, error) {
	pr, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= pr.NumPage(); i++ {
		page := pr.Page(i)
		if page.V.IsNull() {
			continue
		}
		// Pages that fail to decode are skipped rather than failing the document.
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text")
	}
	return text, nil
}

// Truncate caps s at n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
