// Package rewrite turns extracted source text into social-media posts
// using the Gemini API.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"infocommander/internal/model"
)

// generator is the slice of genai.GenerativeModel the engine needs.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Engine builds prompts and calls the hosted generation API.
type Engine struct {
	gen       generator
	client    *genai.Client
	modelName string
	log       *slog.Logger
}

// New creates an Engine pinned to the given model.
func New(ctx context.Context, apiKey, modelName string, log *slog.Logger) (*Engine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Engine{
		gen:       client.GenerativeModel(modelName),
		client:    client,
		modelName: modelName,
		log:       log,
	}, nil
}

// NewWithGenerator creates an Engine with a custom generator (useful for testing).
func NewWithGenerator(gen generator, log *slog.Logger) *Engine {
	return &Engine{gen: gen, log: log}
}

// Close releases the underlying API client.
func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	return e.client.Close()
}

// Rewrite produces a plain-text post from source material. A non-empty
// instruction switches the prompt into the editing loop: the article is
// revised per the instruction while keeping its structure.
func (e *Engine) Rewrite(ctx context.Context, text, instruction string) (string, error) {
	var prompt string
	if instruction != "" {
		prompt = fmt.Sprintf(revisionPromptTemplate, systemPrompt, text, instruction)
	} else {
		prompt = fmt.Sprintf(composePromptTemplate, systemPrompt, text)
	}

	out, err := e.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generate post: %w", err)
	}
	return out, nil
}

// Draft rewrites gate-channel material into a structured draft with an image
// suggestion. A response that fails to decode as JSON yields a minimal
// fallback result instead of an error so the flow can still deliver something.
func (e *Engine) Draft(ctx context.Context, raw string) (model.RewriteResult, error) {
	out, err := e.generate(ctx, fmt.Sprintf(draftPromptTemplate, raw))
	if err != nil {
		return model.RewriteResult{}, fmt.Errorf("generate draft: %w", err)
	}

	res, err := DecodeResult(out)
	if err != nil {
		e.log.Warn("draft response not valid JSON, using fallback", "error", err)
		return fallbackResult(raw), nil
	}
	return res, nil
}

// Analyze writes a daily briefing from a YouTube hit and news snippets.
// The same JSON contract and fallback as Draft apply.
func (e *Engine) Analyze(ctx context.Context, video model.Video, news []model.NewsResult) (model.RewriteResult, error) {
	var ctxLines []string
	for i, n := range news {
		ctxLines = append(ctxLines, fmt.Sprintf("%d. [%s]: %s", i+1, n.Title, n.Snippet))
	}

	prompt := fmt.Sprintf(analysisPromptTemplate,
		video.Title, video.Channel, video.Description, strings.Join(ctxLines, "\n"))

	out, err := e.generate(ctx, prompt)
	if err != nil {
		return model.RewriteResult{}, fmt.Errorf("generate analysis: %w", err)
	}

	res, err := DecodeResult(out)
	if err != nil {
		e.log.Warn("analysis response not valid JSON, using fallback", "error", err)
		return fallbackResult(video.Title), nil
	}
	return res, nil
}

func (e *Engine) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := e.gen.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	text := responseText(resp)
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

func fallbackResult(raw string) model.RewriteResult {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	return model.RewriteResult{Content: " ▌ " + title}
}

// UserMessage maps a generation error to a message suitable for a chat reply,
// distinguishing permission problems from transient busy states.
func UserMessage(err error) string {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 404:
			return "權限錯誤 (404) - 您的帳號似乎不支援此模型"
		case 409:
			return "系統忙碌中 (Conflict)，請稍後再試。"
		}
	}
	return err.Error()
}
