// Package bot runs the Telegram side of the service: the long-polling
// update loop, private-chat content ingestion, the gate-channel draft flow,
// and chunked message delivery.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"infocommander/internal/config"
	"infocommander/internal/model"
	"infocommander/internal/storage"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	GetFileDirectURL(fileID string) (string, error)
}

// ContentReader extracts plain text from inbound material.
type ContentReader interface {
	Read(ctx context.Context, req model.ContentRequest) (model.ExtractedText, error)
}

// Rewriter generates posts, structured drafts, and topic analyses.
type Rewriter interface {
	Rewrite(ctx context.Context, text, instruction string) (string, error)
	Draft(ctx context.Context, raw string) (model.RewriteResult, error)
	Analyze(ctx context.Context, video model.Video, news []model.NewsResult) (model.RewriteResult, error)
}

// ImageResolver finds an illustration URL for a keyword, best effort.
type ImageResolver interface {
	Resolve(ctx context.Context, keyword string, kind model.ImageKind) string
}

// Publisher posts delivery payloads to the outbound webhook.
type Publisher interface {
	Enabled() bool
	Dispatch(ctx context.Context, payload model.DeliveryPayload)
}

// VideoSearcher finds the top recent video for a keyword.
type VideoSearcher interface {
	Search(ctx context.Context, keyword string, days int) (*model.Video, error)
}

// NewsSearcher returns news snippets for a query.
type NewsSearcher interface {
	News(ctx context.Context, query string) ([]model.NewsResult, error)
}

// Deps bundles the collaborating services the bot drives. Videos and News
// may be nil when the Google API key is not configured; the commands that
// need them reply with a disabled notice.
type Deps struct {
	Reader  ContentReader
	Engine  Rewriter
	Images  ImageResolver
	Webhook Publisher
	Videos  VideoSearcher
	News    NewsSearcher
	Store   storage.Storage
}

// Bot is the Telegram bot handling user messages, gate-channel posts, and
// publish callbacks.
type Bot struct {
	api    telegramAPI
	cfg    *config.Config
	reader ContentReader
	engine Rewriter
	images ImageResolver
	hook   Publisher
	videos VideoSearcher
	news   NewsSearcher
	store  storage.Storage
	log    *slog.Logger

	chunkDelay time.Duration
}

// New creates a Bot with the given Telegram token and collaborators.
func New(token string, cfg *config.Config, deps Deps, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return newBot(api, cfg, deps, log), nil
}

func newBot(api telegramAPI, cfg *config.Config, deps Deps, log *slog.Logger) *Bot {
	return &Bot{
		api:        api,
		cfg:        cfg,
		reader:     deps.Reader,
		engine:     deps.Engine,
		images:     deps.Images,
		hook:       deps.Webhook,
		videos:     deps.Videos,
		news:       deps.News,
		store:      deps.Store,
		log:        log,
		chunkDelay: chunkDelay,
	}
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			switch {
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			case update.ChannelPost != nil:
				b.handleChannelPost(ctx, update.ChannelPost)
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// SendMessage sends a plain text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}
