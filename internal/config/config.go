// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultModel is the pinned Gemini model used when GEMINI_MODEL is unset.
const DefaultModel = "gemini-3-flash-preview"

// Config holds the application configuration.
// Mandatory credentials are validated in Load; every optional value that is
// absent silently disables the feature depending on it.
type Config struct {
	TelegramBotToken string
	GeminiAPIKey     string
	GeminiModel      string

	// Google Cloud key shared by the YouTube Data API and Custom Search.
	GoogleAPIKey   string
	SearchEngineID string

	UnsplashAccessKey string
	WebhookURL        string

	GateChannelID int64
	OwnerChatID   int64

	MonitorChannels []string
	DailyTopics     []string
	TrendRegions    []string

	Timezone     string
	DatabasePath string
	LogLevel     string
	Port         string
}

// Load reads configuration from the environment, consulting a .env file
// first when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	googleKey := os.Getenv("GOOGLE_SEARCH_KEY")
	if googleKey == "" {
		googleKey = os.Getenv("GOOGLE_CLOUD_API_KEY")
	}

	gateChannelID, err := parseOptionalID(os.Getenv("GATE_CHANNEL_ID"))
	if err != nil {
		return nil, fmt.Errorf("invalid GATE_CHANNEL_ID: %w", err)
	}
	ownerChatID, err := parseOptionalID(os.Getenv("MY_CHAT_ID"))
	if err != nil {
		return nil, fmt.Errorf("invalid MY_CHAT_ID: %w", err)
	}

	regions := splitList(os.Getenv("TREND_REGIONS"))
	if len(regions) == 0 {
		regions = []string{"TW"}
	}

	return &Config{
		TelegramBotToken:  token,
		GeminiAPIKey:      geminiKey,
		GeminiModel:       envOrDefault("GEMINI_MODEL", DefaultModel),
		GoogleAPIKey:      googleKey,
		SearchEngineID:    os.Getenv("SEARCH_ENGINE_ID"),
		UnsplashAccessKey: os.Getenv("UNSPLASH_ACCESS_KEY"),
		WebhookURL:        os.Getenv("MAKE_WEBHOOK_URL"),
		GateChannelID:     gateChannelID,
		OwnerChatID:       ownerChatID,
		MonitorChannels:   splitList(os.Getenv("MONITOR_CHANNELS")),
		DailyTopics:       splitList(os.Getenv("DAILY_TOPICS")),
		TrendRegions:      regions,
		Timezone:          envOrDefault("TIMEZONE", "Asia/Taipei"),
		DatabasePath:      envOrDefault("DATABASE_PATH", "./data/vault.db"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		Port:              envOrDefault("PORT", "10000"),
	}, nil
}

// HasYouTube reports whether the YouTube Data API features are enabled.
func (c *Config) HasYouTube() bool {
	return c.GoogleAPIKey != ""
}

// HasSearch reports whether Custom Search features are enabled.
func (c *Config) HasSearch() bool {
	return c.GoogleAPIKey != "" && c.SearchEngineID != ""
}

// IsGateChannel reports whether a chat is the configured gate channel.
// An unset gate channel accepts posts from any channel the bot is in.
func (c *Config) IsGateChannel(chatID int64) bool {
	return c.GateChannelID == 0 || c.GateChannelID == chatID
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseOptionalID(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
