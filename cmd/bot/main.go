package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"infocommander/internal/bot"
	"infocommander/internal/config"
	"infocommander/internal/images"
	"infocommander/internal/reader"
	"infocommander/internal/rewrite"
	"infocommander/internal/scheduler"
	"infocommander/internal/search"
	"infocommander/internal/storage"
	"infocommander/internal/trends"
	"infocommander/internal/webhook"
	"infocommander/internal/youtube"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	engine, err := rewrite.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		log.Error("create rewrite engine", "error", err)
		os.Exit(1)
	}
	defer func() { _ = engine.Close() }()

	var videos *youtube.Client
	var news *search.Client
	if cfg.HasYouTube() {
		if videos, err = youtube.New(ctx, cfg.GoogleAPIKey); err != nil {
			log.Error("create youtube client", "error", err)
			os.Exit(1)
		}
	}
	if cfg.HasSearch() {
		if news, err = search.New(ctx, cfg.GoogleAPIKey, cfg.SearchEngineID); err != nil {
			log.Error("create search client", "error", err)
			os.Exit(1)
		}
	}

	var imageSearcher images.ImageSearcher
	if news != nil {
		imageSearcher = news
	}
	resolver := images.New(cfg.UnsplashAccessKey, imageSearcher, nil, log)
	hook := webhook.New(cfg.WebhookURL, nil, log)

	deps := bot.Deps{
		Reader:  reader.New(http.DefaultClient),
		Engine:  engine,
		Images:  resolver,
		Webhook: hook,
		Store:   store,
	}
	if videos != nil {
		deps.Videos = videos
	}
	if news != nil {
		deps.News = news
	}

	b, err := bot.New(cfg.TelegramBotToken, cfg, deps, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	schedDeps := scheduler.Deps{
		Sender: b,
		Trends: trends.New(http.DefaultClient),
		Engine: engine,
		Images: resolver,
		Hook:   hook,
	}
	if videos != nil {
		schedDeps.Videos = videos
	}
	if news != nil {
		schedDeps.News = news
	}

	sched, err := scheduler.New(cfg, schedDeps, log)
	if err != nil {
		log.Error("create scheduler", "error", err)
		os.Exit(1)
	}
	if err := sched.Start(); err != nil {
		log.Error("start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	go serveHealth(ctx, cfg.Port, log)

	log.Info("starting bot", "model", cfg.GeminiModel, "timezone", cfg.Timezone)

	b.Run(ctx)

	log.Info("bot stopped")
}

// serveHealth answers liveness probes so PaaS hosts keep the process alive.
func serveHealth(ctx context.Context, port string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintln(w, "Info Commander is running.")
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("health server", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
