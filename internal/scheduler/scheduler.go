// Package scheduler runs the daily cron jobs: trending-video digests,
// channel monitoring, trend reports, and the automated topic pipeline.
// Jobs are stateless; batches run items strictly in sequence with a fixed
// delay, and one failing item never halts the rest of its batch.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"infocommander/internal/bot"
	"infocommander/internal/config"
	"infocommander/internal/model"
)

const (
	jobTimeout       = 10 * time.Minute
	defaultItemDelay = 3 * time.Second

	// Recency window for the daily-topic video search.
	topicSearchDays = 2
)

// Sender delivers scheduled reports to Telegram.
type Sender interface {
	SendMessage(chatID int64, text string)
	SendLong(chatID int64, text string)
}

// VideoSource provides the YouTube Data API lookups the jobs need.
type VideoSource interface {
	Search(ctx context.Context, keyword string, days int) (*model.Video, error)
	MostPopular(ctx context.Context, region string) ([]model.Video, error)
	ChannelLatest(ctx context.Context, channelID string) ([]model.Video, error)
}

// NewsSource returns news snippets for a query.
type NewsSource interface {
	News(ctx context.Context, query string) ([]model.NewsResult, error)
}

// TrendSource returns the daily top searches for a region.
type TrendSource interface {
	Fetch(ctx context.Context, geo string) ([]model.Trend, error)
}

// Analyzer writes a briefing from a video and news snippets.
type Analyzer interface {
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

// Deps bundles the services the scheduled jobs drive. Videos, News, and
// Trends may be nil; jobs that need a missing source skip with a log line.
type Deps struct {
	Sender Sender
	Videos VideoSource
	News   NewsSource
	Trends TrendSource
	Engine Analyzer
	Images ImageResolver
	Hook   Publisher
}

// Scheduler owns the cron entries and the batch runners behind them.
type Scheduler struct {
	cron *cron.Cron
	cfg  *config.Config
	deps Deps
	log  *slog.Logger

	itemDelay time.Duration
}

// New creates a Scheduler whose cron entries fire in the configured time zone.
func New(cfg *config.Config, deps Deps, log *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		cfg:       cfg,
		deps:      deps,
		log:       log,
		itemDelay: defaultItemDelay,
	}, nil
}

// SetItemDelay overrides the pause between sequential batch items.
func (s *Scheduler) SetItemDelay(d time.Duration) {
	s.itemDelay = d
}

// Start registers the daily jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	jobs := []struct {
		spec string
		name string
		run  func(context.Context)
	}{
		{"0 5 * * *", "popular videos", s.PopularReport},
		{"10 5 * * *", "channel monitor", s.ChannelMonitor},
		{"0 6 * * *", "trend report", s.TrendReport},
		{"0 8 * * *", "daily topics", s.DailyTopics},
	}

	for _, j := range jobs {
		job := j
		_, err := s.cron.AddFunc(job.spec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			s.log.Info("job start", "job", job.name)
			job.run(ctx)
			s.log.Info("job done", "job", job.name)
		})
		if err != nil {
			return fmt.Errorf("register job %q: %w", job.name, err)
		}
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// PopularReport sends one trending-videos digest per configured region.
func (s *Scheduler) PopularReport(ctx context.Context) {
	if s.deps.Videos == nil || s.cfg.OwnerChatID == 0 {
		s.log.Debug("popular report skipped", "reason", "no video source or owner chat")
		return
	}

	for i, region := range s.cfg.TrendRegions {
		if ctx.Err() != nil {
			return
		}
		if i > 0 {
			time.Sleep(s.itemDelay)
		}

		videos, err := s.deps.Videos.MostPopular(ctx, region)
		if err != nil {
			s.log.Error("most popular", "region", region, "error", err)
			continue
		}
		s.deps.Sender.SendLong(s.cfg.OwnerChatID, bot.FormatPopularReport(region, videos))
	}
}

// ChannelMonitor alerts the owner about new uploads on monitored channels.
func (s *Scheduler) ChannelMonitor(ctx context.Context) {
	if s.deps.Videos == nil || s.cfg.OwnerChatID == 0 {
		s.log.Debug("channel monitor skipped", "reason", "no video source or owner chat")
		return
	}

	for i, channelID := range s.cfg.MonitorChannels {
		if ctx.Err() != nil {
			return
		}
		if i > 0 {
			time.Sleep(s.itemDelay)
		}

		videos, err := s.deps.Videos.ChannelLatest(ctx, channelID)
		if err != nil {
			s.log.Error("channel latest", "channel", channelID, "error", err)
			continue
		}
		for _, v := range videos {
			s.deps.Sender.SendMessage(s.cfg.OwnerChatID, bot.FormatVideoAlert(v))
		}
	}
}

// TrendReport sends one Google Trends digest per configured region.
func (s *Scheduler) TrendReport(ctx context.Context) {
	if s.deps.Trends == nil || s.cfg.OwnerChatID == 0 {
		s.log.Debug("trend report skipped", "reason", "no trend source or owner chat")
		return
	}

	for i, region := range s.cfg.TrendRegions {
		if ctx.Err() != nil {
			return
		}
		if i > 0 {
			time.Sleep(s.itemDelay)
		}

		trends, err := s.deps.Trends.Fetch(ctx, region)
		if err != nil {
			s.log.Error("fetch trends", "region", region, "error", err)
			continue
		}
		s.deps.Sender.SendLong(s.cfg.OwnerChatID, bot.FormatTrendReport(region, trends))
	}
}

// DailyTopics runs the fully automated pipeline for each configured topic:
// top video, news snippets, generated analysis, image, webhook dispatch.
func (s *Scheduler) DailyTopics(ctx context.Context) {
	if s.deps.Videos == nil || !s.deps.Hook.Enabled() {
		s.log.Debug("daily topics skipped", "reason", "no video source or webhook")
		return
	}

	for i, topic := range s.cfg.DailyTopics {
		if ctx.Err() != nil {
			return
		}
		if i > 0 {
			time.Sleep(s.itemDelay)
		}
		s.runTopic(ctx, topic)
	}
}

func (s *Scheduler) runTopic(ctx context.Context, topic string) {
	video, err := s.deps.Videos.Search(ctx, topic, topicSearchDays)
	if err != nil {
		s.log.Error("topic video search", "topic", topic, "error", err)
		return
	}
	if video == nil {
		s.log.Info("no recent video for topic", "topic", topic)
		return
	}

	var news []model.NewsResult
	if s.deps.News != nil {
		news, err = s.deps.News.News(ctx, topic)
		if err != nil {
			s.log.Warn("topic news search", "topic", topic, "error", err)
		}
	}

	res, err := s.deps.Engine.Analyze(ctx, *video, news)
	if err != nil {
		s.log.Error("topic analysis", "topic", topic, "error", err)
		return
	}

	var imageURL string
	if res.ImageDecision != nil {
		imageURL = s.deps.Images.Resolve(ctx, res.ImageDecision.Keyword, res.ImageDecision.Type)
	}

	s.deps.Hook.Dispatch(ctx, model.DeliveryPayload{
		Target:    "daily_topic",
		Content:   res.Content,
		ImageURL:  imageURL,
		SourceURL: video.URL,
	})
	s.log.Info("topic dispatched", "topic", topic, "video_id", video.ID)
}
