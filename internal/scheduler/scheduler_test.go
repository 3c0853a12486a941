package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"infocommander/internal/config"
	"infocommander/internal/model"
)

// --- mocks ---

type mockSender struct {
	messages []string
}

func (m *mockSender) SendMessage(_ int64, text string) { m.messages = append(m.messages, text) }
func (m *mockSender) SendLong(_ int64, text string)    { m.messages = append(m.messages, text) }

type mockVideos struct {
	popular  map[string][]model.Video
	latest   map[string][]model.Video
	search   map[string]*model.Video
	failOn   string
	searched []string
}

func (m *mockVideos) Search(_ context.Context, keyword string, _ int) (*model.Video, error) {
	m.searched = append(m.searched, keyword)
	if keyword == m.failOn {
		return nil, errors.New("quota exceeded")
	}
	return m.search[keyword], nil
}

func (m *mockVideos) MostPopular(_ context.Context, region string) ([]model.Video, error) {
	if region == m.failOn {
		return nil, errors.New("quota exceeded")
	}
	return m.popular[region], nil
}

func (m *mockVideos) ChannelLatest(_ context.Context, channelID string) ([]model.Video, error) {
	if channelID == m.failOn {
		return nil, errors.New("quota exceeded")
	}
	return m.latest[channelID], nil
}

type mockNews struct{}

func (m *mockNews) News(_ context.Context, _ string) ([]model.NewsResult, error) {
	return []model.NewsResult{{Title: "新聞", Snippet: "摘要"}}, nil
}

type mockTrends struct {
	trends map[string][]model.Trend
	failOn string
}

func (m *mockTrends) Fetch(_ context.Context, geo string) ([]model.Trend, error) {
	if geo == m.failOn {
		return nil, errors.New("rss unavailable")
	}
	return m.trends[geo], nil
}

type mockAnalyzer struct {
	res model.RewriteResult
}

func (m *mockAnalyzer) Analyze(_ context.Context, _ model.Video, _ []model.NewsResult) (model.RewriteResult, error) {
	return m.res, nil
}

type mockResolver struct{}

func (m *mockResolver) Resolve(_ context.Context, keyword string, _ model.ImageKind) string {
	if keyword == "" {
		return ""
	}
	return "https://img.example.com/" + keyword + ".jpg"
}

type mockHook struct {
	enabled  bool
	payloads []model.DeliveryPayload
}

func (m *mockHook) Enabled() bool { return m.enabled }
func (m *mockHook) Dispatch(_ context.Context, p model.DeliveryPayload) {
	m.payloads = append(m.payloads, p)
}

// --- helpers ---

type fixture struct {
	sender *mockSender
	videos *mockVideos
	trends *mockTrends
	hook   *mockHook
}

func newTestScheduler(t *testing.T, cfg *config.Config, f *fixture) *Scheduler {
	t.Helper()
	if cfg.Timezone == "" {
		cfg.Timezone = "UTC"
	}

	s, err := New(cfg, Deps{
		Sender: f.sender,
		Videos: f.videos,
		News:   &mockNews{},
		Trends: f.trends,
		Engine: &mockAnalyzer{res: model.RewriteResult{
			Content:       " ▌ 分析",
			ImageDecision: &model.ImageDecision{Type: model.ImageNews, Keyword: "kw"},
		}},
		Images: &mockResolver{},
		Hook:   f.hook,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	s.SetItemDelay(0)
	return s
}

func video(id, title string) model.Video {
	return model.Video{ID: id, Title: title, Channel: "ch", URL: "https://youtu.be/" + id}
}

func requireContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("message missing %q, got:\n%s", want, got)
	}
}

// --- jobs ---

func TestPopularReport(t *testing.T) {
	ctx := context.Background()

	t.Run("one report per region, failing region skipped", func(t *testing.T) {
		f := &fixture{
			sender: &mockSender{},
			videos: &mockVideos{
				popular: map[string][]model.Video{
					"TW": {video("a", "台灣第一")},
					"US": {video("b", "US first")},
				},
				failOn: "JP",
			},
			hook: &mockHook{},
		}
		cfg := &config.Config{OwnerChatID: 1, TrendRegions: []string{"TW", "JP", "US"}}

		newTestScheduler(t, cfg, f).PopularReport(ctx)

		if len(f.sender.messages) != 2 {
			t.Fatalf("expected 2 reports, got %d: %v", len(f.sender.messages), f.sender.messages)
		}
		requireContains(t, f.sender.messages[0], "[TW]")
		requireContains(t, f.sender.messages[0], "台灣第一")
		// The region after the failing one still runs.
		requireContains(t, f.sender.messages[1], "US first")
	})

	t.Run("skipped without owner chat", func(t *testing.T) {
		f := &fixture{sender: &mockSender{}, videos: &mockVideos{}, hook: &mockHook{}}
		cfg := &config.Config{TrendRegions: []string{"TW"}}
		newTestScheduler(t, cfg, f).PopularReport(ctx)
		if len(f.sender.messages) != 0 {
			t.Error("expected no reports without an owner chat")
		}
	})
}

func TestChannelMonitor(t *testing.T) {
	ctx := context.Background()

	f := &fixture{
		sender: &mockSender{},
		videos: &mockVideos{
			latest: map[string][]model.Video{
				"UC1": {video("a", "新片 A"), video("b", "新片 B")},
				"UC3": {video("c", "新片 C")},
			},
			failOn: "UC2",
		},
		hook: &mockHook{},
	}
	cfg := &config.Config{OwnerChatID: 1, MonitorChannels: []string{"UC1", "UC2", "UC3"}}

	newTestScheduler(t, cfg, f).ChannelMonitor(ctx)

	if len(f.sender.messages) != 3 {
		t.Fatalf("expected 3 alerts, got %d", len(f.sender.messages))
	}
	// The channel after the failing one still runs.
	requireContains(t, f.sender.messages[2], "新片 C")
}

func TestTrendReport(t *testing.T) {
	ctx := context.Background()

	f := &fixture{
		sender: &mockSender{},
		videos: &mockVideos{},
		trends: &mockTrends{
			trends: map[string][]model.Trend{
				"TW": {{Title: "熱搜一", Traffic: "20,000+"}},
			},
			failOn: "US",
		},
		hook: &mockHook{},
	}
	cfg := &config.Config{OwnerChatID: 1, TrendRegions: []string{"US", "TW"}}

	newTestScheduler(t, cfg, f).TrendReport(ctx)

	if len(f.sender.messages) != 1 {
		t.Fatalf("expected 1 report, got %d", len(f.sender.messages))
	}
	requireContains(t, f.sender.messages[0], "熱搜一")
	requireContains(t, f.sender.messages[0], "20,000+")
}

func TestDailyTopics(t *testing.T) {
	ctx := context.Background()

	t.Run("full pipeline dispatches per topic", func(t *testing.T) {
		f := &fixture{
			sender: &mockSender{},
			videos: &mockVideos{
				search: map[string]*model.Video{
					"NBA": {ID: "v1", Title: "NBA 冠軍賽", URL: "https://youtu.be/v1"},
					"台股": {ID: "v2", Title: "台股開盤", URL: "https://youtu.be/v2"},
				},
			},
			hook: &mockHook{enabled: true},
		}
		cfg := &config.Config{DailyTopics: []string{"NBA", "台股"}}

		newTestScheduler(t, cfg, f).DailyTopics(ctx)

		if len(f.hook.payloads) != 2 {
			t.Fatalf("expected 2 payloads, got %d", len(f.hook.payloads))
		}
		want := model.DeliveryPayload{
			Target:    "daily_topic",
			Content:   " ▌ 分析",
			ImageURL:  "https://img.example.com/kw.jpg",
			SourceURL: "https://youtu.be/v1",
		}
		if diff := cmp.Diff(want, f.hook.payloads[0]); diff != "" {
			t.Errorf("payload (-want +got):\n%s", diff)
		}
	})

	t.Run("failing topic does not halt the batch", func(t *testing.T) {
		f := &fixture{
			sender: &mockSender{},
			videos: &mockVideos{
				search: map[string]*model.Video{
					"後者": {ID: "v3", Title: "後者影片", URL: "https://youtu.be/v3"},
				},
				failOn: "前者",
			},
			hook: &mockHook{enabled: true},
		}
		cfg := &config.Config{DailyTopics: []string{"前者", "後者"}}

		newTestScheduler(t, cfg, f).DailyTopics(ctx)

		if diff := cmp.Diff([]string{"前者", "後者"}, f.videos.searched); diff != "" {
			t.Errorf("searched topics (-want +got):\n%s", diff)
		}
		if len(f.hook.payloads) != 1 {
			t.Fatalf("expected 1 payload, got %d", len(f.hook.payloads))
		}
	})

	t.Run("topic without a recent video is skipped", func(t *testing.T) {
		f := &fixture{
			sender: &mockSender{},
			videos: &mockVideos{search: map[string]*model.Video{}},
			hook:   &mockHook{enabled: true},
		}
		cfg := &config.Config{DailyTopics: []string{"冷門"}}

		newTestScheduler(t, cfg, f).DailyTopics(ctx)

		if len(f.hook.payloads) != 0 {
			t.Error("expected no payloads")
		}
	})

	t.Run("skipped when webhook disabled", func(t *testing.T) {
		f := &fixture{
			sender: &mockSender{},
			videos: &mockVideos{},
			hook:   &mockHook{enabled: false},
		}
		cfg := &config.Config{DailyTopics: []string{"NBA"}}

		newTestScheduler(t, cfg, f).DailyTopics(ctx)

		if len(f.videos.searched) != 0 {
			t.Error("expected no searches when the webhook is disabled")
		}
	})
}

func TestNewRejectsBadTimezone(t *testing.T) {
	_, err := New(&config.Config{Timezone: "Not/AZone"}, Deps{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err == nil {
		t.Fatal("expected error for unknown time zone")
	}
}
