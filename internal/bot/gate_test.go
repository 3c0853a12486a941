package bot

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"infocommander/internal/config"
	"infocommander/internal/model"
)

func channelPost(chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 7,
		Chat:      &tgbotapi.Chat{ID: chatID, Type: "channel"},
		Text:      text,
	}
}

func draftCallback(data, messageText string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "cb1",
		Data: data,
		From: &tgbotapi.User{ID: 42},
		Message: &tgbotapi.Message{
			MessageID: 7,
			Chat:      &tgbotapi.Chat{ID: -100},
			Text:      messageText,
		},
	}
}

func TestHandleChannelPost(t *testing.T) {
	ctx := context.Background()

	t.Run("draft with image marker and keyboard", func(t *testing.T) {
		b, d := newTestBot(t, nil)
		d.engine.draft = model.RewriteResult{
			Content:       " ▌ 賽事速報\n\n快訊內文。",
			ImageDecision: &model.ImageDecision{Type: model.ImageNews, Keyword: "湖人 比賽"},
		}

		b.handleChannelPost(ctx, channelPost(-100, "原始素材"))

		reply := d.api.lastText()
		requireContains(t, reply, "賽事速報")
		requireContains(t, reply, imageMarker+"https://img.example.com/pic.jpg")
	})

	t.Run("no image decision means no marker", func(t *testing.T) {
		b, d := newTestBot(t, nil)
		d.engine.draft = model.RewriteResult{Content: " ▌ 純文字草稿"}

		b.handleChannelPost(ctx, channelPost(-100, "素材"))

		if got := d.api.lastText(); got != " ▌ 純文字草稿" {
			t.Errorf("unexpected draft text: %q", got)
		}
	})

	t.Run("non-gate channel ignored", func(t *testing.T) {
		cfg := &config.Config{GateChannelID: -200}
		b, d := newTestBot(t, cfg)
		b.handleChannelPost(ctx, channelPost(-100, "素材"))
		if len(d.api.allTexts()) != 0 {
			t.Error("expected post outside the gate channel to be ignored")
		}
	})

	t.Run("empty post ignored", func(t *testing.T) {
		b, d := newTestBot(t, nil)
		b.handleChannelPost(ctx, channelPost(-100, "   "))
		if len(d.api.allTexts()) != 0 {
			t.Error("expected empty post to be ignored")
		}
	})

	t.Run("draft error keeps channel silent", func(t *testing.T) {
		b, d := newTestBot(t, nil)
		d.engine.err = errors.New("quota exceeded")
		b.handleChannelPost(ctx, channelPost(-100, "素材"))
		if texts := d.api.allTexts(); len(texts) != 0 {
			t.Errorf("expected no channel messages on draft failure, got %v", texts)
		}
	})
}

func TestHandleCallbackPublish(t *testing.T) {
	ctx := context.Background()
	draftText := " ▌ 草稿\n\n內文。\n\n" + imageMarker + "https://img.example.com/pic.jpg"

	t.Run("publish dispatches payload and edits message", func(t *testing.T) {
		b, d := newTestBot(t, nil)
		b.handleCallback(ctx, draftCallback(callbackPostSports, draftText))

		want := []model.DeliveryPayload{{
			Target:   "sports",
			Content:  " ▌ 草稿\n\n內文。",
			ImageURL: "https://img.example.com/pic.jpg",
		}}
		if diff := cmp.Diff(want, d.hook.payloads); diff != "" {
			t.Errorf("payloads (-want +got):\n%s", diff)
		}
		requireContains(t, d.api.lastEdit(), "已發射至運動版")
	})

	t.Run("finance target", func(t *testing.T) {
		b, d := newTestBot(t, nil)
		b.handleCallback(ctx, draftCallback(callbackPostFinance, draftText))
		if d.hook.payloads[0].Target != "finance" {
			t.Errorf("target = %q", d.hook.payloads[0].Target)
		}
	})

	t.Run("webhook disabled", func(t *testing.T) {
		b, d := newTestBot(t, nil)
		d.hook.enabled = false
		b.handleCallback(ctx, draftCallback(callbackPostSports, draftText))
		if len(d.hook.payloads) != 0 {
			t.Error("expected no dispatch when webhook is disabled")
		}
		requireContains(t, d.api.lastEdit(), "未設定發布 Webhook")
	})

	t.Run("save_vault stores draft under the pressing user", func(t *testing.T) {
		b, d := newTestBot(t, nil)
		b.handleCallback(ctx, draftCallback(callbackSaveVault, draftText))
		requireContains(t, d.api.lastEdit(), "已存入素材庫")

		drafts, err := d.store.ListDrafts(ctx, 42, 10)
		if err != nil {
			t.Fatalf("list drafts: %v", err)
		}
		if len(drafts) != 1 {
			t.Fatalf("expected 1 draft, got %d", len(drafts))
		}
		if diff := cmp.Diff(" ▌ 草稿\n\n內文。", drafts[0].Content); diff != "" {
			t.Errorf("content (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff("https://img.example.com/pic.jpg", drafts[0].ImageURL); diff != "" {
			t.Errorf("image url (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown action ignored", func(t *testing.T) {
		b, d := newTestBot(t, nil)
		b.handleCallback(ctx, draftCallback("noop", draftText))
		if len(d.hook.payloads) != 0 || d.api.lastEdit() != "" {
			t.Error("expected unknown callback to be a no-op")
		}
	})
}

func TestSplitImageMarker(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantText string
		wantURL  string
	}{
		{
			name:     "with marker",
			text:     "內容\n\n" + imageMarker + "https://x.com/a.jpg",
			wantText: "內容",
			wantURL:  "https://x.com/a.jpg",
		},
		{
			name:     "without marker",
			text:     "內容而已",
			wantText: "內容而已",
			wantURL:  "",
		},
		{
			name:     "marker with trailing whitespace",
			text:     "內容\n\n" + imageMarker + "https://x.com/a.jpg \n",
			wantText: "內容",
			wantURL:  "https://x.com/a.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotText, gotURL := SplitImageMarker(tt.text)
			if diff := cmp.Diff(tt.wantText, gotText); diff != "" {
				t.Errorf("content (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantURL, gotURL); diff != "" {
				t.Errorf("url (-want +got):\n%s", diff)
			}
		})
	}
}
