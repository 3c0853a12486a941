package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"infocommander/internal/model"
)

// imageMarker carries the resolved image URL inside the draft message text,
// keeping the gate flow stateless between the post and its callback.
const imageMarker = "🖼️ IMAGE_SRC: "

const (
	callbackPostSports  = "post_sports"
	callbackPostFinance = "post_finance"
	callbackSaveVault   = "save_vault"
)

// handleChannelPost turns raw material posted to the gate channel into a
// structured draft with an image suggestion and publish buttons.
func (b *Bot) handleChannelPost(ctx context.Context, post *tgbotapi.Message) {
	if !b.cfg.IsGateChannel(post.Chat.ID) {
		return
	}

	raw := post.Text
	if raw == "" {
		raw = post.Caption
	}
	if strings.TrimSpace(raw) == "" {
		return
	}

	b.log.Info("gate post received", "chat_id", post.Chat.ID, "message_id", post.MessageID)

	res, err := b.engine.Draft(ctx, raw)
	if err != nil {
		// The channel stays clean on failure; the operator checks the logs.
		b.log.Error("draft generation failed", "chat_id", post.Chat.ID, "error", err)
		return
	}

	var imageURL string
	if res.ImageDecision != nil {
		imageURL = b.images.Resolve(ctx, res.ImageDecision.Keyword, res.ImageDecision.Type)
	}

	text := res.Content
	if imageURL != "" {
		text += "\n\n" + imageMarker + imageURL
	}

	msg := tgbotapi.NewMessage(post.Chat.ID, text)
	msg.ReplyToMessageID = post.MessageID
	msg.ReplyMarkup = publishKeyboard()
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send draft", "chat_id", post.Chat.ID, "error", err)
	}
}

func publishKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏀 發布到運動版", callbackPostSports),
			tgbotapi.NewInlineKeyboardButtonData("📈 發布到財經版", callbackPostFinance),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 存入素材庫", callbackSaveVault),
		),
	)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Error("ack callback", "error", err)
	}
	if cb.Message == nil {
		return
	}

	content, imageURL := SplitImageMarker(cb.Message.Text)

	b.log.Info("callback",
		"action", cb.Data,
		"chat_id", cb.Message.Chat.ID,
		"user_id", cb.From.ID,
	)

	switch cb.Data {
	case callbackPostSports:
		b.publish(ctx, cb, "sports", "運動版", content, imageURL)
	case callbackPostFinance:
		b.publish(ctx, cb, "finance", "財經版", content, imageURL)
	case callbackSaveVault:
		b.saveToVault(ctx, cb, content, imageURL)
	}
}

func (b *Bot) publish(ctx context.Context, cb *tgbotapi.CallbackQuery, target, label, content, imageURL string) {
	chatID := cb.Message.Chat.ID

	if !b.hook.Enabled() {
		b.editMessage(chatID, cb.Message.MessageID, content+"\n\n⚠️ 未設定發布 Webhook，無法發射。")
		return
	}

	b.hook.Dispatch(ctx, model.DeliveryPayload{
		Target:   target,
		Content:  content,
		ImageURL: imageURL,
	})

	b.editMessage(chatID, cb.Message.MessageID, content+fmt.Sprintf("\n\n🚀 已發射至%s！", label))
}

// saveToVault stores the draft under the pressing user's ID so /vault in
// their private chat can list it later.
func (b *Bot) saveToVault(ctx context.Context, cb *tgbotapi.CallbackQuery, content, imageURL string) {
	chatID := cb.Message.Chat.ID

	draft := model.Draft{
		ChatID:   cb.From.ID,
		Content:  content,
		ImageURL: imageURL,
	}
	if err := b.store.SaveDraft(ctx, &draft); err != nil {
		b.log.Error("save draft", "error", err)
		b.editMessage(chatID, cb.Message.MessageID, content+"\n\n⚠️ 存入素材庫失敗。")
		return
	}

	b.editMessage(chatID, cb.Message.MessageID, content+fmt.Sprintf("\n\n💾 已存入素材庫（#%d）。", draft.ID))
}

// editMessage replaces a message's text, which also clears its inline keyboard.
func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.api.Send(edit); err != nil {
		b.log.Error("edit message", "chat_id", chatID, "error", err)
	}
}

// SplitImageMarker separates draft content from the trailing image marker
// line, returning the content and the image URL (empty when absent).
func SplitImageMarker(text string) (string, string) {
	idx := strings.LastIndex(text, imageMarker)
	if idx < 0 {
		return text, ""
	}
	content := strings.TrimRight(text[:idx], "\n")
	imageURL := strings.TrimSpace(text[idx+len(imageMarker):])
	return content, imageURL
}
