package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"infocommander/internal/model"
	"infocommander/internal/reader"
	"infocommander/internal/rewrite"
)

const (
	defaultSearchDays = 7
	vaultListLimit    = 10
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil || !msg.Chat.IsPrivate() {
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	req, note, ok := b.classify(msg)
	if !ok {
		return
	}
	if note != "" {
		b.reply(msg.Chat.ID, note)
	}
	b.processContent(ctx, msg.Chat.ID, req)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case "search":
		b.handleSearch(ctx, chatID, args)
	case "vault":
		b.handleVault(ctx, chatID, args)
	default:
		b.reply(chatID, "未知指令，使用 /help 查看可用功能。")
	}
}

// classify decides once, at ingress, how a private message enters the
// pipeline. A reply to one of the bot's own messages is a revision request;
// everything else is a document, a URL, or raw text.
func (b *Bot) classify(msg *tgbotapi.Message) (model.ContentRequest, string, bool) {
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil &&
		msg.ReplyToMessage.From.IsBot && msg.Text != "" {
		return model.ContentRequest{
			Origin:      model.OriginRevision,
			Raw:         msg.ReplyToMessage.Text,
			Instruction: msg.Text,
		}, "✍️ 收到修改指示，重寫中…", true
	}

	if msg.Document != nil {
		fileURL, err := b.api.GetFileDirectURL(msg.Document.FileID)
		if err != nil {
			b.log.Error("resolve document url", "file_id", msg.Document.FileID, "error", err)
			b.reply(msg.Chat.ID, "無法下載這份文件，請再試一次。")
			return model.ContentRequest{}, "", false
		}
		return model.ContentRequest{
			Origin:   model.OriginDocument,
			Raw:      fileURL,
			MimeType: msg.Document.MimeType,
		}, "📄 解析文件中…", true
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return model.ContentRequest{}, "", false
	}
	if isURL(text) {
		if _, ok := reader.VideoID(text); ok {
			return model.ContentRequest{Origin: model.OriginURL, Raw: text}, "🎥 偵測到影片，切換至字幕讀取模式…", true
		}
		return model.ContentRequest{Origin: model.OriginURL, Raw: text}, "🔍 讀取網頁中…", true
	}
	return model.ContentRequest{Origin: model.OriginText, Raw: text}, "✏️ 撰寫貼文中…", true
}

func isURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	return !strings.ContainsAny(s, " \n\t")
}

func (b *Bot) processContent(ctx context.Context, chatID int64, req model.ContentRequest) {
	extracted, err := b.reader.Read(ctx, req)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("讀取來源失敗：%v", err))
		return
	}

	post, err := b.engine.Rewrite(ctx, extracted.Text, req.Instruction)
	if err != nil {
		b.reply(chatID, rewrite.UserMessage(err))
		return
	}

	b.SendLong(chatID, post)
}

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `歡迎使用 Info Commander！

傳給我網址、PDF/TXT 文件或一段文字，我會改寫成社群貼文。
回覆我產生的貼文並附上修改指示，即可調整內容。

使用 /help 查看完整指令。`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `指令：
/search <關鍵字> [天數] — 雷達任務：熱門影片 + 新聞 + 分析報告
/vault — 列出你存入素材庫的草稿
/vault <id> — 查看單一草稿

直接傳送：
• 網址 — 抓取網頁內容並改寫成貼文
• PDF / TXT 文件 — 解析文件後改寫
• 文字 — 直接改寫
• 回覆貼文 + 修改指示 — 修稿`)
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, args string) {
	if b.videos == nil {
		b.reply(chatID, "此功能未啟用：缺少 Google API 金鑰。")
		return
	}

	keyword, days, err := ParseSearchArgs(args)
	if err != nil {
		b.reply(chatID, "用法：/search <關鍵字> [天數]")
		return
	}

	b.reply(chatID, fmt.Sprintf("📡 雷達任務啟動：%s（近 %d 天）", keyword, days))

	video, err := b.videos.Search(ctx, keyword, days)
	if err != nil {
		b.reply(chatID, fmt.Sprintf("影片搜尋失敗：%v", err))
		return
	}
	if video == nil {
		b.reply(chatID, fmt.Sprintf("近 %d 天內找不到「%s」的相關影片。", days, keyword))
		return
	}

	var news []model.NewsResult
	if b.news != nil {
		news, err = b.news.News(ctx, keyword)
		if err != nil {
			b.log.Warn("news search failed", "keyword", keyword, "error", err)
		}
	}

	res, err := b.engine.Analyze(ctx, *video, news)
	if err != nil {
		b.reply(chatID, rewrite.UserMessage(err))
		return
	}

	b.SendLong(chatID, FormatRadarReport(keyword, *video, res))
}

func (b *Bot) handleVault(ctx context.Context, chatID int64, args string) {
	if args == "" {
		drafts, err := b.store.ListDrafts(ctx, chatID, vaultListLimit)
		if err != nil {
			b.reply(chatID, fmt.Sprintf("讀取素材庫失敗：%v", err))
			return
		}
		b.reply(chatID, FormatVaultList(drafts))
		return
	}

	id, err := ParseIDArg(args)
	if err != nil {
		b.reply(chatID, "用法：/vault [id]")
		return
	}

	draft, err := b.store.GetDraft(ctx, id)
	if err != nil || draft.ChatID != chatID {
		b.reply(chatID, fmt.Sprintf("找不到草稿 #%d。", id))
		return
	}

	if draft.ImageURL != "" {
		b.SendPhoto(chatID, draft.ImageURL, draft.Content)
		return
	}
	b.SendLong(chatID, draft.Content)
}
