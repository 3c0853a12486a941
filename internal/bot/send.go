package bot

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	// maxMessageRunes stays under Telegram's 4096-character message limit.
	maxMessageRunes = 4000
	chunkDelay      = 500 * time.Millisecond
)

// SplitMessage splits text into chunks of at most limit runes. The
// concatenation of the chunks is the input text.
func SplitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	var chunks []string
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// SendLong delivers text of any length as sequential chunks with a short
// delay between them.
func (b *Bot) SendLong(chatID int64, text string) {
	for i, chunk := range SplitMessage(text, maxMessageRunes) {
		if i > 0 {
			time.Sleep(b.chunkDelay)
		}
		b.sendChunk(chatID, chunk)
	}
}

// sendChunk tries Markdown first. Generated text is not guaranteed to be
// well-formed Markdown, so a rejection gets one plain-text retry; a chunk
// failing both ways is logged and dropped.
func (b *Bot) sendChunk(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true

	_, err := b.api.Send(msg)
	if err == nil {
		return
	}
	b.log.Debug("markdown send rejected, retrying plain", "chat_id", chatID, "error", err)

	msg.ParseMode = ""
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("chunk dropped", "chat_id", chatID, "error", err)
	}
}

// SendPhoto sends an image by URL with a caption, falling back to a text
// message when Telegram rejects the photo.
func (b *Bot) SendPhoto(chatID int64, imageURL, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(imageURL))
	photo.Caption = caption

	if _, err := b.api.Send(photo); err != nil {
		b.log.Debug("send photo failed, falling back to text", "chat_id", chatID, "error", err)
		b.SendLong(chatID, caption)
	}
}
