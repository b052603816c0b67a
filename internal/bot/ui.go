package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const sendSpinnerInterval = 4 * time.Second

// sendMessageWithKeyboard sends MarkdownV2 text, split to fit Telegram's
// limit. The keyboard is attached to the last part only.
func (b *Bot) sendMessageWithKeyboard(
	ctx context.Context,
	chatID int64,
	text string,
	keyboard [][]models.InlineKeyboardButton,
) error {
	normalizedText := strings.ToValidUTF8(text, "?")
	if normalizedText != text {
		b.log.WarnContext(ctx, "Message text had invalid UTF-8 and was normalized",
			"chatID", chatID,
			"originalLen", len(text),
			"normalizedLen", len(normalizedText))
	}

	chunks := splitMessage(normalizedText, telegramMessageMaxLength)

	for i, chunk := range chunks {
		params := &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   chunk,
			// See https://core.telegram.org/bots/api#markdownv2-style.
			ParseMode:          models.ParseModeMarkdown,
			LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: tgbot.True()},
		}

		if i == len(chunks)-1 && len(keyboard) > 0 {
			params.ReplyMarkup = &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
		}

		if err := b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
			_, err := b.api.SendMessage(ctx, params)
			return err
		}); err != nil {
			return fmt.Errorf("send message part %d/%d: %w", i+1, len(chunks), err)
		}
	}

	return nil
}

func (b *Bot) deleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return b.rateLimiter.Do(ctx, chatID, func(ctx context.Context) error {
		_, err := b.api.DeleteMessage(ctx, &tgbot.DeleteMessageParams{
			ChatID:    chatID,
			MessageID: messageID,
		})
		return err
	})
}

func (b *Bot) answerCallback(ctx context.Context, callbackID string, text string) error {
	_, err := b.api.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	})
	return err
}

// sendTyping does not go through the rate limiter.
func (b *Bot) sendTyping(ctx context.Context, chatID int64) {
	_, err := b.api.SendChatAction(ctx, &tgbot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionTyping,
	})
	if err != nil && ctx.Err() == nil {
		b.log.ErrorContext(ctx, "Failed to send chat action",
			"error", err,
			"chatID", chatID)
	}
}

func (b *Bot) withSpinner(ctx context.Context, chatID int64, fn func() error) error {
	spinnerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		b.sendTyping(spinnerCtx, chatID)

		t := time.NewTicker(sendSpinnerInterval)
		defer t.Stop()

		for {
			select {
			case <-spinnerCtx.Done():
				return
			case <-t.C:
				b.sendTyping(spinnerCtx, chatID)
			}
		}
	}()

	return fn()
}
