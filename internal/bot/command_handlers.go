package bot

import (
	"context"
	"errors"
	"fmt"
	"quickread/internal/domain"
	"quickread/internal/markdown"
	"quickread/internal/session"
	"strings"

	"github.com/go-telegram/bot/models"
)

const welcomeText = `🤖 *Welcome to QuickRead\!*

I summarize web pages with AI\. I can help you:

– Summarize any page by sending me its link \(feed links give the newest entry\)
– Pick the summary format with /format: brief, bullets or detailed
– Keep your last 20 summaries with /history and clear them with /clear
– Store your API key with /key and check it with /testkey`

const keyHelpText = `🔑 *API key*

QuickRead uses your own API key\. Get a free Gemini key at [Google AI Studio](https://aistudio.google.com/app/apikey), then send:

` + "`/key YOUR_API_KEY`" + `

The message with the key is deleted right after it is saved\.
Use /testkey to check the stored key, or ` + "`/key delete`" + ` to remove it\.`

const formatText = `📝 *Summary format*

Current format is %s\.

– *Brief*: 2\-3 sentences
– *Bullets*: 5\-8 key points
– *Detailed*: 3\-4 paragraphs`

func (b *Bot) handleStartCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, welcomeText, b.menuKeyboard)
}

func (b *Bot) handleMenuCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, "❔ *Choose an option:*", b.menuKeyboard)
}

func (b *Bot) handleKeyHelpCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(ctx, chatID, keyHelpText, b.returnKeyboard)
}

func (b *Bot) handleFormatCommand(ctx context.Context, chatID int64, userID int64, args string) error {
	if args != "" {
		format, err := domain.ParseFormat(args)
		if err != nil {
			return b.sendStatus(ctx, chatID, err, b.returnKeyboard)
		}

		if err = b.service.SetFormat(ctx, userID, format); err != nil {
			return errors.Join(err, b.sendStatus(ctx, chatID, err, b.returnKeyboard))
		}
	}

	format, err := b.service.Format(ctx, userID)
	if err != nil {
		return errors.Join(err, b.sendStatus(ctx, chatID, err, b.returnKeyboard))
	}

	return b.sendMessageWithKeyboard(
		ctx,
		chatID,
		fmt.Sprintf(formatText, markdown.Bold(formatLabel(format))),
		getFormatKeyboard(format),
	)
}

// handleKeyCommand stores the key and deletes the message that carried it.
func (b *Bot) handleKeyCommand(ctx context.Context, message *models.Message, args string) error {
	chatID := message.Chat.ID
	userID := message.From.ID

	if args == "" {
		return b.handleKeyHelpCommand(ctx, chatID)
	}

	var errs []error

	if err := b.deleteMessage(ctx, chatID, message.ID); err != nil {
		errs = append(errs, fmt.Errorf("delete key message: %w", err))
	}

	if strings.EqualFold(args, "delete") {
		if err := b.service.DeleteCredential(ctx, userID); err != nil {
			errs = append(errs, err, b.sendStatus(ctx, chatID, err, b.returnKeyboard))
			return errors.Join(errs...)
		}

		if err := b.sendMessageWithKeyboard(ctx, chatID, "✅ API key is removed\\.", b.returnKeyboard); err != nil {
			errs = append(errs, fmt.Errorf("send message with keyboard: %w", err))
		}

		return errors.Join(errs...)
	}

	if err := b.service.SetCredential(ctx, userID, args); err != nil {
		errs = append(errs, err, b.sendStatus(ctx, chatID, err, b.returnKeyboard))
		return errors.Join(errs...)
	}

	if err := b.sendMessageWithKeyboard(
		ctx,
		chatID,
		"✅ API key saved successfully\\! Use /testkey to check it\\.",
		b.returnKeyboard,
	); err != nil {
		errs = append(errs, fmt.Errorf("send message with keyboard: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) handleTestKeyCommand(ctx context.Context, message *models.Message, args string) error {
	chatID := message.Chat.ID

	var errs []error

	if args != "" {
		if err := b.deleteMessage(ctx, chatID, message.ID); err != nil {
			errs = append(errs, fmt.Errorf("delete key message: %w", err))
		}
	}

	err := b.withSpinner(ctx, chatID, func() error {
		check, err := b.service.TestCredential(ctx, message.From.ID, args)
		if err != nil {
			return b.sendStatus(ctx, chatID, err, b.returnKeyboard)
		}

		text := "✓ API key is valid and working\\!"
		if !check.Valid {
			text = "✗ API key test failed: " + markdown.EscapeV2(check.ErrorMessage)
			if check.ErrorCode != "" {
				text += " " + markdown.EscapeV2("("+check.ErrorCode+")")
			}
		}

		return b.sendMessageWithKeyboard(ctx, chatID, text, b.returnKeyboard)
	})
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (b *Bot) handleHistoryCommand(ctx context.Context, chatID int64, userID int64) error {
	records, err := b.service.History(ctx, userID)
	if err != nil {
		return errors.Join(err, b.sendStatus(ctx, chatID, err, b.returnKeyboard))
	}

	if len(records) == 0 {
		return b.sendMessageWithKeyboard(
			ctx,
			chatID,
			"✖️ History is empty\\. Send me a link to summarize\\.",
			b.returnKeyboard,
		)
	}

	return b.sendMessageWithKeyboard(ctx, chatID, renderHistory(records, b.now()), getHistoryKeyboard(records))
}

func (b *Bot) handleClearCommand(ctx context.Context, chatID int64) error {
	return b.sendMessageWithKeyboard(
		ctx,
		chatID,
		"🧹 *Clear all saved summaries?*",
		getClearConfirmKeyboard(),
	)
}

// sendStatus reports err to the user as a one-line message.
func (b *Bot) sendStatus(
	ctx context.Context,
	chatID int64,
	err error,
	keyboard [][]models.InlineKeyboardButton,
) error {
	text := "❌ " + markdown.EscapeV2(session.StatusMessage(err))

	if sendErr := b.sendMessageWithKeyboard(ctx, chatID, text, keyboard); sendErr != nil {
		return fmt.Errorf("send message with keyboard: %w", sendErr)
	}

	return nil
}
