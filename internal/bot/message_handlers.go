package bot

import (
	"context"
	"errors"
	"fmt"
	"quickread/internal/markdown"
	"quickread/internal/session"
	"slices"
	"strings"
	"unicode"

	"github.com/go-telegram/bot/models"
	"mvdan.cc/xurls/v2"
)

const maxURLsPerMessage = 3

const noURLText = `✖️ Valid links are not found\.

Send me a page link and I will summarize it\.`

//nolint:gochecknoglobals // Compiled once.
var urlPattern = xurls.Strict()

func (b *Bot) handleMessage(ctx context.Context, message *models.Message) error {
	chatID := message.Chat.ID
	userID := message.From.ID

	text := strings.TrimSpace(message.Text)
	if text == "" {
		text = strings.TrimSpace(message.Caption)
	}

	command, args := parseCommand(text)

	switch command {
	case "/start", "/help":
		return b.handleStartCommand(ctx, chatID)
	case "/menu":
		return b.handleMenuCommand(ctx, chatID)
	case "/format":
		return b.handleFormatCommand(ctx, chatID, userID, args)
	case "/key":
		return b.handleKeyCommand(ctx, message, args)
	case "/testkey":
		return b.handleTestKeyCommand(ctx, message, args)
	case "/history":
		return b.handleHistoryCommand(ctx, chatID, userID)
	case "/clear":
		return b.handleClearCommand(ctx, chatID)
	}

	urls := findURLs(text)
	if len(urls) == 0 {
		return b.sendMessageWithKeyboard(ctx, chatID, noURLText, b.returnKeyboard)
	}

	var errs []error
	for _, pageURL := range urls {
		if err := b.withSpinner(ctx, chatID, func() error {
			return b.handleSummarize(ctx, chatID, userID, pageURL)
		}); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (b *Bot) handleSummarize(ctx context.Context, chatID int64, userID int64, pageURL string) error {
	res, err := b.service.Summarize(ctx, userID, pageURL)
	if err != nil {
		b.log.WarnContext(ctx, "Failed to summarize page",
			"error", err,
			"userID", userID,
			"url", pageURL)

		keyboard := b.returnKeyboard
		if errors.Is(err, session.ErrMissingCredential) {
			keyboard = getMenuKeyboard()
		}

		text := "❌ " + markdown.EscapeV2(session.StatusMessage(err)) + "\n" +
			markdown.Italic(pageURL)

		if sendErr := b.sendMessageWithKeyboard(ctx, chatID, text, keyboard); sendErr != nil {
			return fmt.Errorf("send message with keyboard: %w", sendErr)
		}

		return nil
	}

	text := renderRecord(res.Record, b.now())
	if !res.Saved {
		text += "\n\n" + markdown.Italic("⚠️ Failed to save summary. Press Save to retry.")
	}

	if err = b.sendMessageWithKeyboard(ctx, chatID, text, getSummaryKeyboard(res.Saved)); err != nil {
		return fmt.Errorf("send message with keyboard: %w", err)
	}

	return nil
}

// parseCommand splits "/cmd@bot args" into "/cmd" and "args". Text that is
// not a command yields an empty command.
func parseCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	command, args := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		command, args = text[:i], text[i:]
	}

	command, _, _ = strings.Cut(command, "@")

	return strings.ToLower(command), strings.TrimSpace(args)
}

// findURLs returns up to maxURLsPerMessage distinct http(s) URLs in text.
func findURLs(text string) []string {
	var urls []string

	for _, match := range urlPattern.FindAllString(text, -1) {
		lower := strings.ToLower(match)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			continue
		}

		if slices.Contains(urls, match) {
			continue
		}

		urls = append(urls, match)
		if len(urls) == maxURLsPerMessage {
			break
		}
	}

	return urls
}
