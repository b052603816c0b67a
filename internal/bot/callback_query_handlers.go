package bot

import (
	"context"
	"errors"
	"fmt"
	"quickread/internal/domain"
	"quickread/internal/history"
	"quickread/internal/session"
	"strconv"
	"strings"

	"github.com/go-telegram/bot/models"
)

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *models.CallbackQuery) error {
	chatID := callbackChatID(callback)
	if chatID == 0 {
		return b.errorCallbackAnswer(ctx, callback, errors.New("callback has no chat"))
	}

	userID := callback.From.ID
	data := strings.TrimSpace(callback.Data)

	switch data {
	case callbackMenu:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleMenuCommand(ctx, chatID)
		})
	case callbackFormat:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleFormatCommand(ctx, chatID, userID, "")
		})
	case callbackHistory:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleHistoryCommand(ctx, chatID, userID)
		})
	case callbackKeyHelp:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleKeyHelpCommand(ctx, chatID)
		})
	case callbackSave:
		return b.handleSaveQuery(ctx, callback, userID)
	case callbackHistoryClear:
		return b.withEmptyCallbackAnswer(ctx, callback, func() error {
			return b.handleClearCommand(ctx, chatID)
		})
	case callbackHistoryClearConfirm:
		return b.handleClearConfirmQuery(ctx, callback, chatID, userID)
	}

	if raw, ok := strings.CutPrefix(data, callbackFormatPrefix); ok {
		return b.handleFormatQuery(ctx, callback, chatID, userID, raw)
	}

	if raw, ok := strings.CutPrefix(data, callbackHistoryShowPrefix); ok {
		return b.handleHistoryShowQuery(ctx, callback, chatID, userID, raw)
	}

	if raw, ok := strings.CutPrefix(data, callbackHistoryDeletePrefix); ok {
		return b.handleHistoryDeleteQuery(ctx, callback, chatID, userID, raw)
	}

	return b.withEmptyCallbackAnswer(ctx, callback, func() error { return nil })
}

func (b *Bot) handleFormatQuery(
	ctx context.Context,
	callback *models.CallbackQuery,
	chatID int64,
	userID int64,
	raw string,
) error {
	format, err := domain.ParseFormat(raw)
	if err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("parse format: %w", err))
	}

	if err = b.service.SetFormat(ctx, userID, format); err != nil {
		return b.errorCallbackAnswer(ctx, callback, err)
	}

	if err = b.answerCallback(ctx, callback.ID, "✅ Format is updated."); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}

	return b.handleFormatCommand(ctx, chatID, userID, "")
}

func (b *Bot) handleSaveQuery(ctx context.Context, callback *models.CallbackQuery, userID int64) error {
	_, alreadySaved, err := b.service.SaveLast(ctx, userID)

	switch {
	case errors.Is(err, session.ErrNothingToSave):
		return b.answerCallback(ctx, callback.ID, session.StatusMessage(err))
	case err != nil:
		return b.errorCallbackAnswer(ctx, callback, err)
	case alreadySaved:
		return b.answerCallback(ctx, callback.ID, "Already Saved")
	default:
		return b.answerCallback(ctx, callback.ID, "Saved!")
	}
}

func (b *Bot) handleHistoryShowQuery(
	ctx context.Context,
	callback *models.CallbackQuery,
	chatID int64,
	userID int64,
	raw string,
) error {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("parse record ID: %w", err))
	}

	rec, err := b.service.Show(ctx, userID, id)
	if errors.Is(err, history.ErrNotFound) {
		return b.answerCallback(ctx, callback.ID, session.StatusMessage(err))
	}
	if err != nil {
		return b.errorCallbackAnswer(ctx, callback, err)
	}

	return b.withEmptyCallbackAnswer(ctx, callback, func() error {
		return b.sendMessageWithKeyboard(ctx, chatID, renderRecord(rec, b.now()), getRecordKeyboard(rec))
	})
}

func (b *Bot) handleHistoryDeleteQuery(
	ctx context.Context,
	callback *models.CallbackQuery,
	chatID int64,
	userID int64,
	raw string,
) error {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return b.errorCallbackAnswer(ctx, callback, fmt.Errorf("parse record ID: %w", err))
	}

	if err = b.service.Delete(ctx, userID, id); err != nil {
		return b.errorCallbackAnswer(ctx, callback, err)
	}

	if err = b.answerCallback(ctx, callback.ID, "🗑 Summary is deleted."); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}

	return b.handleHistoryCommand(ctx, chatID, userID)
}

func (b *Bot) handleClearConfirmQuery(
	ctx context.Context,
	callback *models.CallbackQuery,
	chatID int64,
	userID int64,
) error {
	if err := b.service.Clear(ctx, userID); err != nil {
		return b.errorCallbackAnswer(ctx, callback, err)
	}

	if err := b.answerCallback(ctx, callback.ID, "🧹 History is cleared."); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}

	return b.handleHistoryCommand(ctx, chatID, userID)
}

func (b *Bot) withEmptyCallbackAnswer(
	ctx context.Context,
	callback *models.CallbackQuery,
	fn func() error,
) error {
	var errs []error

	if err := b.answerCallback(ctx, callback.ID, ""); err != nil {
		errs = append(errs, fmt.Errorf("answer callback query: %w", err))
	}

	if err := fn(); err != nil {
		errs = append(errs, fmt.Errorf("call fn: %w", err))
	}

	return errors.Join(errs...)
}

func (b *Bot) errorCallbackAnswer(
	ctx context.Context,
	callback *models.CallbackQuery,
	err error,
) error {
	if sendErr := b.answerCallback(ctx, callback.ID, "❌ "+session.StatusMessage(err)); sendErr != nil {
		return errors.Join(err, fmt.Errorf("answer callback query: %w", sendErr))
	}
	return err
}
