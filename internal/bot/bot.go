package bot

import (
	"context"
	"fmt"
	"log/slog"
	"quickread/internal/ratelimiter"
	"quickread/internal/session"
	"slices"
	"strings"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Covers the page fetch and one LLM call.
const updateProcessingTimeout = 2 * time.Minute

type Bot struct {
	api            *tgbot.Bot
	rateLimiter    *ratelimiter.RateLimiter
	service        *session.Service
	allowedUsers   []int64
	returnKeyboard [][]models.InlineKeyboardButton
	menuKeyboard   [][]models.InlineKeyboardButton
	log            *slog.Logger
	now            func() time.Time

	wg sync.WaitGroup
}

func New(
	token string,
	service *session.Service,
	allowedUsers []int64,
	log *slog.Logger,
) (*Bot, error) {
	b := &Bot{
		rateLimiter:    ratelimiter.New(log),
		service:        service,
		allowedUsers:   allowedUsers,
		returnKeyboard: getReturnKeyboard(),
		menuKeyboard:   getMenuKeyboard(),
		log:            log,
		now:            time.Now,
	}

	api, err := tgbot.New(strings.TrimSpace(token), tgbot.WithDefaultHandler(b.defaultHandler))
	if err != nil {
		b.rateLimiter.Stop()
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	b.api = api

	return b, nil
}

// Start polls for updates until ctx is done, then waits for in-flight
// handlers.
func (b *Bot) Start(ctx context.Context) {
	b.log.InfoContext(ctx, "Bot is started")

	b.api.Start(ctx)

	b.wg.Wait()

	b.log.InfoContext(ctx, "Bot context is done",
		"error", ctx.Err())
}

func (b *Bot) Stop() {
	if b.rateLimiter != nil {
		b.rateLimiter.Stop()
	}
}

// defaultHandler hands every update to its own goroutine so one user's
// summarization never blocks another user.
func (b *Bot) defaultHandler(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
	b.wg.Go(func() {
		b.handleUpdate(ctx, update)
	})
}

func (b *Bot) handleUpdate(ctx context.Context, update *models.Update) {
	updateCtx, cancel := context.WithTimeout(ctx, updateProcessingTimeout)
	defer cancel()

	switch {
	case update.Message != nil && update.Message.From != nil:
		chatID, chatType := chatContext(update.Message.Chat)

		userID := update.Message.From.ID
		if !b.userAllowed(userID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", userID,
				"chatID", chatID,
				"username", update.Message.From.Username,
				"chatType", chatType)

			return
		}

		if err := b.handleMessage(updateCtx, update.Message); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle message",
				"error", err,
				"chatID", chatID,
				"userID", userID,
				"chatType", chatType,
				"messageID", update.Message.ID)
		}

	case update.CallbackQuery != nil:
		callback := update.CallbackQuery
		chatID := callbackChatID(callback)

		if !b.userAllowed(callback.From.ID) {
			b.log.DebugContext(updateCtx, "User is not allowed",
				"userID", callback.From.ID,
				"chatID", chatID,
				"username", callback.From.Username,
				"data", callback.Data)

			return
		}

		if err := b.handleCallbackQuery(updateCtx, callback); err != nil {
			b.log.ErrorContext(updateCtx, "Failed to handle callback query",
				"error", err,
				"chatID", chatID,
				"userID", callback.From.ID,
				"data", callback.Data,
				"messageID", callbackMessageID(callback))
		}
	}
}

func (b *Bot) userAllowed(userID int64) bool {
	return len(b.allowedUsers) == 0 || slices.Contains(b.allowedUsers, userID)
}

func chatContext(chat models.Chat) (int64, string) {
	return chat.ID, string(chat.Type)
}

func callbackChatID(cb *models.CallbackQuery) int64 {
	switch {
	case cb == nil:
		return 0
	case cb.Message.Message != nil:
		return cb.Message.Message.Chat.ID
	case cb.Message.InaccessibleMessage != nil:
		return cb.Message.InaccessibleMessage.Chat.ID
	default:
		return 0
	}
}

func callbackMessageID(cb *models.CallbackQuery) int {
	switch {
	case cb == nil:
		return 0
	case cb.Message.Message != nil:
		return cb.Message.Message.ID
	case cb.Message.InaccessibleMessage != nil:
		return cb.Message.InaccessibleMessage.MessageID
	default:
		return 0
	}
}
