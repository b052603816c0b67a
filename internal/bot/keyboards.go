package bot

import (
	"fmt"
	"quickread/internal/domain"
	"strings"

	"github.com/go-telegram/bot/models"
)

const (
	callbackMenu                = "menu"
	callbackFormat              = "menu_format"
	callbackHistory             = "menu_history"
	callbackKeyHelp             = "menu_key"
	callbackSave                = "save"
	callbackHistoryClear        = "history_clear"
	callbackHistoryClearConfirm = "history_clear_confirm"
	callbackFormatPrefix        = "format_"
	callbackHistoryShowPrefix   = "history_show_"
	callbackHistoryDeletePrefix = "history_delete_"
)

func button(text string, data string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: text, CallbackData: data}
}

func getReturnKeyboard() [][]models.InlineKeyboardButton {
	return [][]models.InlineKeyboardButton{
		{button("⬅️ Return to menu", callbackMenu)},
	}
}

func getMenuKeyboard() [][]models.InlineKeyboardButton {
	return [][]models.InlineKeyboardButton{
		{
			button("📚 History", callbackHistory),
			button("📝 Format", callbackFormat),
		},
		{
			button("🔑 API key", callbackKeyHelp),
		},
	}
}

// getFormatKeyboard marks the current format with a check.
func getFormatKeyboard(current domain.Format) [][]models.InlineKeyboardButton {
	row := make([]models.InlineKeyboardButton, 0, len(domain.Formats()))

	for _, format := range domain.Formats() {
		label := formatLabel(format)
		if format == current {
			label = "✅ " + label
		}

		row = append(row, button(label, callbackFormatPrefix+string(format)))
	}

	return [][]models.InlineKeyboardButton{
		row,
		{button("⬅️ Return to menu", callbackMenu)},
	}
}

func getSummaryKeyboard(saved bool) [][]models.InlineKeyboardButton {
	var keyboard [][]models.InlineKeyboardButton

	if !saved {
		keyboard = append(keyboard, []models.InlineKeyboardButton{button("💾 Save", callbackSave)})
	}

	return append(keyboard, []models.InlineKeyboardButton{
		button("📚 History", callbackHistory),
		button("⬅️ Return to menu", callbackMenu),
	})
}

func getHistoryKeyboard(records []domain.SummaryRecord) [][]models.InlineKeyboardButton {
	keyboard := make([][]models.InlineKeyboardButton, 0, len(records)+2)

	for i, rec := range records {
		keyboard = append(keyboard, []models.InlineKeyboardButton{
			button(fmt.Sprintf("📖 %d", i+1), fmt.Sprintf("%s%d", callbackHistoryShowPrefix, rec.ID)),
			button(fmt.Sprintf("🗑 %d", i+1), fmt.Sprintf("%s%d", callbackHistoryDeletePrefix, rec.ID)),
		})
	}

	if len(records) > 0 {
		keyboard = append(keyboard, []models.InlineKeyboardButton{button("🧹 Clear history", callbackHistoryClear)})
	}

	return append(keyboard, []models.InlineKeyboardButton{button("⬅️ Return to menu", callbackMenu)})
}

func getRecordKeyboard(rec domain.SummaryRecord) [][]models.InlineKeyboardButton {
	return [][]models.InlineKeyboardButton{
		{
			button("🗑 Delete", fmt.Sprintf("%s%d", callbackHistoryDeletePrefix, rec.ID)),
			button("📚 History", callbackHistory),
		},
		{button("⬅️ Return to menu", callbackMenu)},
	}
}

func getClearConfirmKeyboard() [][]models.InlineKeyboardButton {
	return [][]models.InlineKeyboardButton{
		{
			button("✅ Yes, clear", callbackHistoryClearConfirm),
			button("✖️ Cancel", callbackHistory),
		},
	}
}

func formatLabel(format domain.Format) string {
	s := string(format)
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
