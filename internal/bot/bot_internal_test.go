package bot

import (
	"quickread/internal/domain"
	"slices"
	"testing"

	"github.com/go-telegram/bot/models"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text        string
		wantCommand string
		wantArgs    string
	}{
		{"/start", "/start", ""},
		{"/key  AIza-123 ", "/key", "AIza-123"},
		{"/Format@QuickReadBot bullets", "/format", "bullets"},
		{"/key\nAIza-123", "/key", "AIza-123"},
		{"https://example.com", "", "https://example.com"},
	}

	for _, test := range tests {
		command, args := parseCommand(test.text)
		if command != test.wantCommand || args != test.wantArgs {
			t.Fatalf("parseCommand(%q) = %q, %q, want %q, %q",
				test.text, command, args, test.wantCommand, test.wantArgs)
		}
	}
}

func TestFindURLs(t *testing.T) {
	text := "Read https://go.dev/blog/go1.26 and http://example.com/a, " +
		"mail me at mailto:me@example.com or see https://go.dev/blog/go1.26 again " +
		"plus https://a.example https://b.example"

	got := findURLs(text)
	want := []string{"https://go.dev/blog/go1.26", "http://example.com/a", "https://a.example"}

	if !slices.Equal(got, want) {
		t.Fatalf("findURLs() = %v, want %v", got, want)
	}

	if got = findURLs("no links here"); len(got) != 0 {
		t.Fatalf("expected no URLs, got %v", got)
	}
}

func TestUserAllowed(t *testing.T) {
	open := &Bot{}
	if !open.userAllowed(42) {
		t.Fatalf("empty allow list should allow everyone")
	}

	restricted := &Bot{allowedUsers: []int64{1, 2}}
	if !restricted.userAllowed(2) || restricted.userAllowed(3) {
		t.Fatalf("unexpected allow list behavior")
	}
}

func TestCallbackChatID(t *testing.T) {
	accessible := &models.CallbackQuery{
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{ID: 7, Chat: models.Chat{ID: 100}},
		},
	}
	if callbackChatID(accessible) != 100 || callbackMessageID(accessible) != 7 {
		t.Fatalf("unexpected IDs for accessible message")
	}

	inaccessible := &models.CallbackQuery{
		Message: models.MaybeInaccessibleMessage{
			InaccessibleMessage: &models.InaccessibleMessage{MessageID: 8, Chat: models.Chat{ID: 200}},
		},
	}
	if callbackChatID(inaccessible) != 200 || callbackMessageID(inaccessible) != 8 {
		t.Fatalf("unexpected IDs for inaccessible message")
	}

	if callbackChatID(&models.CallbackQuery{}) != 0 {
		t.Fatalf("expected zero chat ID without message")
	}
}

func TestFormatKeyboard(t *testing.T) {
	keyboard := getFormatKeyboard(domain.FormatBullets)

	if len(keyboard[0]) != len(domain.Formats()) {
		t.Fatalf("expected a button per format, got %d", len(keyboard[0]))
	}

	if keyboard[0][1].Text != "✅ Bullets" || keyboard[0][1].CallbackData != "format_bullets" {
		t.Fatalf("unexpected current format button: %+v", keyboard[0][1])
	}

	if keyboard[0][0].Text != "Brief" {
		t.Fatalf("unexpected button: %+v", keyboard[0][0])
	}
}

func TestSummaryKeyboard(t *testing.T) {
	if rows := getSummaryKeyboard(true); len(rows) != 1 {
		t.Fatalf("saved summary should not offer Save, got %+v", rows)
	}

	rows := getSummaryKeyboard(false)
	if len(rows) != 2 || rows[0][0].CallbackData != callbackSave {
		t.Fatalf("unsaved summary should offer Save, got %+v", rows)
	}
}
