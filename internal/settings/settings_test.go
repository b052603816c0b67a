package settings_test

import (
	"context"
	"errors"
	"quickread/internal/domain"
	"quickread/internal/settings"
	"quickread/internal/storage"
	"testing"
)

func TestCredential(t *testing.T) {
	ctx := context.Background()
	s := settings.New(storage.NewMemory())

	got, err := s.Credential(ctx, 1)
	if err != nil || got != "" {
		t.Fatalf("expected no credential, got %q, %v", got, err)
	}

	if err = s.SetCredential(ctx, 1, "   "); !errors.Is(err, settings.ErrEmptyCredential) {
		t.Fatalf("expected ErrEmptyCredential, got %v", err)
	}

	if err = s.SetCredential(ctx, 1, "  AIza-key \n"); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err = s.Credential(ctx, 1)
	if err != nil || got != "AIza-key" {
		t.Fatalf("expected trimmed credential, got %q, %v", got, err)
	}

	if err = s.DeleteCredential(ctx, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	got, _ = s.Credential(ctx, 1)
	if got != "" {
		t.Fatalf("expected credential to be deleted, got %q", got)
	}
}

func TestFormat(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	s := settings.New(kv)

	got, err := s.Format(ctx, 1)
	if err != nil || got != domain.DefaultFormat {
		t.Fatalf("expected default format, got %q, %v", got, err)
	}

	if err = s.SetFormat(ctx, 1, domain.FormatDetailed); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, _ = s.Format(ctx, 1)
	if got != domain.FormatDetailed {
		t.Fatalf("expected detailed, got %q", got)
	}

	if err = s.SetFormat(ctx, 1, domain.Format("essay")); !errors.Is(err, domain.ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}

	if err = kv.Set(ctx, storage.UserKey(1, storage.KeyFormat), []byte("essay")); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	got, err = s.Format(ctx, 1)
	if err != nil || got != domain.DefaultFormat {
		t.Fatalf("expected unknown stored value to read as default, got %q, %v", got, err)
	}
}
