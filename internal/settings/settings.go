package settings

import (
	"context"
	"errors"
	"quickread/internal/domain"
	"quickread/internal/storage"
	"strings"
)

var ErrEmptyCredential = errors.New("credential is empty")

// Settings reads and writes per-user preferences.
type Settings struct {
	kv storage.KV
}

func New(kv storage.KV) *Settings {
	return &Settings{kv: kv}
}

// Credential returns the stored API key, or "" if none is set.
func (s *Settings) Credential(ctx context.Context, userID int64) (string, error) {
	raw, ok, err := s.kv.Get(ctx, storage.UserKey(userID, storage.KeyCredential))
	if err != nil || !ok {
		return "", err
	}

	return strings.TrimSpace(string(raw)), nil
}

func (s *Settings) SetCredential(ctx context.Context, userID int64, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return ErrEmptyCredential
	}

	return s.kv.Set(ctx, storage.UserKey(userID, storage.KeyCredential), []byte(credential))
}

func (s *Settings) DeleteCredential(ctx context.Context, userID int64) error {
	return s.kv.Delete(ctx, storage.UserKey(userID, storage.KeyCredential))
}

// Format returns the preferred format. Missing and unknown values read as
// domain.DefaultFormat.
func (s *Settings) Format(ctx context.Context, userID int64) (domain.Format, error) {
	raw, ok, err := s.kv.Get(ctx, storage.UserKey(userID, storage.KeyFormat))
	if err != nil {
		return domain.DefaultFormat, err
	}
	if !ok {
		return domain.DefaultFormat, nil
	}

	format, err := domain.ParseFormat(string(raw))
	if err != nil {
		return domain.DefaultFormat, nil
	}

	return format, nil
}

func (s *Settings) SetFormat(ctx context.Context, userID int64, format domain.Format) error {
	if !format.Valid() {
		return domain.ErrUnknownFormat
	}

	return s.kv.Set(ctx, storage.UserKey(userID, storage.KeyFormat), []byte(format))
}
