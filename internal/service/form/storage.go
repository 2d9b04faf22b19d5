package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"transmittal/internal/domain"
	"transmittal/internal/domain/models"
	"transmittal/internal/domain/repositories"
)

// Names of the local durable entries.
const (
	SettingsKey = "smart_transmittal_settings"
	HistoryKey  = "smart_transmittal_history"
	APIKeyKey   = "gemini_api_key"
)

// LocalStorage reads and writes the three local entries on top of a key/value store.
type LocalStorage struct {
	kv repositories.KeyValueStore
}

func NewLocalStorage(kv repositories.KeyValueStore) *LocalStorage {
	return &LocalStorage{kv: kv}
}

// Settings returns nil, nil when nothing was saved yet.
func (s *LocalStorage) Settings(ctx context.Context) (*models.SenderSettings, error) {
	raw, err := s.kv.Get(ctx, SettingsKey)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var settings models.SenderSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("decode %s: %w", SettingsKey, err)
	}
	return &settings, nil
}

func (s *LocalStorage) SaveSettings(ctx context.Context, settings models.SenderSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode %s: %w", SettingsKey, err)
	}
	return s.kv.Put(ctx, SettingsKey, string(data))
}

// History returns the local log, newest first. Never nil.
func (s *LocalStorage) History(ctx context.Context) ([]models.TransmittalLogEntry, error) {
	raw, err := s.kv.Get(ctx, HistoryKey)
	if errors.Is(err, domain.ErrNotFound) {
		return []models.TransmittalLogEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	entries := []models.TransmittalLogEntry{}
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", HistoryKey, err)
	}
	if entries == nil {
		entries = []models.TransmittalLogEntry{}
	}
	return entries, nil
}

func (s *LocalStorage) SaveHistory(ctx context.Context, entries []models.TransmittalLogEntry) error {
	if entries == nil {
		entries = []models.TransmittalLogEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode %s: %w", HistoryKey, err)
	}
	return s.kv.Put(ctx, HistoryKey, string(data))
}

// APIKey returns "" when no key is stored.
func (s *LocalStorage) APIKey(ctx context.Context) (string, error) {
	key, err := s.kv.Get(ctx, APIKeyKey)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	return key, err
}

// SetAPIKey stores the bare key. An empty key removes it.
func (s *LocalStorage) SetAPIKey(ctx context.Context, key string) error {
	if key == "" {
		return s.kv.Delete(ctx, APIKeyKey)
	}
	return s.kv.Put(ctx, APIKeyKey, key)
}

// Forget removes the given entries; missing ones are ignored.
func (s *LocalStorage) Forget(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if err := s.kv.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}
