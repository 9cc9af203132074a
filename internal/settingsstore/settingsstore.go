package settingsstore

import (
	"context"

	"github.com/mrlokans/grocery-share/internal/entities"
)

// SettingsRepository is the key/value persistence the store builds on.
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (*entities.Setting, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// Priority: database > configured default > built-in default
type SettingsStore struct {
	repo         SettingsRepository
	defaultTheme Theme
}

// New creates a store. An unknown defaultTheme falls back to ThemeLight.
func New(repo SettingsRepository, defaultTheme string) *SettingsStore {
	theme, ok := ParseTheme(defaultTheme)
	if !ok {
		theme = ThemeLight
	}
	return &SettingsStore{repo: repo, defaultTheme: theme}
}

// Get returns the raw value stored under key and whether it was set.
func (s *SettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	setting, err := s.repo.GetSetting(ctx, key)
	if err != nil {
		return "", false, err
	}
	if setting == nil {
		return "", false, nil
	}
	return setting.Value, true, nil
}

// Set stores a raw value under key.
func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// Clear removes key. Clearing an unset key is not an error.
func (s *SettingsStore) Clear(ctx context.Context, key string) error {
	return s.repo.DeleteSetting(ctx, key)
}
