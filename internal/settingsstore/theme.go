package settingsstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrlokans/grocery-share/internal/database"
	"github.com/mrlokans/grocery-share/internal/entities"
)

var ErrUnknownTheme = fmt.Errorf("%w: theme must be %q or %q", database.ErrInvalidInput, ThemeLight, ThemeDark)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts the two stored tokens, ignoring case and surrounding space.
func ParseTheme(raw string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(raw))) {
	case ThemeLight:
		return ThemeLight, true
	case ThemeDark:
		return ThemeDark, true
	}
	return "", false
}

// ThemeInfo includes where the effective theme came from.
type ThemeInfo struct {
	Theme  Theme  `json:"theme"`
	Source string `json:"source"` // "database" or "default"
}

// GetTheme returns the stored theme. Missing or unrecognised values yield the default.
func (s *SettingsStore) GetTheme(ctx context.Context) (Theme, error) {
	info, err := s.GetThemeInfo(ctx)
	return info.Theme, err
}

func (s *SettingsStore) GetThemeInfo(ctx context.Context) (ThemeInfo, error) {
	raw, ok, err := s.Get(ctx, entities.SettingKeyTheme)
	if err != nil {
		return ThemeInfo{Theme: s.defaultTheme, Source: "default"}, err
	}
	if ok {
		if theme, valid := ParseTheme(raw); valid {
			return ThemeInfo{Theme: theme, Source: "database"}, nil
		}
	}
	return ThemeInfo{Theme: s.defaultTheme, Source: "default"}, nil
}

// SetTheme persists theme, rejecting anything but light or dark.
func (s *SettingsStore) SetTheme(ctx context.Context, raw string) (Theme, error) {
	theme, ok := ParseTheme(raw)
	if !ok {
		return "", ErrUnknownTheme
	}
	return theme, s.Set(ctx, entities.SettingKeyTheme, string(theme))
}

// ToggleTheme switches between light and dark and returns the new theme.
func (s *SettingsStore) ToggleTheme(ctx context.Context) (Theme, error) {
	current, err := s.GetTheme(ctx)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	return s.SetTheme(ctx, string(next))
}
