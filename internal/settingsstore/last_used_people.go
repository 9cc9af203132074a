package settingsstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mrlokans/grocery-share/internal/entities"
)

// GetLastUsedPeople returns the participant ids of the most recently created
// purchase. A missing or unreadable value yields an empty list.
func (s *SettingsStore) GetLastUsedPeople(ctx context.Context) ([]uint, error) {
	raw, ok, err := s.Get(ctx, entities.SettingKeyLastUsedPeople)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []uint{}, nil
	}

	var ids []uint
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		slog.Warn("ignoring malformed setting", "key", entities.SettingKeyLastUsedPeople, "error", err)
		return []uint{}, nil
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

// SetLastUsedPeople remembers ids for preselection in the next purchase.
func (s *SettingsStore) SetLastUsedPeople(ctx context.Context, ids []uint) error {
	if ids == nil {
		ids = []uint{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode last used people: %w", err)
	}
	return s.Set(ctx, entities.SettingKeyLastUsedPeople, string(raw))
}
