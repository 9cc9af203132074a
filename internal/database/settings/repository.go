// Package settings provides database operations for application settings.
//
// # Usage
//
//	repo := settings.NewRepository(mgr)
//	setting, err := repo.GetSetting(ctx, "theme")
package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/grocery-share/internal/database"
	"github.com/mrlokans/grocery-share/internal/entities"
)

// Repository handles all settings database operations.
type Repository struct {
	mgr *database.Manager
}

// NewRepository creates a new settings repository.
func NewRepository(mgr *database.Manager) *Repository {
	return &Repository{mgr: mgr}
}

// GetSetting retrieves a setting by key. Returns nil when the key is unset.
func (r *Repository) GetSetting(ctx context.Context, key string) (*entities.Setting, error) {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return nil, err
	}
	var setting entities.Setting
	err = db.Where("key = ?", key).Take(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// SetSetting creates or replaces a setting.
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	if key == "" {
		return database.Invalid("setting key must not be empty")
	}
	if value == "" {
		return database.Invalid("setting %q needs a value", key)
	}
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&entities.Setting{Key: key, Value: value}).Error
	return database.Translate(err)
}

// DeleteSetting removes a setting by key.
func (r *Repository) DeleteSetting(ctx context.Context, key string) error {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}
	return db.Where("key = ?", key).Delete(&entities.Setting{}).Error
}
