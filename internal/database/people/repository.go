// Package people provides database operations for the people who share purchases.
//
// # Usage
//
//	repo := people.NewRepository(mgr)
//	id, err := repo.Insert(ctx, "Ana")
package people

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/grocery-share/internal/database"
	"github.com/mrlokans/grocery-share/internal/entities"
)

// Repository handles all people database operations.
type Repository struct {
	mgr *database.Manager
}

// NewRepository creates a new people repository.
func NewRepository(mgr *database.Manager) *Repository {
	return &Repository{mgr: mgr}
}

// List returns everyone ordered by name.
func (r *Repository) List(ctx context.Context) ([]entities.Person, error) {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return nil, err
	}
	people := []entities.Person{}
	err = db.Order("name ASC").Order("id ASC").Find(&people).Error
	return people, err
}

// GetByID returns nil when no person has the given id.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Person, error) {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return nil, err
	}
	var person entities.Person
	err = db.Take(&person, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &person, nil
}

// Insert creates a person and returns the new id.
func (r *Repository) Insert(ctx context.Context, name string) (uint, error) {
	name, err := validName(name)
	if err != nil {
		return 0, err
	}
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return 0, err
	}
	person := entities.Person{Name: name}
	if err := db.Create(&person).Error; err != nil {
		return 0, database.Translate(err)
	}
	return person.ID, nil
}

// Update renames a person. Unknown ids are ignored.
func (r *Repository) Update(ctx context.Context, id uint, name string) error {
	name, err := validName(name)
	if err != nil {
		return err
	}
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}
	err = db.Model(&entities.Person{}).Where("id = ?", id).Update("name", name).Error
	return database.Translate(err)
}

// Delete removes a person. Their participations are removed with them and
// line items assigned to them keep existing with no person.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}
	return database.Translate(db.Delete(&entities.Person{}, id).Error)
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", database.Invalid("person name must not be empty")
	}
	return name, nil
}
