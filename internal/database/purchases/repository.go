// Package purchases provides database operations for purchases, their
// participants and their line items.
//
// # Usage
//
//	repo := purchases.NewRepository(mgr)
//	id, err := repo.Create(ctx, "Farmers Market", []uint{ana, bruno})
//	items, err := repo.ListLineItems(ctx, id)
package purchases

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/grocery-share/internal/database"
	"github.com/mrlokans/grocery-share/internal/entities"
)

// DefaultRecentLimit caps RecentEstablishments when no limit is given.
const DefaultRecentLimit = 10

// Repository handles all purchase database operations.
type Repository struct {
	mgr *database.Manager
	now func() time.Time
}

// NewRepository creates a new purchases repository.
func NewRepository(mgr *database.Manager) *Repository {
	return &Repository{mgr: mgr, now: time.Now}
}

// Create inserts an open purchase stamped with the current time together
// with its participants. Both steps commit or roll back together.
func (r *Repository) Create(ctx context.Context, establishment string, participantIDs []uint) (uint, error) {
	establishment, err := validEstablishment(establishment)
	if err != nil {
		return 0, err
	}
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return 0, err
	}

	purchase := entities.Purchase{
		Establishment: establishment,
		IsCompleted:   false,
		CreatedAt:     entities.NewTimestamp(r.now()),
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}
		links := participantRows(purchase.ID, participantIDs)
		if len(links) == 0 {
			return nil
		}
		return tx.Create(&links).Error
	})
	if err != nil {
		return 0, database.Translate(err)
	}
	return purchase.ID, nil
}

// GetAll returns every purchase, newest first.
func (r *Repository) GetAll(ctx context.Context) ([]entities.PurchaseWithParticipants, error) {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return nil, err
	}

	var rows []entities.Purchase
	if err := db.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	for _, p := range rows {
		ids = append(ids, p.ID)
	}
	participants, err := r.participantsFor(db, ids)
	if err != nil {
		return nil, err
	}

	result := make([]entities.PurchaseWithParticipants, 0, len(rows))
	for _, p := range rows {
		result = append(result, withParticipants(p, participants[p.ID]))
	}
	return result, nil
}

// GetByID returns nil when no purchase has the given id.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.PurchaseWithParticipants, error) {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return nil, err
	}

	var purchase entities.Purchase
	err = db.Take(&purchase, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	participants, err := r.participantsFor(db, []uint{id})
	if err != nil {
		return nil, err
	}
	result := withParticipants(purchase, participants[id])
	return &result, nil
}

// Complete marks a purchase as completed.
func (r *Repository) Complete(ctx context.Context, id uint) error {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}
	err = db.Model(&entities.Purchase{}).Where("id = ?", id).Update("is_completed", true).Error
	return database.Translate(err)
}

// UpdateEstablishment renames where a purchase took place.
func (r *Repository) UpdateEstablishment(ctx context.Context, id uint, establishment string) error {
	establishment, err := validEstablishment(establishment)
	if err != nil {
		return err
	}
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}
	err = db.Model(&entities.Purchase{}).Where("id = ?", id).Update("establishment", establishment).Error
	return database.Translate(err)
}

// Delete removes a purchase with its participants and line items.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}
	return database.Translate(db.Delete(&entities.Purchase{}, id).Error)
}

// AddParticipant adds a person to a purchase. Adding an existing participant is a no-op.
func (r *Repository) AddParticipant(ctx context.Context, purchaseID, personID uint) error {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}
	err = db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entities.PurchaseParticipant{PurchaseID: purchaseID, PersonID: personID}).Error
	return database.Translate(err)
}

// RemoveParticipant drops a person from a purchase. Items assigned to them
// stay assigned and are reported as unallocated by the split calculation.
func (r *Repository) RemoveParticipant(ctx context.Context, purchaseID, personID uint) error {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}
	err = db.Where("purchase_id = ? AND person_id = ?", purchaseID, personID).
		Delete(&entities.PurchaseParticipant{}).Error
	return database.Translate(err)
}

// RecentEstablishments returns distinct establishment names, most recently
// used first.
func (r *Repository) RecentEstablishments(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	names := []string{}
	err := r.mgr.Query(ctx, &names, `
		SELECT establishment
		FROM purchases
		GROUP BY establishment
		ORDER BY MAX(created_at) DESC, MAX(id) DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *Repository) participantsFor(db *gorm.DB, purchaseIDs []uint) (map[uint][]uint, error) {
	result := make(map[uint][]uint, len(purchaseIDs))
	if len(purchaseIDs) == 0 {
		return result, nil
	}
	var links []entities.PurchaseParticipant
	err := db.Where("purchase_id IN ?", purchaseIDs).
		Order("purchase_id ASC").
		Order("person_id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		result[l.PurchaseID] = append(result[l.PurchaseID], l.PersonID)
	}
	return result, nil
}

func withParticipants(p entities.Purchase, ids []uint) entities.PurchaseWithParticipants {
	if ids == nil {
		ids = []uint{}
	}
	return entities.PurchaseWithParticipants{Purchase: p, ParticipantIDs: ids}
}

// participantRows builds join rows, skipping duplicate ids.
func participantRows(purchaseID uint, personIDs []uint) []entities.PurchaseParticipant {
	seen := make(map[uint]bool, len(personIDs))
	rows := make([]entities.PurchaseParticipant, 0, len(personIDs))
	for _, id := range personIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, entities.PurchaseParticipant{PurchaseID: purchaseID, PersonID: id})
	}
	return rows
}

func validEstablishment(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", database.Invalid("establishment must not be empty")
	}
	return name, nil
}
