package purchases

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mrlokans/grocery-share/internal/database"
	"github.com/mrlokans/grocery-share/internal/entities"
)

// LineItemInput is the full editable state of a line item.
type LineItemInput struct {
	ProductID uint
	Price     decimal.NullDecimal
	SplitMode entities.SplitMode
	// PersonID must be set for SplitAssigned and nil for SplitShared.
	PersonID *uint
}

// AddLineItem appends a line item to a purchase and returns its id.
func (r *Repository) AddLineItem(ctx context.Context, purchaseID uint, in LineItemInput) (uint, error) {
	in, err := normalize(in)
	if err != nil {
		return 0, err
	}
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return 0, err
	}

	item := entities.LineItem{
		PurchaseID: purchaseID,
		ProductID:  in.ProductID,
		Price:      in.Price,
		SplitMode:  in.SplitMode,
		PersonID:   in.PersonID,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := checkAssignee(tx, purchaseID, in); err != nil {
			return err
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		return 0, database.Translate(err)
	}
	return item.ID, nil
}

// UpdateLineItem replaces product, price, split mode and assignee of a line
// item. Unknown ids are ignored.
func (r *Repository) UpdateLineItem(ctx context.Context, id uint, in LineItemInput) error {
	in, err := normalize(in)
	if err != nil {
		return err
	}
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var existing entities.LineItem
		err := tx.Take(&existing, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := checkAssignee(tx, existing.PurchaseID, in); err != nil {
			return err
		}
		return tx.Model(&entities.LineItem{}).Where("id = ?", id).Updates(map[string]any{
			"product_id": in.ProductID,
			"price":      in.Price,
			"is_divided": in.SplitMode,
			"person_id":  in.PersonID,
		}).Error
	})
	return database.Translate(err)
}

// DeleteLineItem removes a single line item.
func (r *Repository) DeleteLineItem(ctx context.Context, id uint) error {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}
	return database.Translate(db.Delete(&entities.LineItem{}, id).Error)
}

// GetLineItem returns nil when no line item has the given id.
func (r *Repository) GetLineItem(ctx context.Context, id uint) (*entities.LineItem, error) {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return nil, err
	}
	var item entities.LineItem
	err = db.Take(&item, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListLineItems returns the line items of a purchase in insertion order,
// each with its product name.
func (r *Repository) ListLineItems(ctx context.Context, purchaseID uint) ([]entities.LineItemDetail, error) {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return nil, err
	}
	items := []entities.LineItemDetail{}
	err = db.Table("purchase_products AS pp").
		Select("pp.id, pp.purchase_id, pp.product_id, pp.price, pp.is_divided, pp.person_id, p.name AS product_name").
		Joins("JOIN products p ON p.id = pp.product_id").
		Where("pp.purchase_id = ?", purchaseID).
		Order("pp.id ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteUnpricedLineItems removes every line item of the purchase that has
// no price and reports how many were removed.
func (r *Repository) DeleteUnpricedLineItems(ctx context.Context, purchaseID uint) (int64, error) {
	res, err := r.mgr.Execute(ctx,
		"DELETE FROM purchase_products WHERE purchase_id = ? AND price IS NULL", purchaseID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

func normalize(in LineItemInput) (LineItemInput, error) {
	if in.SplitMode == "" {
		in.SplitMode = entities.SplitShared
	}
	if !in.SplitMode.Valid() {
		return in, database.Invalid("unknown split mode %q", string(in.SplitMode))
	}
	if in.ProductID == 0 {
		return in, database.Invalid("product is required")
	}
	if in.Price.Valid && in.Price.Decimal.IsNegative() {
		return in, database.Invalid("price must not be negative")
	}
	switch in.SplitMode {
	case entities.SplitShared:
		if in.PersonID != nil {
			return in, database.Invalid("shared items cannot be assigned to a person")
		}
	case entities.SplitAssigned:
		if in.PersonID == nil {
			return in, database.Invalid("assigned items need a person")
		}
	}
	return in, nil
}

// checkAssignee verifies an assigned person participates in the purchase.
func checkAssignee(tx *gorm.DB, purchaseID uint, in LineItemInput) error {
	if in.SplitMode != entities.SplitAssigned {
		return nil
	}
	var count int64
	err := tx.Model(&entities.PurchaseParticipant{}).
		Where("purchase_id = ? AND person_id = ?", purchaseID, *in.PersonID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return database.Invalid("person %d is not a participant of purchase %d", *in.PersonID, purchaseID)
	}
	return nil
}
