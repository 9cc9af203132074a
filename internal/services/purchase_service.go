package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/grocery-share/internal/calculator"
	"github.com/mrlokans/grocery-share/internal/database"
	"github.com/mrlokans/grocery-share/internal/database/purchases"
	"github.com/mrlokans/grocery-share/internal/entities"
)

// PurchaseSummary is everything needed to settle a purchase.
type PurchaseSummary struct {
	Purchase entities.PurchaseWithParticipants `json:"purchase"`
	Items    []entities.LineItemDetail         `json:"items"`
	Total    decimal.Decimal                   `json:"total"`
	// Split is nil while the purchase has no participants.
	Split *calculator.Split `json:"split"`
}

// PurchaseService runs the multi-step purchase workflows on top of the repositories.
type PurchaseService struct {
	purchases PurchaseStore
	products  ProductResolver
	memory    ParticipantMemory
}

// NewPurchaseService creates a new PurchaseService. memory may be nil.
func NewPurchaseService(purchases PurchaseStore, products ProductResolver, memory ParticipantMemory) *PurchaseService {
	return &PurchaseService{
		purchases: purchases,
		products:  products,
		memory:    memory,
	}
}

// CreatePurchase opens a purchase and remembers its participants for the
// next one. At least one participant is required.
func (s *PurchaseService) CreatePurchase(ctx context.Context, establishment string, participantIDs []uint) (uint, error) {
	if len(participantIDs) == 0 {
		return 0, database.Invalid("a purchase needs at least one participant")
	}

	id, err := s.purchases.Create(ctx, establishment, participantIDs)
	if err != nil {
		return 0, err
	}

	if s.memory != nil {
		if err := s.memory.SetLastUsedPeople(ctx, participantIDs); err != nil {
			slog.Warn("failed to remember last used people", "purchase_id", id, "error", err)
		}
	}
	return id, nil
}

// AddItem adds a product by name. The item is shared unless personID is given.
func (s *PurchaseService) AddItem(ctx context.Context, purchaseID uint, productName string, price decimal.NullDecimal, personID *uint) (uint, error) {
	productID, err := s.products.GetOrCreate(ctx, productName)
	if err != nil {
		return 0, fmt.Errorf("resolve product: %w", err)
	}

	in := purchases.LineItemInput{
		ProductID: productID,
		Price:     price,
		SplitMode: entities.SplitShared,
	}
	if personID != nil {
		in.SplitMode = entities.SplitAssigned
		in.PersonID = personID
	}
	return s.purchases.AddLineItem(ctx, purchaseID, in)
}

// ToggleSplit flips a line item between shared and assigned. Switching to
// assigned needs personID. Returns nil when the item does not exist.
func (s *PurchaseService) ToggleSplit(ctx context.Context, itemID uint, personID *uint) (*entities.LineItem, error) {
	item, err := s.purchases.GetLineItem(ctx, itemID)
	if err != nil || item == nil {
		return nil, err
	}

	in := purchases.LineItemInput{
		ProductID: item.ProductID,
		Price:     item.Price,
	}
	if item.SplitMode == entities.SplitShared {
		if personID == nil {
			return nil, database.Invalid("choose who the item is assigned to")
		}
		in.SplitMode = entities.SplitAssigned
		in.PersonID = personID
	} else {
		in.SplitMode = entities.SplitShared
	}

	if err := s.purchases.UpdateLineItem(ctx, itemID, in); err != nil {
		return nil, err
	}
	return s.purchases.GetLineItem(ctx, itemID)
}

// Complete drops unpriced items and then marks the purchase completed.
// It reports how many items were dropped.
func (s *PurchaseService) Complete(ctx context.Context, purchaseID uint) (int64, error) {
	removed, err := s.purchases.DeleteUnpricedLineItems(ctx, purchaseID)
	if err != nil {
		return 0, fmt.Errorf("delete unpriced items: %w", err)
	}
	if err := s.purchases.Complete(ctx, purchaseID); err != nil {
		return removed, fmt.Errorf("complete purchase: %w", err)
	}
	slog.Info("purchase completed", "purchase_id", purchaseID, "unpriced_removed", removed)
	return removed, nil
}

// Summary loads a purchase with its items and per-person split. Returns nil
// when the purchase does not exist.
func (s *PurchaseService) Summary(ctx context.Context, purchaseID uint) (*PurchaseSummary, error) {
	purchase, err := s.purchases.GetByID(ctx, purchaseID)
	if err != nil || purchase == nil {
		return nil, err
	}

	details, err := s.purchases.ListLineItems(ctx, purchaseID)
	if err != nil {
		return nil, err
	}
	items := calculator.Items(details)

	summary := &PurchaseSummary{
		Purchase: *purchase,
		Items:    details,
		Total:    calculator.Total(items),
	}
	if len(purchase.ParticipantIDs) == 0 {
		return summary, nil
	}

	split, err := calculator.Calculate(purchase.ParticipantIDs, items)
	if err != nil {
		return nil, err
	}
	summary.Split = split
	return summary, nil
}
