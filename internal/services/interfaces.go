package services

import (
	"context"

	"github.com/mrlokans/grocery-share/internal/database/purchases"
	"github.com/mrlokans/grocery-share/internal/entities"
)

// PurchaseStore is the purchase persistence the service orchestrates.
type PurchaseStore interface {
	Create(ctx context.Context, establishment string, participantIDs []uint) (uint, error)
	GetByID(ctx context.Context, id uint) (*entities.PurchaseWithParticipants, error)
	Complete(ctx context.Context, id uint) error
	AddLineItem(ctx context.Context, purchaseID uint, in purchases.LineItemInput) (uint, error)
	UpdateLineItem(ctx context.Context, id uint, in purchases.LineItemInput) error
	GetLineItem(ctx context.Context, id uint) (*entities.LineItem, error)
	ListLineItems(ctx context.Context, purchaseID uint) ([]entities.LineItemDetail, error)
	DeleteUnpricedLineItems(ctx context.Context, purchaseID uint) (int64, error)
}

// ProductResolver maps a product name to its catalog id.
type ProductResolver interface {
	GetOrCreate(ctx context.Context, name string) (uint, error)
}

// ParticipantMemory remembers who joined the last purchase.
type ParticipantMemory interface {
	SetLastUsedPeople(ctx context.Context, ids []uint) error
}
