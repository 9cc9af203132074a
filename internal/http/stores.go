package http

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/grocery-share/internal/database/purchases"
	"github.com/mrlokans/grocery-share/internal/entities"
	"github.com/mrlokans/grocery-share/internal/services"
	"github.com/mrlokans/grocery-share/internal/settingsstore"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Not-found lookups return a nil entity and a nil error.

// HealthChecker reports whether the store answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// PeopleStore defines database operations for people management.
type PeopleStore interface {
	List(ctx context.Context) ([]entities.Person, error)
	GetByID(ctx context.Context, id uint) (*entities.Person, error)
	Insert(ctx context.Context, name string) (uint, error)
	Update(ctx context.Context, id uint, name string) error
	Delete(ctx context.Context, id uint) error
}

// ProductStore defines database operations for the product catalog.
type ProductStore interface {
	List(ctx context.Context) ([]entities.Product, error)
	GetByID(ctx context.Context, id uint) (*entities.Product, error)
	GetOrCreate(ctx context.Context, name string) (uint, error)
	Search(ctx context.Context, term string, limit int) ([]entities.Product, error)
	Delete(ctx context.Context, id uint) error
}

// PurchaseStore defines direct database operations on purchases and their items.
type PurchaseStore interface {
	GetAll(ctx context.Context) ([]entities.PurchaseWithParticipants, error)
	GetByID(ctx context.Context, id uint) (*entities.PurchaseWithParticipants, error)
	UpdateEstablishment(ctx context.Context, id uint, establishment string) error
	Delete(ctx context.Context, id uint) error
	AddParticipant(ctx context.Context, purchaseID, personID uint) error
	RemoveParticipant(ctx context.Context, purchaseID, personID uint) error
	RecentEstablishments(ctx context.Context, limit int) ([]string, error)

	GetLineItem(ctx context.Context, id uint) (*entities.LineItem, error)
	ListLineItems(ctx context.Context, purchaseID uint) ([]entities.LineItemDetail, error)
	UpdateLineItem(ctx context.Context, id uint, in purchases.LineItemInput) error
	DeleteLineItem(ctx context.Context, id uint) error
	DeleteUnpricedLineItems(ctx context.Context, purchaseID uint) (int64, error)
}

// PurchaseWorkflow covers the multi-step purchase operations.
type PurchaseWorkflow interface {
	CreatePurchase(ctx context.Context, establishment string, participantIDs []uint) (uint, error)
	AddItem(ctx context.Context, purchaseID uint, productName string, price decimal.NullDecimal, personID *uint) (uint, error)
	ToggleSplit(ctx context.Context, itemID uint, personID *uint) (*entities.LineItem, error)
	Complete(ctx context.Context, purchaseID uint) (int64, error)
	Summary(ctx context.Context, purchaseID uint) (*services.PurchaseSummary, error)
}

// PreferencesStore is the typed settings surface.
type PreferencesStore interface {
	GetThemeInfo(ctx context.Context) (settingsstore.ThemeInfo, error)
	SetTheme(ctx context.Context, raw string) (settingsstore.Theme, error)
	ToggleTheme(ctx context.Context) (settingsstore.Theme, error)
	GetLastUsedPeople(ctx context.Context) ([]uint, error)
	SetLastUsedPeople(ctx context.Context, ids []uint) error
}

// MaintenanceRunner triggers store maintenance outside its schedule.
type MaintenanceRunner interface {
	RunNow(ctx context.Context) error
}
