// Package products provides database operations for the shared product catalog.
package products

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/grocery-share/internal/database"
	"github.com/mrlokans/grocery-share/internal/entities"
)

// DefaultSearchLimit caps Search results when no limit is given.
const DefaultSearchLimit = 10

// Repository handles all product database operations.
type Repository struct {
	mgr *database.Manager
}

// NewRepository creates a new products repository.
func NewRepository(mgr *database.Manager) *Repository {
	return &Repository{mgr: mgr}
}

// List returns the catalog ordered by name.
func (r *Repository) List(ctx context.Context) ([]entities.Product, error) {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return nil, err
	}
	products := []entities.Product{}
	err = db.Order("name ASC").Find(&products).Error
	return products, err
}

// GetByID returns nil when no product has the given id.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.Product, error) {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return nil, err
	}
	return findOne(db.Where("id = ?", id))
}

// GetOrCreate returns the id of the product with exactly this name, creating
// it if needed. The UNIQUE constraint on name settles concurrent creators:
// the losing insert is a no-op and both callers read back the same row.
func (r *Repository) GetOrCreate(ctx context.Context, name string) (uint, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, database.Invalid("product name must not be empty")
	}
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return 0, err
	}

	existing, err := findOne(db.Where("name = ?", name))
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&entities.Product{Name: name}).Error
	if err != nil {
		return 0, database.Translate(err)
	}

	created, err := findOne(db.Where("name = ?", name))
	if err != nil {
		return 0, err
	}
	if created == nil {
		return 0, errors.New("product vanished after insert")
	}
	return created.ID, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Search returns products whose name contains term, ignoring case. Wildcard
// characters in term match literally. SQLite's LOWER only folds ASCII, so
// non-ASCII letters must match case exactly.
func (r *Repository) Search(ctx context.Context, term string, limit int) ([]entities.Product, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return nil, err
	}
	products := []entities.Product{}
	pattern := "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
	err = db.Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// Delete removes a product along with every line item that references it.
func (r *Repository) Delete(ctx context.Context, id uint) error {
	db, err := r.mgr.DB(ctx)
	if err != nil {
		return err
	}
	return database.Translate(db.Delete(&entities.Product{}, id).Error)
}

// DeleteOrphans removes products that no line item references.
func (r *Repository) DeleteOrphans(ctx context.Context) (int64, error) {
	res, err := r.mgr.Execute(ctx,
		"DELETE FROM products WHERE id NOT IN (SELECT DISTINCT product_id FROM purchase_products)")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

func findOne(q *gorm.DB) (*entities.Product, error) {
	var product entities.Product
	err := q.Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
