package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// schema is the on-disk contract. Every statement is safe to re-run.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS people (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS purchases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		establishment TEXT NOT NULL,
		is_completed INTEGER DEFAULT 0,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_people (
		purchase_id INTEGER NOT NULL,
		person_id INTEGER NOT NULL,
		PRIMARY KEY (purchase_id, person_id),
		FOREIGN KEY (purchase_id) REFERENCES purchases(id) ON DELETE CASCADE,
		FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS purchase_products (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		purchase_id INTEGER NOT NULL,
		product_id INTEGER NOT NULL,
		price REAL,
		is_divided INTEGER DEFAULT 1,
		person_id INTEGER,
		FOREIGN KEY (purchase_id) REFERENCES purchases(id) ON DELETE CASCADE,
		FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE,
		FOREIGN KEY (person_id) REFERENCES people(id) ON DELETE SET NULL
	)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}

// ApplySchema creates any missing tables. Applying it to an up-to-date store is a no-op.
func ApplySchema(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range schema {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
