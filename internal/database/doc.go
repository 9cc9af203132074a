// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Manager: lazy, single-flight connection setup
//	├── registry.go      # Named connections shared across managers
//	├── schema.go        # DDL for the six tables
//	├── errors.go        # Error taxonomy and SQLite error translation
//	├── people/          # People CRUD
//	├── products/        # Product catalog, get-or-create, search
//	├── purchases/       # Purchases, participants, line items
//	└── settings/        # Key/value settings
//
// # Using Sub-packages
//
// Each sub-package provides a Repository built on a shared Manager. The
// Manager opens the store on first use, so repositories can be created
// before the database exists:
//
//	mgr := database.NewManager(database.Options{Name: "grocery_share", Path: "./grocery-share.db"})
//	defer mgr.Close()
//
//	peopleRepo := people.NewRepository(mgr)
//	purchasesRepo := purchases.NewRepository(mgr)
//
//	id, err := peopleRepo.Insert(ctx, "Ana")
//
// # Errors
//
// Lookups by id return (nil, nil) when nothing matches. Validation failures
// wrap ErrInvalidInput, constraint violations reported by SQLite wrap
// ErrConstraint, and failed initialization is reported as *InitError.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct holding the *database.Manager
//  3. Add NewRepository(mgr *database.Manager) constructor
//  4. Resolve the handle per call with mgr.DB(ctx)
//  5. Add compile-time interface check in internal/interfaces
package database
