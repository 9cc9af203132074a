// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - HealthChecker: store liveness (internal/http/stores.go)
//   - PeopleStore, ProductStore, PurchaseStore: repository surfaces used by
//     HTTP controllers (internal/http/stores.go)
//   - SettingsRepository: key/value persistence under the settings store
//     (internal/settingsstore/settingsstore.go)
//
// ## Service Interfaces
//
//   - PurchaseStore, ProductResolver, ParticipantMemory: what the purchase
//     service orchestrates (internal/services/interfaces.go)
//   - PurchaseWorkflow, PreferencesStore: service surfaces used by HTTP
//     controllers (internal/http/stores.go)
//
// ## Background Work Interfaces
//
//   - StatementExecutor, OrphanProductsCleaner: inputs of the store
//     maintenance task (internal/tasks/store_maintenance.go)
//   - MaintenanceRunner: manual maintenance trigger (internal/http/stores.go)
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., receipts):
//
//  1. Create sub-package: internal/database/receipts/
//
//  2. Add its CREATE TABLE statement to internal/database/schema.go
//
//  3. Define repository on top of the connection manager:
//
//     type Repository struct { mgr *database.Manager }
//
//     func NewRepository(mgr *database.Manager) *Repository
//
//  4. Take a context.Context on every method and obtain the handle with
//     mgr.DB(ctx), so the first caller initializes the store
//
//  5. Add compile-time check:
//
//     var _ ReceiptStore = (*Repository)(nil)
//
// # Adding a New Background Task
//
//  1. Define the task type with a Config() backlite.QueueConfig method in
//     internal/tasks/
//
//  2. Write a processor constructor taking narrow interfaces
//
//  3. Register the queue in entrypoint.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
