package http

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Health      HealthChecker
	People      PeopleStore
	Products    ProductStore
	Purchases   PurchaseStore
	Workflow    PurchaseWorkflow
	Preferences PreferencesStore

	// Optional; the admin endpoint is only registered when set
	Maintenance MaintenanceRunner

	// Limits applied when a request does not pass one
	ProductSearchLimit        int
	RecentEstablishmentsLimit int

	// Application info
	Version string
}
