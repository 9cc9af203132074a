package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/grocery-share/internal/database"
	"github.com/mrlokans/grocery-share/internal/database/people"
	"github.com/mrlokans/grocery-share/internal/database/products"
	"github.com/mrlokans/grocery-share/internal/database/purchases"
	"github.com/mrlokans/grocery-share/internal/database/settings"
	"github.com/mrlokans/grocery-share/internal/http"
	"github.com/mrlokans/grocery-share/internal/scheduler"
	"github.com/mrlokans/grocery-share/internal/services"
	"github.com/mrlokans/grocery-share/internal/settingsstore"
	"github.com/mrlokans/grocery-share/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.HealthChecker = (*database.Manager)(nil)
var _ http.PeopleStore = (*people.Repository)(nil)
var _ http.ProductStore = (*products.Repository)(nil)
var _ http.PurchaseStore = (*purchases.Repository)(nil)
var _ settingsstore.SettingsRepository = (*settings.Repository)(nil)

// =============================================================================
// Services
// =============================================================================

var _ services.PurchaseStore = (*purchases.Repository)(nil)
var _ services.ProductResolver = (*products.Repository)(nil)
var _ services.ParticipantMemory = (*settingsstore.SettingsStore)(nil)
var _ http.PurchaseWorkflow = (*services.PurchaseService)(nil)
var _ http.PreferencesStore = (*settingsstore.SettingsStore)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.StatementExecutor = (*database.Manager)(nil)
var _ tasks.OrphanProductsCleaner = (*products.Repository)(nil)
var _ http.MaintenanceRunner = (*scheduler.MaintenanceScheduler)(nil)
