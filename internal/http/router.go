package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Health, cfg.Version)
	router.GET("/health", health.Status)

	api := router.Group("/api")

	if cfg.People != nil {
		people := NewPeopleController(cfg.People)
		api.GET("/people", people.ListPeople)
		api.POST("/people", people.CreatePerson)
		api.GET("/people/:id", people.GetPerson)
		api.PUT("/people/:id", people.RenamePerson)
		api.DELETE("/people/:id", people.DeletePerson)
	}

	if cfg.Products != nil {
		products := NewProductsController(cfg.Products, cfg.ProductSearchLimit)
		api.GET("/products", products.ListProducts)
		api.POST("/products", products.CreateProduct)
		api.GET("/products/search", products.SearchProducts)
		api.GET("/products/:id", products.GetProduct)
		api.DELETE("/products/:id", products.DeleteProduct)
	}

	if cfg.Purchases != nil && cfg.Workflow != nil {
		purchases := NewPurchasesController(cfg.Purchases, cfg.Workflow, cfg.RecentEstablishmentsLimit)
		api.GET("/purchases", purchases.ListPurchases)
		api.POST("/purchases", purchases.CreatePurchase)
		api.GET("/purchases/:id", purchases.GetPurchase)
		api.PATCH("/purchases/:id", purchases.UpdatePurchase)
		api.DELETE("/purchases/:id", purchases.DeletePurchase)
		api.POST("/purchases/:id/complete", purchases.CompletePurchase)
		api.GET("/purchases/:id/summary", purchases.GetSummary)
		api.POST("/purchases/:id/participants", purchases.AddParticipant)
		api.DELETE("/purchases/:id/participants/:personId", purchases.RemoveParticipant)
		api.GET("/establishments/recent", purchases.RecentEstablishments)

		items := NewLineItemsController(cfg.Purchases, cfg.Workflow)
		api.GET("/purchases/:id/items", items.ListItems)
		api.POST("/purchases/:id/items", items.AddItem)
		api.DELETE("/purchases/:id/items/unpriced", items.DeleteUnpricedItems)
		api.PUT("/items/:id", items.UpdateItem)
		api.POST("/items/:id/toggle", items.ToggleSplit)
		api.DELETE("/items/:id", items.DeleteItem)
	}

	if cfg.Preferences != nil {
		settings := NewSettingsController(cfg.Preferences)
		api.GET("/settings/theme", settings.GetTheme)
		api.PUT("/settings/theme", settings.SetTheme)
		api.POST("/settings/theme/toggle", settings.ToggleTheme)
		api.GET("/settings/last-used-people", settings.GetLastUsedPeople)
		api.PUT("/settings/last-used-people", settings.SetLastUsedPeople)
	}

	if cfg.Maintenance != nil {
		maintenance := NewMaintenanceController(cfg.Maintenance)
		api.POST("/admin/maintenance", maintenance.RunMaintenance)
	}

	return router
}
