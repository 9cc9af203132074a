package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mrlokans/grocery-share/internal/database/purchases"
	"github.com/mrlokans/grocery-share/internal/entities"
)

type LineItemsController struct {
	store    PurchaseStore
	workflow PurchaseWorkflow
}

func NewLineItemsController(store PurchaseStore, workflow PurchaseWorkflow) *LineItemsController {
	return &LineItemsController{store: store, workflow: workflow}
}

// ListItems returns the items of a purchase with product names
// GET /api/purchases/:id/items
func (lc *LineItemsController) ListItems(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	items, err := lc.store.ListLineItems(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "list items")
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddItem adds a product by name. A person_id makes the item assigned.
// POST /api/purchases/:id/items
func (lc *LineItemsController) AddItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ProductName string              `json:"product_name" binding:"required"`
		Price       decimal.NullDecimal `json:"price"`
		PersonID    *uint               `json:"person_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "product_name is required")
		return
	}

	itemID, err := lc.workflow.AddItem(c.Request.Context(), id, req.ProductName, req.Price, req.PersonID)
	if err != nil {
		respondStoreError(c, err, "add item")
		return
	}
	respondCreated(c, IDResponse{ID: itemID})
}

// UpdateItem replaces the product, price and split of an item
// PUT /api/items/:id
func (lc *LineItemsController) UpdateItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ProductID uint                `json:"product_id" binding:"required"`
		Price     decimal.NullDecimal `json:"price"`
		SplitMode entities.SplitMode  `json:"split_mode"`
		PersonID  *uint               `json:"person_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "product_id is required")
		return
	}

	err := lc.store.UpdateLineItem(c.Request.Context(), id, purchases.LineItemInput{
		ProductID: req.ProductID,
		Price:     req.Price,
		SplitMode: req.SplitMode,
		PersonID:  req.PersonID,
	})
	if err != nil {
		respondStoreError(c, err, "update item")
		return
	}
	lc.respondItem(c, id)
}

// ToggleSplit flips an item between shared and assigned
// POST /api/items/:id/toggle
func (lc *LineItemsController) ToggleSplit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		PersonID *uint `json:"person_id"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	item, err := lc.workflow.ToggleSplit(c.Request.Context(), id, req.PersonID)
	if err != nil {
		respondStoreError(c, err, "toggle split")
		return
	}
	if item == nil {
		respondNotFound(c, "item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item
// DELETE /api/items/:id
func (lc *LineItemsController) DeleteItem(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := lc.store.DeleteLineItem(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "delete item")
		return
	}
	respondSuccess(c, "item deleted")
}

// DeleteUnpricedItems removes the items of a purchase that have no price
// DELETE /api/purchases/:id/items/unpriced
func (lc *LineItemsController) DeleteUnpricedItems(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	removed, err := lc.store.DeleteUnpricedLineItems(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "delete unpriced items")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unpriced_removed": removed})
}

func (lc *LineItemsController) respondItem(c *gin.Context, id uint) {
	item, err := lc.store.GetLineItem(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get item")
		return
	}
	if item == nil {
		respondNotFound(c, "item")
		return
	}
	c.JSON(http.StatusOK, item)
}
