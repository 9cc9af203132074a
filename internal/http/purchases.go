package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PurchasesController struct {
	store       PurchaseStore
	workflow    PurchaseWorkflow
	recentLimit int
}

func NewPurchasesController(store PurchaseStore, workflow PurchaseWorkflow, recentLimit int) *PurchasesController {
	return &PurchasesController{store: store, workflow: workflow, recentLimit: recentLimit}
}

// ListPurchases returns every purchase, newest first
// GET /api/purchases
func (pc *PurchasesController) ListPurchases(c *gin.Context) {
	purchases, err := pc.store.GetAll(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list purchases")
		return
	}
	c.JSON(http.StatusOK, purchases)
}

// GetPurchase returns a purchase with its participant ids
// GET /api/purchases/:id
func (pc *PurchasesController) GetPurchase(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	purchase, err := pc.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get purchase")
		return
	}
	if purchase == nil {
		respondNotFound(c, "purchase")
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// CreatePurchase opens a purchase
// POST /api/purchases
func (pc *PurchasesController) CreatePurchase(c *gin.Context) {
	var req struct {
		Establishment  string `json:"establishment" binding:"required"`
		ParticipantIDs []uint `json:"participant_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "establishment is required")
		return
	}

	id, err := pc.workflow.CreatePurchase(c.Request.Context(), req.Establishment, req.ParticipantIDs)
	if err != nil {
		respondStoreError(c, err, "create purchase")
		return
	}
	respondCreated(c, IDResponse{ID: id})
}

// UpdatePurchase renames the establishment
// PATCH /api/purchases/:id
func (pc *PurchasesController) UpdatePurchase(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Establishment string `json:"establishment" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "establishment is required")
		return
	}

	if err := pc.store.UpdateEstablishment(c.Request.Context(), id, req.Establishment); err != nil {
		respondStoreError(c, err, "update purchase")
		return
	}
	respondSuccess(c, "purchase updated")
}

// DeletePurchase removes a purchase with its participants and items
// DELETE /api/purchases/:id
func (pc *PurchasesController) DeletePurchase(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := pc.store.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "delete purchase")
		return
	}
	respondSuccess(c, "purchase deleted")
}

// CompletePurchase drops unpriced items and marks the purchase completed
// POST /api/purchases/:id/complete
func (pc *PurchasesController) CompletePurchase(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	purchase, err := pc.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "complete purchase")
		return
	}
	if purchase == nil {
		respondNotFound(c, "purchase")
		return
	}

	removed, err := pc.workflow.Complete(c.Request.Context(), id)
	if err != nil {
		respondStoreError(c, err, "complete purchase")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unpriced_removed": removed})
}

// GetSummary returns the items, total and per-person split of a purchase
// GET /api/purchases/:id/summary
func (pc *PurchasesController) GetSummary(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	summary, err := pc.workflow.Summary(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "purchase summary")
		return
	}
	if summary == nil {
		respondNotFound(c, "purchase")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// AddParticipant adds a person to a purchase
// POST /api/purchases/:id/participants
func (pc *PurchasesController) AddParticipant(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		PersonID uint `json:"person_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "person_id is required")
		return
	}

	if err := pc.store.AddParticipant(c.Request.Context(), id, req.PersonID); err != nil {
		respondStoreError(c, err, "add participant")
		return
	}
	respondSuccess(c, "participant added")
}

// RemoveParticipant drops a person from a purchase
// DELETE /api/purchases/:id/participants/:personId
func (pc *PurchasesController) RemoveParticipant(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	personID, ok := parseIDParam(c, "personId")
	if !ok {
		return
	}

	if err := pc.store.RemoveParticipant(c.Request.Context(), id, personID); err != nil {
		respondStoreError(c, err, "remove participant")
		return
	}
	respondSuccess(c, "participant removed")
}

// RecentEstablishments returns establishment names, most recently used first
// GET /api/establishments/recent?limit=10
func (pc *PurchasesController) RecentEstablishments(c *gin.Context) {
	limit, ok := parseLimitQuery(c, pc.recentLimit)
	if !ok {
		return
	}

	names, err := pc.store.RecentEstablishments(c.Request.Context(), limit)
	if err != nil {
		respondInternalError(c, err, "recent establishments")
		return
	}
	c.JSON(http.StatusOK, names)
}
