package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type PeopleController struct {
	store PeopleStore
}

func NewPeopleController(store PeopleStore) *PeopleController {
	return &PeopleController{store: store}
}

type personRequest struct {
	Name string `json:"name" binding:"required"`
}

// ListPeople returns everyone ordered by name
// GET /api/people
func (pc *PeopleController) ListPeople(c *gin.Context) {
	people, err := pc.store.List(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list people")
		return
	}
	c.JSON(http.StatusOK, people)
}

// GetPerson returns a single person
// GET /api/people/:id
func (pc *PeopleController) GetPerson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	person, err := pc.store.GetByID(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "get person")
		return
	}
	if person == nil {
		respondNotFound(c, "person")
		return
	}
	c.JSON(http.StatusOK, person)
}

// CreatePerson adds a person
// POST /api/people
func (pc *PeopleController) CreatePerson(c *gin.Context) {
	var req personRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	id, err := pc.store.Insert(c.Request.Context(), req.Name)
	if err != nil {
		respondStoreError(c, err, "create person")
		return
	}
	respondCreated(c, IDResponse{ID: id})
}

// RenamePerson changes a person's name
// PUT /api/people/:id
func (pc *PeopleController) RenamePerson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req personRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	if err := pc.store.Update(c.Request.Context(), id, req.Name); err != nil {
		respondStoreError(c, err, "rename person")
		return
	}
	respondSuccess(c, "person updated")
}

// DeletePerson removes a person. Their participations go with them and
// items assigned to them lose their assignee.
// DELETE /api/people/:id
func (pc *PeopleController) DeletePerson(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := pc.store.Delete(c.Request.Context(), id); err != nil {
		respondStoreError(c, err, "delete person")
		return
	}
	respondSuccess(c, "person deleted")
}
