package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	store PreferencesStore
}

func NewSettingsController(store PreferencesStore) *SettingsController {
	return &SettingsController{store: store}
}

// GetTheme returns the effective theme and where it came from
// GET /api/settings/theme
func (sc *SettingsController) GetTheme(c *gin.Context) {
	info, err := sc.store.GetThemeInfo(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "get theme")
		return
	}
	c.JSON(http.StatusOK, info)
}

// SetTheme stores "light" or "dark"
// PUT /api/settings/theme
func (sc *SettingsController) SetTheme(c *gin.Context) {
	var req struct {
		Theme string `json:"theme" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "theme is required")
		return
	}

	theme, err := sc.store.SetTheme(c.Request.Context(), req.Theme)
	if err != nil {
		respondStoreError(c, err, "set theme")
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// ToggleTheme switches between light and dark
// POST /api/settings/theme/toggle
func (sc *SettingsController) ToggleTheme(c *gin.Context) {
	theme, err := sc.store.ToggleTheme(c.Request.Context())
	if err != nil {
		respondStoreError(c, err, "toggle theme")
		return
	}
	c.JSON(http.StatusOK, gin.H{"theme": theme})
}

// GetLastUsedPeople returns who joined the most recent purchase
// GET /api/settings/last-used-people
func (sc *SettingsController) GetLastUsedPeople(c *gin.Context) {
	ids, err := sc.store.GetLastUsedPeople(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "get last used people")
		return
	}
	c.JSON(http.StatusOK, gin.H{"person_ids": ids})
}

// SetLastUsedPeople overrides the remembered participant list
// PUT /api/settings/last-used-people
func (sc *SettingsController) SetLastUsedPeople(c *gin.Context) {
	var req struct {
		PersonIDs []uint `json:"person_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "person_ids must be a list of ids")
		return
	}

	if err := sc.store.SetLastUsedPeople(c.Request.Context(), req.PersonIDs); err != nil {
		respondStoreError(c, err, "set last used people")
		return
	}
	respondSuccess(c, "last used people updated")
}
