package handlers

import (
	"net/http"

	"cravesmart-backend/models"
	"cravesmart-backend/repository"

	"github.com/gin-gonic/gin"
)

// ThemeHandler handles the stored theme preference
type ThemeHandler struct {
	themes *repository.ThemeRepository
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(themes *repository.ThemeRepository) *ThemeHandler {
	return &ThemeHandler{themes: themes}
}

// GetTheme handles GET /api/theme
func (h *ThemeHandler) GetTheme(c *gin.Context) {
	theme, err := h.themes.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"theme": theme})
}

// SetTheme handles PUT /api/theme
func (h *ThemeHandler) SetTheme(c *gin.Context) {
	var req struct {
		Theme models.Theme `json:"theme"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if !req.Theme.IsValid() {
		writeError(c, http.StatusBadRequest, "INVALID_THEME", "Theme must be \"dark\" or \"light\"")
		return
	}

	if err := h.themes.Set(c.Request.Context(), req.Theme); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"theme": req.Theme})
}
