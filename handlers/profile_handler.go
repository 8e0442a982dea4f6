package handlers

import (
	"net/http"

	"cravesmart-backend/models"
	"cravesmart-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProfileHandler handles HTTP requests for saved profiles
type ProfileHandler struct {
	accountService *service.AccountService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(accountService *service.AccountService) *ProfileHandler {
	return &ProfileHandler{accountService: accountService}
}

// SaveProfileRequest represents the request body for creating a profile
type SaveProfileRequest struct {
	ProfileName string         `json:"profile_name"`
	Profile     models.Profile `json:"profile"`
}

// Defaults handles GET /api/profiles/defaults
func (h *ProfileHandler) Defaults(c *gin.Context) {
	respondOK(c, http.StatusOK, gin.H{
		"profile":             models.DefaultProfile(),
		"macro_preferences":   models.MacroPreferences,
		"protein_preferences": models.ProteinPreferences,
		"genders":             []models.Gender{models.GenderMale, models.GenderFemale, models.GenderOther},
		"activity_levels": []models.ActivityLevel{
			models.ActivitySedentary, models.ActivityLight, models.ActivityModerate, models.ActivityHigh,
		},
		"goals":       []models.FitnessGoal{models.GoalBulking, models.GoalCutting, models.GoalMaintenance},
		"diet_types":  []models.DietType{models.DietVegetarian, models.DietVegPlusEggs, models.DietNonVeg},
		"meals_range": []int{2, 3, 4, 5},
	})
}

// ListProfiles handles GET /api/profiles
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	session := currentSession(c)
	profiles, err := h.accountService.ListProfiles(c.Request.Context(), session.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, profiles)
}

// CreateProfile handles POST /api/profiles
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	session := currentSession(c)
	saved, err := h.accountService.CreateProfile(c.Request.Context(), session.AccountID, req.ProfileName, req.Profile)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, saved)
}

// GetProfile handles GET /api/profiles/:id
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	session := currentSession(c)
	saved, err := h.accountService.GetProfile(c.Request.Context(), session.AccountID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, saved)
}

// UpdateProfile handles PUT /api/profiles/:id
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	var profile models.Profile
	if err := c.ShouldBindJSON(&profile); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	session := currentSession(c)
	saved, err := h.accountService.UpdateProfile(c.Request.Context(), session.AccountID, id, profile)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, saved)
}

// DeleteProfile handles DELETE /api/profiles/:id
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	id, ok := parseProfileID(c)
	if !ok {
		return
	}

	session := currentSession(c)
	if err := h.accountService.DeleteProfile(c.Request.Context(), session.AccountID, id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"id": id})
}

func parseProfileID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_ID", "Invalid profile ID format")
		return uuid.Nil, false
	}
	return id, true
}
