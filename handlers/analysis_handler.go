package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"cravesmart-backend/models"
	"cravesmart-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DefaultMaxImageSize bounds uploaded meal photos
const DefaultMaxImageSize = 10 * 1024 * 1024 // 10MB

// AnalysisHandler handles meal analysis and plan selection
type AnalysisHandler struct {
	analysisService  *service.AnalysisService
	accountService   *service.AccountService
	maxImageSize     int64
	allowedMimeTypes map[string]bool
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService *service.AnalysisService, accountService *service.AccountService, maxImageSize int64) *AnalysisHandler {
	if maxImageSize <= 0 {
		maxImageSize = DefaultMaxImageSize
	}
	return &AnalysisHandler{
		analysisService: analysisService,
		accountService:  accountService,
		maxImageSize:    maxImageSize,
		allowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/webp": true,
			"image/heic": true,
			"image/heif": true,
		},
	}
}

// CycleRequest represents the request body for cycling a slot's option
type CycleRequest struct {
	Direction service.Direction `json:"direction"`
}

// Analyze handles POST /api/analyze
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	session := currentSession(c)

	profile, ok := h.resolveProfile(c, session.AccountID)
	if !ok {
		return
	}

	planType := models.PlanType(strings.TrimSpace(c.DefaultPostForm("plan_type", string(models.PlanAnalyze))))

	mealsPerDay := 0
	if v := strings.TrimSpace(c.PostForm("meals_per_day")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_MEALS_PER_DAY", "meals_per_day must be a number")
			return
		}
		mealsPerDay = n
	}

	image, ok := h.readImage(c)
	if !ok {
		return
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), service.AnalyzeRequest{
		Profile:     profile,
		Image:       image,
		Description: c.PostForm("description"),
		PlanType:    planType,
		MealsPerDay: mealsPerDay,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	session.SetResult(result)
	respondOK(c, http.StatusOK, session.View())
}

// GetAnalysis handles GET /api/analysis
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	view := currentSession(c).View()
	if view == nil {
		writeError(c, http.StatusNotFound, "NO_ANALYSIS", "No analysis available.")
		return
	}
	respondOK(c, http.StatusOK, view)
}

// ResetAnalysis handles DELETE /api/analysis
func (h *AnalysisHandler) ResetAnalysis(c *gin.Context) {
	currentSession(c).ClearResult()
	respondOK(c, http.StatusOK, gin.H{"reset": true})
}

// CycleOption handles POST /api/analysis/slots/:index/cycle
func (h *AnalysisHandler) CycleOption(c *gin.Context) {
	slot, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_SLOT", "Slot index must be a number")
		return
	}

	var req CycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	view, err := currentSession(c).Cycle(slot, req.Direction)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view)
}

// resolveProfile picks a saved profile, an inline one or the defaults
func (h *AnalysisHandler) resolveProfile(c *gin.Context, accountID uuid.UUID) (models.Profile, bool) {
	if idStr := strings.TrimSpace(c.PostForm("profile_id")); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_ID", "Invalid profile ID format")
			return models.Profile{}, false
		}
		saved, err := h.accountService.GetProfile(c.Request.Context(), accountID, id)
		if err != nil {
			respondError(c, err)
			return models.Profile{}, false
		}
		return saved.Profile, true
	}

	if raw := strings.TrimSpace(c.PostForm("profile")); raw != "" {
		profile := models.DefaultProfile()
		if err := json.Unmarshal([]byte(raw), &profile); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_PROFILE", "profile must be a JSON object")
			return models.Profile{}, false
		}
		return profile, true
	}

	return models.DefaultProfile(), true
}

// readImage returns the uploaded photo, or nil when none was sent
func (h *AnalysisHandler) readImage(c *gin.Context) (*service.ImageInput, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// The service decides whether a missing image is an error
		return nil, true
	}

	if fileHeader.Size > h.maxImageSize {
		writeError(c, http.StatusBadRequest, "FILE_TOO_LARGE",
			fmt.Sprintf("Image size exceeds maximum of %d bytes", h.maxImageSize))
		return nil, false
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimeFromExtension(fileHeader.Filename)
	}
	if !h.allowedMimeTypes[mimeType] {
		writeError(c, http.StatusBadRequest, "INVALID_FILE_TYPE",
			"File type not allowed. Allowed types: JPEG, PNG, WEBP, HEIC")
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "FILE_OPEN_ERROR", err.Error())
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxImageSize+1))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "FILE_READ_ERROR", err.Error())
		return nil, false
	}
	if int64(len(data)) > h.maxImageSize {
		writeError(c, http.StatusBadRequest, "FILE_TOO_LARGE",
			fmt.Sprintf("Image size exceeds maximum of %d bytes", h.maxImageSize))
		return nil, false
	}

	return &service.ImageInput{
		Data:     data,
		MIMEType: mimeType,
		Filename: fileHeader.Filename,
	}, true
}

func mimeFromExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}
