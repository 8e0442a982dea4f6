package handlers

import (
	"errors"
	"log"
	"net/http"

	"cravesmart-backend/service"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// errorMappings turns service errors into user-facing responses
var errorMappings = []errorMapping{
	{service.ErrMissingFields, http.StatusBadRequest, "MISSING_FIELDS", "Please fill in all required fields."},
	{service.ErrMissingCredentials, http.StatusBadRequest, "MISSING_CREDENTIALS", "Please enter username/email and password."},
	{service.ErrPasswordMismatch, http.StatusBadRequest, "PASSWORD_MISMATCH", "Passwords do not match."},
	{service.ErrUsernameTaken, http.StatusConflict, "USERNAME_TAKEN", "Username already exists."},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password."},
	{service.ErrAccountNotFound, http.StatusUnauthorized, "ACCOUNT_NOT_FOUND", "Account not found."},
	{service.ErrProfileNotFound, http.StatusNotFound, "PROFILE_NOT_FOUND", "Profile not found."},
	{service.ErrProfileNameRequired, http.StatusBadRequest, "PROFILE_NAME_REQUIRED", "Please enter a profile name."},
	{service.ErrImageRequired, http.StatusBadRequest, "IMAGE_REQUIRED", "Please upload a meal photo to analyze."},
	{service.ErrInvalidPlanType, http.StatusBadRequest, "INVALID_PLAN_TYPE", ""},
	{service.ErrInvalidMealsPerDay, http.StatusBadRequest, "INVALID_MEALS_PER_DAY", ""},
	{service.ErrAnalysisFailed, http.StatusBadGateway, "ANALYSIS_FAILED", "Failed to analyze meal. Please try again."},
	{service.ErrNoPlan, http.StatusNotFound, "NO_PLAN", "No meal plan available."},
	{service.ErrSlotOutOfRange, http.StatusBadRequest, "SLOT_OUT_OF_RANGE", "Meal slot not found."},
	{service.ErrInvalidDirection, http.StatusBadRequest, "INVALID_DIRECTION", ""},
}

// respondError writes the error envelope for err
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			message := m.message
			if message == "" {
				message = m.target.Error()
			}
			writeError(c, m.status, m.code, message)
			return
		}
	}

	// service.ErrInvalidProfile carries the failing field in its message
	if errors.Is(err, service.ErrInvalidProfile) {
		writeError(c, http.StatusBadRequest, "INVALID_PROFILE", err.Error())
		return
	}

	log.Printf("Unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
	writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred.")
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}
