package handlers

import (
	"net/http"

	"cravesmart-backend/models"
	"cravesmart-backend/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles HTTP requests for signup, login and logout
type AuthHandler struct {
	accountService *service.AccountService
	sessions       *service.SessionStore
	tokens         *service.TokenIssuer
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(accountService *service.AccountService, sessions *service.SessionStore, tokens *service.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		sessions:       sessions,
		tokens:         tokens,
	}
}

// SignupRequest represents the request body for creating an account
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Signup handles POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	account, err := h.accountService.Signup(c.Request.Context(), service.SignupRequest{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.startSession(c, http.StatusCreated, account)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	account, err := h.accountService.Login(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.startSession(c, http.StatusOK, account)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session := currentSession(c)
	h.sessions.End(session.ID)
	respondOK(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	session := currentSession(c)
	account, err := h.accountService.GetAccount(c.Request.Context(), session.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, account)
}

func (h *AuthHandler) startSession(c *gin.Context, status int, account *models.Account) {
	session := h.sessions.Start(account.ID)
	token, err := h.tokens.Issue(session)
	if err != nil {
		h.sessions.End(session.ID)
		respondError(c, err)
		return
	}

	respondOK(c, status, gin.H{
		"token":      token,
		"expires_at": session.ExpiresAt,
		"account":    account,
	})
}
