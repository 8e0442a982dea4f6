package handlers

import (
	"net/http"
	"strings"

	"cravesmart-backend/service"

	"github.com/gin-gonic/gin"
)

const sessionContextKey = "session"

// RequireSession resolves the bearer token to a live session
func RequireSession(tokens *service.TokenIssuer, sessions *service.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header required")
			return
		}

		sessionID, accountID, err := tokens.Parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			abortError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired session")
			return
		}

		session, err := sessions.Get(sessionID)
		if err != nil || session.AccountID != accountID {
			abortError(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Invalid or expired session")
			return
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// currentSession returns the session set by RequireSession
func currentSession(c *gin.Context) *service.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	session, _ := v.(*service.Session)
	return session
}
