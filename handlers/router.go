package handlers

import (
	"net/http"

	"cravesmart-backend/repository"
	"cravesmart-backend/service"

	"github.com/gin-gonic/gin"
)

// RouterDeps holds everything the HTTP layer needs
type RouterDeps struct {
	AccountService  *service.AccountService
	AnalysisService *service.AnalysisService
	Themes          *repository.ThemeRepository
	Sessions        *service.SessionStore
	Tokens          *service.TokenIssuer
	MaxImageSize    int64
}

// NewRouter builds the gin engine with every route registered
func NewRouter(deps RouterDeps) *gin.Engine {
	authHandler := NewAuthHandler(deps.AccountService, deps.Sessions, deps.Tokens)
	profileHandler := NewProfileHandler(deps.AccountService)
	analysisHandler := NewAnalysisHandler(deps.AnalysisService, deps.AccountService, deps.MaxImageSize)
	themeHandler := NewThemeHandler(deps.Themes)

	r := gin.Default()
	if deps.MaxImageSize > 0 {
		r.MaxMultipartMemory = deps.MaxImageSize
	}

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		// Public endpoints
		api.POST("/auth/signup", authHandler.Signup)
		api.POST("/auth/login", authHandler.Login)
		api.GET("/profiles/defaults", profileHandler.Defaults)
		api.GET("/theme", themeHandler.GetTheme)

		authed := api.Group("")
		authed.Use(RequireSession(deps.Tokens, deps.Sessions))
		{
			authed.POST("/auth/logout", authHandler.Logout)
			authed.GET("/auth/me", authHandler.Me)
			authed.PUT("/theme", themeHandler.SetTheme)

			authed.GET("/profiles", profileHandler.ListProfiles)
			authed.POST("/profiles", profileHandler.CreateProfile)
			authed.GET("/profiles/:id", profileHandler.GetProfile)
			authed.PUT("/profiles/:id", profileHandler.UpdateProfile)
			authed.DELETE("/profiles/:id", profileHandler.DeleteProfile)

			authed.POST("/analyze", analysisHandler.Analyze)
			authed.GET("/analysis", analysisHandler.GetAnalysis)
			authed.DELETE("/analysis", analysisHandler.ResetAnalysis)
			authed.POST("/analysis/slots/:index/cycle", analysisHandler.CycleOption)
		}
	}

	return r
}
