package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gdugdh24/roomly-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/roomly-backend/internal/delivery/http/middleware"
)

type Router struct {
	authHandler      *handler.AuthHandler
	profileHandler   *handler.ProfileHandler
	discoveryHandler *handler.DiscoveryHandler
	matchHandler     *handler.MatchHandler
	authMiddleware   *middleware.AuthMiddleware
	logger           *zap.Logger
	devAuth          bool
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	discoveryHandler *handler.DiscoveryHandler,
	matchHandler *handler.MatchHandler,
	authMiddleware *middleware.AuthMiddleware,
	logger *zap.Logger,
	devAuth bool,
) *Router {
	return &Router{
		authHandler:      authHandler,
		profileHandler:   profileHandler,
		discoveryHandler: discoveryHandler,
		matchHandler:     matchHandler,
		authMiddleware:   authMiddleware,
		logger:           logger,
		devAuth:          devAuth,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(r.logger))

	// Health check (supports both GET and HEAD)
	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			if r.devAuth {
				auth.POST("/token", r.authHandler.IssueToken)
			}
			auth.GET("/me", r.authMiddleware.RequireAuth(), r.authHandler.Me)
		}

		// Protected routes
		protected := v1.Group("")
		protected.Use(r.authMiddleware.RequireAuth())
		{
			profile := protected.Group("/profile")
			{
				profile.GET("/me", r.profileHandler.GetMyProfile)
				profile.PUT("/me", r.profileHandler.UpdateMyProfile)
				profile.POST("/complete-onboarding", r.profileHandler.CompleteOnboarding)
				profile.GET("/:user_id", r.profileHandler.GetProfileByUserID)
			}

			discovery := protected.Group("/discovery")
			{
				discovery.GET("", r.discoveryHandler.GetDiscovery)
				discovery.DELETE("", r.discoveryHandler.Leave)
				discovery.POST("/swipe", r.discoveryHandler.Swipe)
				discovery.POST("/load-more", r.discoveryHandler.LoadMore)
				discovery.POST("/reload", r.discoveryHandler.Reload)
				discovery.PATCH("/filters", r.discoveryHandler.UpdateFilters)
				discovery.DELETE("/filters", r.discoveryHandler.ResetFilters)
				discovery.PUT("/search", r.discoveryHandler.UpdateSearch)
			}

			matches := protected.Group("/matches")
			{
				matches.GET("", r.matchHandler.ListMatches)
				matches.POST("/:id/unmatch", r.matchHandler.Unmatch)
				matches.GET("/:id/icebreakers", r.matchHandler.Icebreakers)
				matches.POST("/:id/messages/touch", r.matchHandler.TouchLastMessage)
			}
		}
	}

	return router
}
