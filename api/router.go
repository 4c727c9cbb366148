package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vialocal/contact-trust-backend/internal/platform/database"
	"github.com/vialocal/contact-trust-backend/internal/platform/metrics"
	"github.com/vialocal/contact-trust-backend/internal/reputation"
	"github.com/vialocal/contact-trust-backend/internal/submission"
	"github.com/vialocal/contact-trust-backend/internal/trust"
	"github.com/vialocal/contact-trust-backend/internal/validation"
	"github.com/vialocal/contact-trust-backend/internal/voter"
)

// SetupRoutes registers every API route of the validation engine.
func SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		redisState := "up"
		if !database.IsRedisHealthy() {
			status = http.StatusServiceUnavailable
			redisState = "down"
		}
		c.JSON(status, gin.H{"redis": redisState})
	})
	router.GET("/metrics", metrics.Handler())

	apiRoutes := router.Group("/api")
	{
		businessRoutes := apiRoutes.Group("/businesses")
		{
			businessRoutes.POST("/:id/validations",
				voter.EnsureVoterCookieMiddleware(),
				voter.LoadVoterMiddleware(),
				submission.SubmitValidation)
			businessRoutes.GET("/:id/validations", validation.ListBusinessValidations)
			businessRoutes.GET("/:id/trust", trust.GetBusinessTrust)
		}

		voterRoutes := apiRoutes.Group("/voters")
		{
			voterRoutes.GET("/me/reputation",
				voter.LoadVoterMiddleware(),
				reputation.GetMyReputation)
			voterRoutes.GET("/leaderboard", reputation.GetLeaderboard)
		}
	}
}
