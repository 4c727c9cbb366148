package reputation

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vialocal/contact-trust-backend/internal/voter"
)

const defaultLeaderboardSize = 10
const maxLeaderboardSize = 100

// GetMyReputation serves the calling voter's points, level and badges.
func GetMyReputation(c *gin.Context) {
	identity := voter.IdentityFromContext(c)
	if identity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing voter identity"})
		return
	}

	stats, err := moduleService.ComputeVoterStats(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to compute reputation"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetLeaderboard serves the top validators.
func GetLeaderboard(c *gin.Context) {
	limit := defaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= maxLeaderboardSize {
			limit = n
		}
	}

	entries, err := moduleService.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to load leaderboard"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
