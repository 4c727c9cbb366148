package trust

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetBusinessTrust serves the derived trust picture for one business.
func GetBusinessTrust(c *gin.Context) {
	businessID := c.Param("id")
	if businessID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing business id"})
		return
	}

	stats, err := moduleService.GetBusinessStats(c.Request.Context(), businessID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to compute trust stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
