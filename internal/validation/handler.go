package validation

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultListLimit = 20
const maxListLimit = 100

// ListBusinessValidations returns the newest validation records for a
// business, optionally filtered to one channel. This feeds the community
// feedback section of the business page.
func ListBusinessValidations(c *gin.Context) {
	businessID := c.Param("id")
	if businessID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing business id"})
		return
	}

	var channel *ContactChannel
	if raw := c.Query("channel"); raw != "" {
		parsed, ok := ParseChannel(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown channel: " + raw})
			return
		}
		channel = &parsed
	}

	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= maxListLimit {
			limit = n
		}
	}

	records, err := moduleStore.RecentByBusiness(c.Request.Context(), businessID, channel, limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to load validations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"validations": records})
}
