package submission

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/internal/platform/metrics"
	"github.com/vialocal/contact-trust-backend/internal/validation"
	"github.com/vialocal/contact-trust-backend/internal/voter"
)

// RequestBody is the JSON shape of a submission from the directory frontend.
type RequestBody struct {
	Channel string `json:"channel" binding:"required"`
	Verdict *bool  `json:"verdict" binding:"required"`
	Comment string `json:"comment"`
}

// SubmitValidation handles POST /api/businesses/:id/validations.
func SubmitValidation(c *gin.Context) {
	var body RequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		metrics.SubmissionsInvalid.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation", "detail": err.Error()})
		return
	}

	result, err := moduleService.Submit(c.Request.Context(), Input{
		BusinessID:    c.Param("id"),
		Channel:       body.Channel,
		Verdict:       *body.Verdict,
		Comment:       body.Comment,
		VoterIdentity: voter.IdentityFromContext(c),
	})
	if err != nil {
		writeSubmissionError(c, err)
		return
	}

	metrics.SubmissionsAccepted.Inc()
	c.JSON(http.StatusOK, result)
}

// writeSubmissionError maps the orchestrator's error taxonomy onto HTTP.
func writeSubmissionError(c *gin.Context, err error) {
	var validationErr *validation.ValidationError
	var cooldownErr *validation.CooldownActiveError
	var storageErr *validation.StorageError

	switch {
	case errors.As(err, &validationErr):
		metrics.SubmissionsInvalid.Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation",
			"detail": validationErr.Reason,
		})
	case errors.As(err, &cooldownErr):
		// Expected outcome, not a defect; surfaced to the user, not logged.
		metrics.SubmissionsCooldown.Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":        "cooldown",
			"retryAfterMs": cooldownErr.RetryAfter.Milliseconds(),
		})
	case errors.As(err, &storageErr):
		metrics.SubmissionsFailed.Inc()
		zap.S().Errorw("submission storage failure", "op", storageErr.Op, "error", storageErr.Err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage"})
	default:
		metrics.SubmissionsFailed.Inc()
		zap.S().Errorw("unexpected submission failure", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
