// Package metrics exposes the engine's prometheus instrumentation.
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SubmissionsAccepted counts validations that reached the store.
	SubmissionsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "validation_submissions_accepted_total",
		Help: "Validations accepted and persisted.",
	})

	// SubmissionsCooldown counts submissions rejected by an active cooldown.
	// High values are normal; this is the anti-abuse mechanism working.
	SubmissionsCooldown = promauto.NewCounter(prometheus.CounterOpts{
		Name: "validation_submissions_cooldown_total",
		Help: "Validations rejected because the voter's cooldown was active.",
	})

	// SubmissionsInvalid counts malformed submissions.
	SubmissionsInvalid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "validation_submissions_invalid_total",
		Help: "Validations rejected at the input boundary.",
	})

	// SubmissionsFailed counts submissions lost to storage errors.
	SubmissionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "validation_submissions_failed_total",
		Help: "Validations that failed due to storage errors.",
	})

	// TrustRecomputations counts full recomputations of a business's stats.
	TrustRecomputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trust_stats_recomputations_total",
		Help: "Business trust stats recomputed from the validation store.",
	})
)

// Handler returns the gin handler serving the prometheus text exposition.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
