package trust

import (
	"math"
	"time"

	"github.com/vialocal/contact-trust-backend/internal/validation"
)

// Level is the coarse, sample-size-gated summary of how reliable a
// business's contact info has been found to be by the community.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelVerified Level = "VERIFIED"
)

// Minimum sample sizes and percentages per level. The count gates exist so a
// single lucky vote can never show a business as VERIFIED.
const (
	verifiedMinTotal      = 20
	verifiedMinPercentage = 90
	highMinTotal          = 10
	highMinPercentage     = 75
	mediumMinTotal        = 3
	mediumMinPercentage   = 50
)

// ChannelStats summarizes the validations of one contact channel, or of the
// whole business when pooled.
type ChannelStats struct {
	Total      int   `json:"total"`
	Positive   int   `json:"positive"`
	Negative   int   `json:"negative"`
	Percentage int   `json:"percentage"`
	Level      Level `json:"trust_level"`
}

// BusinessStats is the full derived trust picture of one business. Overall
// pools every channel including GENERAL; ByChannel covers the three concrete
// channels only.
type BusinessStats struct {
	BusinessID string                                     `json:"business_id"`
	Overall    ChannelStats                               `json:"overall"`
	ByChannel  map[validation.ContactChannel]ChannelStats `json:"by_channel"`
	ComputedAt time.Time                                  `json:"computed_at"`
}

// percentage computes round(positive/total*100) with a zero-total guard.
func percentage(positive, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(positive) / float64(total) * 100))
}

// levelFor applies the sample-size-gated thresholds.
func levelFor(total, pct int) Level {
	switch {
	case total >= verifiedMinTotal && pct >= verifiedMinPercentage:
		return LevelVerified
	case total >= highMinTotal && pct >= highMinPercentage:
		return LevelHigh
	case total >= mediumMinTotal && pct >= mediumMinPercentage:
		return LevelMedium
	default:
		return LevelLow
	}
}

// buildChannelStats derives the full summary from raw counts.
func buildChannelStats(positive, negative int) ChannelStats {
	total := positive + negative
	pct := percentage(positive, total)
	return ChannelStats{
		Total:      total,
		Positive:   positive,
		Negative:   negative,
		Percentage: pct,
		Level:      levelFor(total, pct),
	}
}
