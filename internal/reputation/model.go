package reputation

// Level is the validator's gamification tier. Levels reward participation
// volume, independent of validation correctness, and only ever advance:
// records are never deleted, so a voter's total never decreases.
type Level string

const (
	LevelNovato         Level = "NOVATO"
	LevelExperto        Level = "EXPERTO"
	LevelSuperValidador Level = "SUPER_VALIDADOR"
)

// PointsPerValidation is the flat reward for submitting a validation,
// regardless of verdict.
const PointsPerValidation = 10

const (
	expertoMinValidations        = 50
	superValidadorMinValidations = 100
)

// LevelFor maps a validation total to its level.
func LevelFor(totalValidations int) Level {
	switch {
	case totalValidations >= superValidadorMinValidations:
		return LevelSuperValidador
	case totalValidations >= expertoMinValidations:
		return LevelExperto
	default:
		return LevelNovato
	}
}

// PointsFor converts a validation total into points.
func PointsFor(totalValidations int) int {
	return totalValidations * PointsPerValidation
}

// BadgeRule awards a badge once a voter reaches a validation count. Rules
// are additive: a badge once earned is never revoked, which holds trivially
// because totals are monotonic.
type BadgeRule struct {
	ID        string
	Threshold int
}

// badgeRules is ordered by threshold; BadgesFor relies on that order.
var badgeRules = []BadgeRule{
	{ID: "primera_validacion", Threshold: 1},
	{ID: "validador_activo", Threshold: 10},
	{ID: "ojo_critico", Threshold: 25},
	{ID: "experto_local", Threshold: 50},
	{ID: "super_validador", Threshold: 100},
	{ID: "leyenda_del_directorio", Threshold: 250},
}

// BadgesFor returns the badges earned at a given validation total.
func BadgesFor(totalValidations int) []string {
	badges := make([]string, 0, len(badgeRules))
	for _, rule := range badgeRules {
		if totalValidations < rule.Threshold {
			break
		}
		badges = append(badges, rule.ID)
	}
	return badges
}

// VoterStats is the full derived reputation of one voter.
type VoterStats struct {
	VoterIdentity    string   `json:"voter_identity"`
	TotalValidations int      `json:"total_validations"`
	Points           int      `json:"points"`
	Level            Level    `json:"level"`
	Badges           []string `json:"badges"`
}

// StatsFor derives the complete VoterStats from a validation total. Pure:
// everything about a voter's reputation is a function of their record count.
func StatsFor(voterIdentity string, totalValidations int) VoterStats {
	return VoterStats{
		VoterIdentity:    voterIdentity,
		TotalValidations: totalValidations,
		Points:           PointsFor(totalValidations),
		Level:            LevelFor(totalValidations),
		Badges:           BadgesFor(totalValidations),
	}
}
