package reputation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPointsForIsExactlyTenPerValidation(t *testing.T) {
	for _, total := range []int{0, 1, 7, 49, 50, 99, 100, 1234} {
		require.Equal(t, total*10, PointsFor(total), "total=%d", total)
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		total int
		want  Level
	}{
		{0, LevelNovato},
		{1, LevelNovato},
		{49, LevelNovato},
		{50, LevelExperto},
		{99, LevelExperto},
		{100, LevelSuperValidador},
		{500, LevelSuperValidador},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, LevelFor(tt.total), "total=%d", tt.total)
	}
}

func TestLevelNeverRegresses(t *testing.T) {
	rank := map[Level]int{LevelNovato: 0, LevelExperto: 1, LevelSuperValidador: 2}

	previous := LevelFor(0)
	for total := 1; total <= 300; total++ {
		current := LevelFor(total)
		require.GreaterOrEqual(t, rank[current], rank[previous],
			"level regressed at total=%d", total)
		previous = current
	}
}

func TestBadgesForIsAdditive(t *testing.T) {
	require.Empty(t, BadgesFor(0))
	require.Equal(t, []string{"primera_validacion"}, BadgesFor(1))

	// Every badge earned at a lower total is still present at higher ones.
	previous := BadgesFor(0)
	for total := 1; total <= 300; total++ {
		current := BadgesFor(total)
		require.GreaterOrEqual(t, len(current), len(previous), "total=%d", total)
		require.Equal(t, previous, current[:len(previous)], "badge revoked at total=%d", total)
		previous = current
	}

	require.Equal(t,
		[]string{"primera_validacion", "validador_activo", "ojo_critico", "experto_local", "super_validador"},
		BadgesFor(100))
}

func TestStatsFor(t *testing.T) {
	stats := StatsFor("voter-1", 50)

	require.Equal(t, "voter-1", stats.VoterIdentity)
	require.Equal(t, 50, stats.TotalValidations)
	require.Equal(t, 500, stats.Points)
	require.Equal(t, LevelExperto, stats.Level)
	require.Contains(t, stats.Badges, "experto_local")
}
