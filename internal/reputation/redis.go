package reputation

// Redis keys owned by the reputation module.
const (
	// StatsKey is a Redis Hash caching VoterStats JSON per voter identity.
	StatsKey = "reputation:stats"

	// RankingKey is a Redis Sorted Set ranking voters by validation count.
	// Score: total validations. Member: voter identity.
	RankingKey = "reputation:ranking"
)
