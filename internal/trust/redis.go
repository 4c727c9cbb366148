package trust

// Redis keys owned by the trust module.
const (
	// StatsKey is a Redis Hash caching computed BusinessStats.
	// Field: business id. Value: BusinessStats JSON.
	StatsKey = "trust:stats"

	// DirtySetKey is a Redis Set of business ids whose cached stats are
	// stale. Entries are added on every accepted submission and removed
	// when the stats are recomputed, either lazily on read or by the
	// background reconciler.
	DirtySetKey = "trust:dirty"
)
