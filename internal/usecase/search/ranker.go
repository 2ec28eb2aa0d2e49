package search

import (
	"sort"

	"github.com/envie-local/envie/internal/domain/search/result"
)

// DefaultResultLimit is the hard cap on ranked results. Smaller limits are
// honoured, larger ones are clamped.
const DefaultResultLimit = 15

// Rank drops results without content relevance, orders the rest by final score
// descending then distance ascending (unknown distances last), and truncates
// to limit. The input slice is not modified.
func Rank(results []result.Scored, limit int) []result.Scored {
	if limit <= 0 || limit > DefaultResultLimit {
		limit = DefaultResultLimit
	}

	ranked := make([]result.Scored, 0, len(results))
	for _, r := range results {
		if r.ThematicScore() > 0 {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := &ranked[i], &ranked[j]
		if a.FinalScore() != b.FinalScore() {
			return a.FinalScore() > b.FinalScore()
		}
		if a.HasDistance() != b.HasDistance() {
			return a.HasDistance()
		}
		return a.DistanceKm() < b.DistanceKm()
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
