package matching

import (
	"sort"

	"github.com/google/uuid"
)

// MinRelevanceScore is the fixed threshold below which a nearest-neighbor hit
// is considered noise rather than a genuine candidate.
const MinRelevanceScore = 0.70

type Match struct {
	RoleID uuid.UUID
	Score  float64
}

// Rank filters out matches below threshold, orders the rest by descending
// score, and truncates to limit. The sort is stable: equal scores keep the
// search service's return order.
func Rank(matches []Match, threshold float64, limit int) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if m.RoleID == uuid.Nil {
			continue
		}
		if m.Score < threshold {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
