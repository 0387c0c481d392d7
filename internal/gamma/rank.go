package gamma

import (
	"math"
	"sort"
)

// Score is the importance of a strike: |net gamma| weighted by traded volume.
// Overflow saturates at math.MaxFloat64.
func Score(s StrikeAggregate) float64 {
	score := math.Abs(s.NetGamma) * float64(s.VolumeSum)
	if math.IsInf(score, 1) {
		return math.MaxFloat64
	}
	return score
}

// Rank returns at most k strikes ordered by score descending, strike ascending
// on ties. The input slice is not modified.
func Rank(strikes []StrikeAggregate, k int) []RankedStrike {
	if k <= 0 || len(strikes) == 0 {
		return []RankedStrike{}
	}

	ranked := make([]RankedStrike, len(strikes))
	for i, s := range strikes {
		ranked[i] = RankedStrike{StrikeAggregate: s, Score: Score(s)}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Strike < ranked[j].Strike
	})

	if k < len(ranked) {
		ranked = ranked[:k]
	}
	return ranked
}
