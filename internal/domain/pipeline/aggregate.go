package pipeline

import (
	"math"
	"strings"
)

// JoinSummaries concatenates per-chunk summaries in chunk order.
func JoinSummaries(parts []string) string {
	return strings.Join(parts, " ")
}

// SelectBest returns the index of the item with the strictly highest score.
// Ties keep the earliest item. NaN scores rank below every real score.
func SelectBest[T any](items []T, score func(T) float64) (int, bool) {
	best := -1
	bestScore := math.Inf(-1)
	for i, item := range items {
		s := score(item)
		if math.IsNaN(s) {
			s = math.Inf(-1)
		}
		if best == -1 || s > bestScore {
			best = i
			bestScore = s
		}
	}
	return best, best >= 0
}
