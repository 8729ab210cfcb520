package similarity

import (
	"strings"

	"originstamp/types"
)

// Composite score weights.
const (
	textWeight   = 0.40
	entityWeight = 0.25
	mediaWeight  = 0.20
	urlWeight    = 0.15
)

// newInfoEntityMargin is how many additional entities a later report must
// carry before the growth alone counts as new information.
const newInfoEntityMargin = 2

// newInfoWordGrowth is the normalized word-count growth factor above which a
// later report counts as adding information.
const newInfoWordGrowth = 1.3

// EntityOverlap computes Jaccard similarity over case-folded entity value
// sets, on a 0-100 scale.
func EntityOverlap(entities1, entities2 []types.Entity) float64 {
	if len(entities1) == 0 || len(entities2) == 0 {
		return 0
	}

	values1 := make(map[string]bool, len(entities1))
	for _, e := range entities1 {
		values1[strings.ToLower(e.Value)] = true
	}
	values2 := make(map[string]bool, len(entities2))
	for _, e := range entities2 {
		values2[strings.ToLower(e.Value)] = true
	}

	intersection := 0
	for v := range values1 {
		if values2[v] {
			intersection++
		}
	}
	union := len(values1) + len(values2) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union) * 100
}

// MediaMatch returns 100 when any content hash is shared, else 0. No partial
// credit for near-matches.
func MediaMatch(hashes1, hashes2 []string) float64 {
	return setsIntersectScore(hashes1, hashes2)
}

// URLMatch returns 100 when the canonical URL sets intersect, else 0.
func URLMatch(urls1, urls2 []string) float64 {
	return setsIntersectScore(urls1, urls2)
}

func setsIntersectScore(set1, set2 []string) float64 {
	if len(set1) == 0 || len(set2) == 0 {
		return 0
	}
	seen := make(map[string]bool, len(set1))
	for _, v := range set1 {
		seen[v] = true
	}
	for _, v := range set2 {
		if seen[v] {
			return 100
		}
	}
	return 0
}

// Score computes the weighted multi-factor similarity between two reports on
// a 0-100 scale.
func Score(a, b *types.Report) float64 {
	textSim := TextSimilarity(a.TextNormalized, b.TextNormalized, a.Embedding, b.Embedding)
	entitySim := EntityOverlap(a.Entities, b.Entities)
	mediaSim := MediaMatch(a.MediaHashes, b.MediaHashes)
	urlSim := URLMatch(a.CanonicalURLs, b.CanonicalURLs)

	return textSim*textWeight + entitySim*entityWeight + mediaSim*mediaWeight + urlSim*urlWeight
}

// BestCandidate scores the report against every candidate and returns the
// highest-scoring one. Exact ties resolve to the earliest candidate
// timestamp, then the smaller report id, so the choice never depends on
// candidate arrival order.
func BestCandidate(report *types.Report, candidates []*types.Report) (*types.Report, float64) {
	var best *types.Report
	bestScore := 0.0

	for _, cand := range candidates {
		score := Score(report, cand)
		switch {
		case best == nil || score > bestScore:
			best, bestScore = cand, score
		case score == bestScore:
			if cand.Timestamp.Before(best.Timestamp) ||
				(cand.Timestamp.Equal(best.Timestamp) && cand.ID < best.ID) {
				best = cand
			}
		}
	}
	return best, bestScore
}

// DetectNewInformation reports whether the newer report adds facts the older
// one lacks: noticeably more entities, more media, a canonical URL the older
// report did not carry, or a much longer normalized text.
func DetectNewInformation(newer, older *types.Report) bool {
	if len(newer.Entities) > len(older.Entities)+newInfoEntityMargin {
		return true
	}

	if len(newer.MediaHashes) > len(older.MediaHashes) {
		return true
	}

	olderURLs := make(map[string]bool, len(older.CanonicalURLs))
	for _, u := range older.CanonicalURLs {
		olderURLs[u] = true
	}
	for _, u := range newer.CanonicalURLs {
		if !olderURLs[u] {
			return true
		}
	}

	oldWords := len(strings.Fields(older.TextNormalized))
	newWords := len(strings.Fields(newer.TextNormalized))
	if oldWords > 0 && float64(newWords) > float64(oldWords)*newInfoWordGrowth {
		return true
	}

	return false
}
