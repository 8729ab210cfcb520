package similarity

import (
	"math"
	"strings"
)

// Text similarity weights. With an embedding available the semantic term
// takes half the weight; without one the two lexical signals split evenly.
const (
	charWeightSemantic  = 0.25
	tokenWeightSemantic = 0.25
	semanticWeight      = 0.50
	charWeightLexical   = 0.50
	tokenWeightLexical  = 0.50
)

// TextSimilarity scores two normalized texts on a 0-100 scale. It blends a
// character-level alignment ratio with token-level Jaccard similarity, and a
// cosine term over the embeddings when both are present.
func TextSimilarity(text1, text2 string, emb1, emb2 []float32) float64 {
	if text1 == "" || text2 == "" {
		return 0
	}

	text1 = strings.TrimSpace(strings.ToLower(text1))
	text2 = strings.TrimSpace(strings.ToLower(text2))

	charScore := alignmentRatio(text1, text2) * 100
	tokenScore := tokenJaccard(text1, text2) * 100

	if len(emb1) > 0 && len(emb2) > 0 {
		// Rescale cosine from [-1,1] to [0,100].
		semanticScore := (cosine(emb1, emb2) + 1) / 2 * 100
		return charScore*charWeightSemantic + tokenScore*tokenWeightSemantic + semanticScore*semanticWeight
	}
	return charScore*charWeightLexical + tokenScore*tokenWeightLexical
}

// tokenJaccard computes Jaccard similarity over whitespace-split tokens.
func tokenJaccard(text1, text2 string) float64 {
	tokens1 := make(map[string]bool)
	for _, t := range strings.Fields(text1) {
		tokens1[t] = true
	}
	tokens2 := make(map[string]bool)
	for _, t := range strings.Fields(text2) {
		tokens2[t] = true
	}
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0
	}

	intersection := 0
	for t := range tokens1 {
		if tokens2[t] {
			intersection++
		}
	}
	union := len(tokens1) + len(tokens2) - intersection
	return float64(intersection) / float64(union)
}

// alignmentRatio returns 2*M/T where M is the total size of the longest
// matching blocks between the two rune sequences and T the combined length.
// Identical strings score 1, disjoint strings 0.
func alignmentRatio(text1, text2 string) float64 {
	a := []rune(text1)
	b := []rune(text2)
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}

	matched := matchingSize(a, b, 0, len(a), 0, len(b), b2j)
	return 2 * float64(matched) / float64(len(a)+len(b))
}

// matchingSize recursively sums matching block sizes: find the longest match,
// then match what lies to its left and right.
func matchingSize(a, b []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) int {
	i, j, size := longestMatch(a, b, alo, ahi, blo, bhi, b2j)
	if size == 0 {
		return 0
	}
	return size +
		matchingSize(a, b, alo, i, blo, j, b2j) +
		matchingSize(a, b, i+size, ahi, j+size, bhi, b2j)
}

// longestMatch finds the longest matching block within a[alo:ahi] and
// b[blo:bhi]. Of all maximal blocks it returns the one starting earliest in
// a, then earliest in b, so the result is deterministic.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int, b2j map[rune][]int) (besti, bestj, bestsize int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)

	for i := alo; i < ahi; i++ {
		newJ2len := make(map[int]int)
		for _, j := range b2j[a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			newJ2len[j] = k
			if k > bestsize {
				besti, bestj, bestsize = i-k+1, j-k+1, k
			}
		}
		j2len = newJ2len
	}
	return besti, bestj, bestsize
}

// cosine computes cosine similarity between two vectors. Zero-magnitude or
// mismatched vectors score 0.
func cosine(v1, v2 []float32) float64 {
	if len(v1) != len(v2) || len(v1) == 0 {
		return 0
	}
	var dot, norm1, norm2 float64
	for i := range v1 {
		dot += float64(v1[i]) * float64(v2[i])
		norm1 += float64(v1[i]) * float64(v1[i])
		norm2 += float64(v2[i]) * float64(v2[i])
	}
	if norm1 == 0 || norm2 == 0 {
		return 0
	}
	return dot / (math.Sqrt(norm1) * math.Sqrt(norm2))
}
