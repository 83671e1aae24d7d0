package candidates

import "math"

// mmrOrder reorders candidate vectors by maximal marginal relevance against
// the query vector. lambda weighs relevance against diversity: 1 is pure
// relevance, 0 is pure diversity. The returned slice holds indexes into
// vectors, every candidate appears exactly once.
func mmrOrder(queryVec []float32, vectors [][]float32, lambda float64) []int {
	n := len(vectors)
	if n == 0 {
		return nil
	}

	relevance := make([]float64, n)
	for i, v := range vectors {
		relevance[i] = cosineSimilarity(queryVec, v)
	}

	selected := make([]int, 0, n)
	taken := make([]bool, n)

	// Ties go to the lower index so ordering is deterministic.
	for len(selected) < n {
		best, bestScore := -1, math.Inf(-1)
		for i := range vectors {
			if taken[i] {
				continue
			}
			redundancy := 0.0
			for _, s := range selected {
				if sim := cosineSimilarity(vectors[i], vectors[s]); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*relevance[i] - (1-lambda)*redundancy
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		selected = append(selected, best)
		taken[best] = true
	}

	return selected
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
