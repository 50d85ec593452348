package chromem

import (
	"math"

	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

type candidate struct {
	hit    driven.VectorHit
	vector []float32 // unit length
}

// selectMMR greedily picks k candidates maximising
//
//	lambda*sim(query, c) - (1-lambda)*max(sim(c, selected))
//
// The first pick is always the most similar candidate. Candidates arrive
// sorted by descending similarity; ties keep that order.
func selectMMR(candidates []candidate, k int, lambda float64) []driven.VectorHit {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	k = min(k, len(candidates))

	selected := make([]int, 0, k)
	used := make([]bool, len(candidates))
	// redundancy[i] is the max similarity of candidate i to any selected one.
	redundancy := make([]float64, len(candidates))

	for len(selected) < k {
		best, bestScore := -1, math.Inf(-1)
		for i, c := range candidates {
			if used[i] {
				continue
			}
			score := c.hit.Similarity
			if len(selected) > 0 {
				score = lambda*c.hit.Similarity - (1-lambda)*redundancy[i]
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		used[best] = true
		selected = append(selected, best)

		for i, c := range candidates {
			if used[i] {
				continue
			}
			if s := dot(c.vector, candidates[best].vector); s > redundancy[i] || len(selected) == 1 {
				redundancy[i] = s
			}
		}
	}

	hits := make([]driven.VectorHit, len(selected))
	for i, idx := range selected {
		hits[i] = candidates[idx].hit
	}
	return hits
}

// dot is cosine similarity for unit vectors. Mismatched lengths compare
// as unrelated.
func dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var s float64
	for i := range a {
		s += float64(a[i]) * float64(b[i])
	}
	return s
}
