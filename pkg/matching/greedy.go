package matching

import "sort"

// runGreedy takes feasible pairs best-score-first while both entities still
// have capacity. Output stays in selection order, so the strongest match
// leads the result.
func runGreedy(in algorithmInput) ([]pairing, error) {
	type cell struct {
		a, b  int
		score float64
	}

	cells := make([]cell, 0, in.matrix.Rows()*in.matrix.Cols())
	for a := 0; a < in.matrix.Rows(); a++ {
		for b := 0; b < in.matrix.Cols(); b++ {
			if in.matrix.Feasible(a, b) {
				cells = append(cells, cell{a: a, b: b, score: in.matrix.Score(a, b)})
			}
		}
	}

	sort.Slice(cells, func(i, j int) bool {
		return pairBefore(cells[i].score, cells[i].a, cells[i].b, cells[j].score, cells[j].a, cells[j].b)
	})

	capacity := in.criteria.MaxMatches
	countA := make([]int, in.matrix.Rows())
	countB := make([]int, in.matrix.Cols())

	pairs := make([]pairing, 0, min(in.matrix.Rows(), in.matrix.Cols()))
	for _, c := range cells {
		if countA[c.a] >= capacity || countB[c.b] >= capacity {
			continue
		}
		countA[c.a]++
		countB[c.b]++
		pairs = append(pairs, pairing{a: c.a, b: c.b})
	}

	return pairs, nil
}
