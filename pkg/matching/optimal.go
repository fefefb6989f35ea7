package matching

import (
	"fmt"
	"math"
	"sort"
)

// infeasibleCost prices infeasible cells out of any solution that has a
// feasible alternative while keeping the cost matrix finite, so the solver
// can still terminate when no feasible assignment exists.
const infeasibleCost = 1.0e6

// runOptimalAssignment maximizes total score with the Hungarian method on
// cost = 1 - score. Per-entity capacity is modeled by expanding each entity
// into capacity slots through owner index tables, and the matrix is padded
// square with zero-cost dummy slots so surplus capacity drains without
// distorting real assignments. Assignments that land on infeasible cells
// are discarded afterwards; those entities simply stay unmatched.
func runOptimalAssignment(in algorithmInput) ([]pairing, error) {
	capacity := in.criteria.MaxMatches
	rows := in.matrix.Rows() * capacity
	cols := in.matrix.Cols() * capacity

	rowOwner := make([]int, 0, rows)
	for a := 0; a < in.matrix.Rows(); a++ {
		for s := 0; s < capacity; s++ {
			rowOwner = append(rowOwner, a)
		}
	}
	colOwner := make([]int, 0, cols)
	for b := 0; b < in.matrix.Cols(); b++ {
		for s := 0; s < capacity; s++ {
			colOwner = append(colOwner, b)
		}
	}

	n := max(rows, cols)
	cost := func(row, col int) float64 {
		if row >= rows || col >= cols {
			return 0 // dummy padding
		}
		a, b := rowOwner[row], colOwner[col]
		if !in.matrix.Feasible(a, b) {
			return infeasibleCost
		}
		return 1.0 - in.matrix.Score(a, b)
	}

	assigned := solveAssignment(n, cost)

	seen := make([]bool, n)
	for _, col := range assigned {
		if col < 0 || col >= n || seen[col] {
			return nil, fmt.Errorf("%w: assignment is not a permutation", ErrInternalAlgorithm)
		}
		seen[col] = true
	}

	taken := make(map[pairing]struct{})
	pairs := make([]pairing, 0, min(rows, cols))
	for row, col := range assigned {
		if row >= rows || col >= cols {
			continue
		}
		a, b := rowOwner[row], colOwner[col]
		if !in.matrix.Feasible(a, b) {
			continue
		}
		p := pairing{a: a, b: b}
		if _, dup := taken[p]; dup {
			continue
		}
		taken[p] = struct{}{}
		pairs = append(pairs, p)
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})

	return pairs, nil
}

// solveAssignment computes a minimum-cost perfect matching on an n×n cost
// matrix with the shortest-augmenting-path Hungarian method in O(n³). The
// returned slice maps each row to its assigned column. Index 0 in the
// internal arrays is a virtual column used to seed each augmentation.
func solveAssignment(n int, cost func(row, col int) float64) []int {
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	rowAt := make([]int, n+1) // column -> assigned row, 0 when free
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		rowAt[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}

		for {
			used[j0] = true
			i0 := rowAt[j0]
			delta := math.Inf(1)
			j1 := 0

			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				reduced := cost(i0-1, j-1) - u[i0] - v[j]
				if reduced < minv[j] {
					minv[j] = reduced
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}

			for j := 0; j <= n; j++ {
				if used[j] {
					u[rowAt[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}

			j0 = j1
			if rowAt[j0] == 0 {
				break
			}
		}

		// Walk the augmenting path back, flipping assignments
		for j0 != 0 {
			j1 := way[j0]
			rowAt[j0] = rowAt[j1]
			j0 = j1
		}
	}

	assigned := make([]int, n)
	for i := range assigned {
		assigned[i] = -1
	}
	for j := 1; j <= n; j++ {
		if rowAt[j] != 0 {
			assigned[rowAt[j]-1] = j - 1
		}
	}
	return assigned
}
