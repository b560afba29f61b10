// Package assign solves the square linear assignment problem: given an n x n
// cost matrix, pair every row with a distinct column so that the summed cost
// is as small as possible.
//
// Hungarian is exact and runs in O(n^3). Greedy is a nearest-pair heuristic
// for large n.
package assign

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrCost is returned for cost matrices that are not square or that contain
// NaN or infinite entries.
var ErrCost = errors.New("assign: invalid cost matrix")

// Hungarian returns the minimum-cost assignment of rows to columns as a
// permutation: perm[i] is the column assigned to row i.
//
// This is the shortest augmenting path formulation with row and column
// potentials, adding one row at a time.
func Hungarian(cost [][]float64) ([]int, error) {
	n := len(cost)
	if err := check(cost); err != nil {
		return nil, err
	}

	// All of the following are 1-indexed. Column 0 is a sentinel that holds
	// the row currently being added.
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)
	minv := make([]float64, n+1)
	used := make([]bool, n+1)
	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = math.Inf(1)
			used[j] = false
		}
		for {
			used[j0] = true
			i0, delta, j1 := p[j0], math.Inf(1), 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j], way[j] = cur, j0
				}
				if minv[j] < delta {
					delta, j1 = minv[j], j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	perm := make([]int, n)
	for j := 1; j <= n; j++ {
		perm[p[j]-1] = j - 1
	}
	return perm, nil
}

// Greedy returns an assignment built by repeatedly taking the cheapest
// remaining (row, column) pair. It is not optimal, but costs
// O(n^2 log n) instead of O(n^3).
func Greedy(cost [][]float64) ([]int, error) {
	n := len(cost)
	if err := check(cost); err != nil {
		return nil, err
	}

	type pair struct {
		row, col int
		cost     float64
	}
	pairs := make([]pair, 0, n*n)
	for i := range cost {
		for j, c := range cost[i] {
			pairs = append(pairs, pair{i, j, c})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		return pairs[a].cost < pairs[b].cost
	})

	perm := make([]int, n)
	rowDone := make([]bool, n)
	colDone := make([]bool, n)
	left := n
	for _, pr := range pairs {
		if left == 0 {
			break
		}
		if rowDone[pr.row] || colDone[pr.col] {
			continue
		}
		perm[pr.row] = pr.col
		rowDone[pr.row], colDone[pr.col] = true, true
		left--
	}
	return perm, nil
}

// Cost returns the summed cost of an assignment.
func Cost(cost [][]float64, perm []int) float64 {
	var sum float64
	for i, j := range perm {
		sum += cost[i][j]
	}
	return sum
}

func check(cost [][]float64) error {
	for i, row := range cost {
		if len(row) != len(cost) {
			return fmt.Errorf("%w: row %d has %d columns, but there are "+
				"%d rows", ErrCost, i, len(row), len(cost))
		}
		for j, c := range row {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return fmt.Errorf("%w: entry (%d, %d) is %f", ErrCost, i, j, c)
			}
		}
	}
	return nil
}
