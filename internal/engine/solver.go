package engine

import (
	"math"
	"sort"
)

// Pair references one selected teacher/course cell of the cost matrix.
type Pair struct {
	TeacherIndex int
	CourseIndex  int
}

// Solver selects a non-conflicting set of pairings minimizing total cost.
// Implementations must be deterministic for identical matrices.
type Solver interface {
	Solve(matrix CostMatrix) []Pair
}

// SelectSolver returns the exact solver for small instances and the greedy
// heuristic beyond exactMaxSize cells on a side.
func SelectSolver(matrix CostMatrix, exactMaxSize int) Solver {
	size := len(matrix.TeacherIDs)
	if len(matrix.CourseIDs) > size {
		size = len(matrix.CourseIDs)
	}
	if exactMaxSize > 0 && size <= exactMaxSize {
		return HungarianSolver{}
	}
	return GreedySolver{}
}

// GreedySolver picks the cheapest remaining pair until rows or columns run
// out. Not globally optimal, but fast and stable on large instances. Ties
// break by teacher ID, then course ID.
type GreedySolver struct{}

func (GreedySolver) Solve(matrix CostMatrix) []Pair {
	type candidate struct {
		pair Pair
		cost float64
	}
	candidates := make([]candidate, 0, len(matrix.TeacherIDs)*len(matrix.CourseIDs))
	for i := range matrix.TeacherIDs {
		for j := range matrix.CourseIDs {
			if matrix.Allowed(i, j) {
				candidates = append(candidates, candidate{pair: Pair{TeacherIndex: i, CourseIndex: j}, cost: matrix.Costs[i][j]})
			}
		}
	}
	sort.Slice(candidates, func(a, b int) bool {
		if candidates[a].cost != candidates[b].cost {
			return candidates[a].cost < candidates[b].cost
		}
		ti := matrix.TeacherIDs[candidates[a].pair.TeacherIndex]
		tj := matrix.TeacherIDs[candidates[b].pair.TeacherIndex]
		if ti != tj {
			return ti < tj
		}
		return matrix.CourseIDs[candidates[a].pair.CourseIndex] < matrix.CourseIDs[candidates[b].pair.CourseIndex]
	})

	usedTeachers := make(map[int]bool)
	usedCourses := make(map[int]bool)
	var selected []Pair
	for _, c := range candidates {
		if usedTeachers[c.pair.TeacherIndex] || usedCourses[c.pair.CourseIndex] {
			continue
		}
		usedTeachers[c.pair.TeacherIndex] = true
		usedCourses[c.pair.CourseIndex] = true
		selected = append(selected, c.pair)
	}
	sortPairs(matrix, selected)
	return selected
}

// HungarianSolver computes an exact minimum-cost bipartite assignment in
// O(n^3) using the potentials formulation. The matrix is padded square with
// a high (but sub-forbidden) cost so real pairings are always preferred over
// leaving a course unmatched.
type HungarianSolver struct{}

// padCost sits well below ForbiddenCost so forbidden cells lose to padding.
const padCost = ForbiddenCost / 1000

func (HungarianSolver) Solve(matrix CostMatrix) []Pair {
	rows := len(matrix.TeacherIDs)
	cols := len(matrix.CourseIDs)
	if rows == 0 || cols == 0 {
		return nil
	}
	n := rows
	if cols > n {
		n = cols
	}

	cost := make([][]float64, n)
	for i := 0; i < n; i++ {
		cost[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			switch {
			case i >= rows || j >= cols:
				cost[i][j] = padCost
			case !matrix.Allowed(i, j):
				cost[i][j] = ForbiddenCost
			default:
				cost[i][j] = matrix.Costs[i][j]
			}
		}
	}

	rowOf := assignSquare(cost, n)

	var selected []Pair
	for j, i := range rowOf {
		if i < 0 || i >= rows || j >= cols {
			continue
		}
		if !matrix.Allowed(i, j) {
			continue
		}
		selected = append(selected, Pair{TeacherIndex: i, CourseIndex: j})
	}
	sortPairs(matrix, selected)
	return selected
}

// assignSquare runs the Jonker-Volgenant style shortest augmenting path
// assignment over a square cost matrix and returns the matched row for each
// column (-1 when unmatched).
func assignSquare(cost [][]float64, n int) []int {
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
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

	rowOf := make([]int, n)
	for j := range rowOf {
		rowOf[j] = -1
	}
	for j := 1; j <= n; j++ {
		if p[j] > 0 {
			rowOf[j-1] = p[j] - 1
		}
	}
	return rowOf
}

func sortPairs(matrix CostMatrix, pairs []Pair) {
	sort.Slice(pairs, func(a, b int) bool {
		ta := matrix.TeacherIDs[pairs[a].TeacherIndex]
		tb := matrix.TeacherIDs[pairs[b].TeacherIndex]
		if ta != tb {
			return ta < tb
		}
		return matrix.CourseIDs[pairs[a].CourseIndex] < matrix.CourseIDs[pairs[b].CourseIndex]
	})
}
