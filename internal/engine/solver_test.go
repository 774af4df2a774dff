package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matrixFromCosts(teacherIDs, courseIDs []string, costs [][]float64) CostMatrix {
	return CostMatrix{TeacherIDs: teacherIDs, CourseIDs: courseIDs, Costs: costs}
}

func TestGreedySolverPicksCheapestFirst(t *testing.T) {
	matrix := matrixFromCosts(
		[]string{"t-1", "t-2"},
		[]string{"c-1", "c-2"},
		[][]float64{
			{5, 1},
			{2, 8},
		},
	)
	pairs := GreedySolver{}.Solve(matrix)
	require.Len(t, pairs, 2)
	assert.Equal(t, Pair{TeacherIndex: 0, CourseIndex: 1}, pairs[0])
	assert.Equal(t, Pair{TeacherIndex: 1, CourseIndex: 0}, pairs[1])
}

func TestGreedySolverSkipsForbiddenPairs(t *testing.T) {
	matrix := matrixFromCosts(
		[]string{"t-1", "t-2"},
		[]string{"c-1"},
		[][]float64{
			{ForbiddenCost},
			{3},
		},
	)
	pairs := GreedySolver{}.Solve(matrix)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].TeacherIndex)
}

func TestGreedySolverDeterministicTieBreak(t *testing.T) {
	matrix := matrixFromCosts(
		[]string{"t-b", "t-a"},
		[]string{"c-1"},
		[][]float64{
			{2},
			{2},
		},
	)
	for i := 0; i < 5; i++ {
		pairs := GreedySolver{}.Solve(matrix)
		require.Len(t, pairs, 1)
		assert.Equal(t, "t-a", matrix.TeacherIDs[pairs[0].TeacherIndex])
	}
}

func TestHungarianSolverFindsGlobalOptimum(t *testing.T) {
	// Greedy would grab (t-1,c-1)=1 and be forced into (t-2,c-2)=100.
	matrix := matrixFromCosts(
		[]string{"t-1", "t-2"},
		[]string{"c-1", "c-2"},
		[][]float64{
			{1, 2},
			{2, 100},
		},
	)
	pairs := HungarianSolver{}.Solve(matrix)
	require.Len(t, pairs, 2)

	total := 0.0
	for _, pair := range pairs {
		total += matrix.Costs[pair.TeacherIndex][pair.CourseIndex]
	}
	assert.Equal(t, 4.0, total)
}

func TestHungarianSolverNeverSelectsForbidden(t *testing.T) {
	matrix := matrixFromCosts(
		[]string{"t-1", "t-2"},
		[]string{"c-1", "c-2"},
		[][]float64{
			{0, 0},
			{ForbiddenCost, ForbiddenCost},
		},
	)
	pairs := HungarianSolver{}.Solve(matrix)
	require.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].TeacherIndex)
}

func TestHungarianSolverRectangularMatrix(t *testing.T) {
	// More courses than teachers: one course must stay unmatched.
	matrix := matrixFromCosts(
		[]string{"t-1"},
		[]string{"c-1", "c-2", "c-3"},
		[][]float64{
			{7, 3, 5},
		},
	)
	pairs := HungarianSolver{}.Solve(matrix)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].CourseIndex, "cheapest course is kept")
}

func TestHungarianSolverHandlesNegativeCosts(t *testing.T) {
	matrix := matrixFromCosts(
		[]string{"t-1", "t-2"},
		[]string{"c-1", "c-2"},
		[][]float64{
			{-90, -10},
			{-80, -5},
		},
	)
	pairs := HungarianSolver{}.Solve(matrix)
	require.Len(t, pairs, 2)
	total := 0.0
	for _, pair := range pairs {
		total += matrix.Costs[pair.TeacherIndex][pair.CourseIndex]
	}
	assert.Equal(t, -95.0, total, "t-1 keeps the big bonus, t-2 takes c-1")
}

func TestSelectSolver(t *testing.T) {
	small := matrixFromCosts([]string{"t-1"}, []string{"c-1"}, [][]float64{{0}})
	assert.IsType(t, HungarianSolver{}, SelectSolver(small, 8))

	wide := matrixFromCosts(
		[]string{"t-1"},
		[]string{"c-1", "c-2", "c-3", "c-4", "c-5", "c-6", "c-7", "c-8", "c-9"},
		[][]float64{{0, 0, 0, 0, 0, 0, 0, 0, 0}},
	)
	assert.IsType(t, GreedySolver{}, SelectSolver(wide, 8))

	assert.IsType(t, GreedySolver{}, SelectSolver(small, 0), "zero disables exact solving")
}
