package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/graft/pkg/models"
)

func TestSolveAssignment(t *testing.T) {
	t.Run("picks the cheapest permutation", func(t *testing.T) {
		costs := [][]float64{
			{4, 1, 3},
			{2, 0, 5},
			{3, 2, 2},
		}
		assigned := solveAssignment(3, func(row, col int) float64 { return costs[row][col] })
		// Optimal total is 1 + 2 + 2 = 5
		assert.Equal(t, []int{1, 0, 2}, assigned)
	})

	t.Run("single cell", func(t *testing.T) {
		assigned := solveAssignment(1, func(row, col int) float64 { return 7 })
		assert.Equal(t, []int{0}, assigned)
	})

	t.Run("identity on a diagonal matrix", func(t *testing.T) {
		assigned := solveAssignment(4, func(row, col int) float64 {
			if row == col {
				return 0
			}
			return 10
		})
		assert.Equal(t, []int{0, 1, 2, 3}, assigned)
	})
}

func TestOptimalAssignment_BeatsGreedyOnCrossover(t *testing.T) {
	// Score matrix:
	//        b0    b1
	//  a0   0.95  0.1
	//  a1   0.9   0.0
	// Greedy grabs (a0,b0) and is left with (a1,b1) for 0.95 total; the
	// optimal pairing crosses over for 0.1 + 0.9 = 1.0.
	crit := models.Criteria{
		Weights:            map[string]float64{"x": 1, "y": 1},
		OptionalAttributes: []string{"x", "y"},
		Ranges:             map[string]float64{"x": 10, "y": 10},
	}
	entitiesA := []models.Entity{
		{ID: "a0", Attributes: map[string]models.AttributeValue{
			"x": models.NumberValue(0), "y": models.NumberValue(0),
		}},
		{ID: "a1", Attributes: map[string]models.AttributeValue{
			"x": models.NumberValue(1),
		}},
	}
	entitiesB := []models.Entity{
		{ID: "b0", Attributes: map[string]models.AttributeValue{
			"x": models.NumberValue(0), "y": models.NumberValue(1),
		}},
		{ID: "b1", Attributes: map[string]models.AttributeValue{
			"y": models.NumberValue(9),
		}},
	}

	in := buildInput(t, entitiesA, entitiesB, crit)

	optimal, err := runOptimalAssignment(in)
	require.NoError(t, err)
	greedy, err := runGreedy(in)
	require.NoError(t, err)

	score := func(pairs []pairing) float64 {
		total := 0.0
		for _, p := range pairs {
			total += in.matrix.Score(p.a, p.b)
		}
		return total
	}

	assert.Equal(t, []pairing{{a: 0, b: 0}, {a: 1, b: 1}}, greedy)
	assert.Equal(t, []pairing{{a: 0, b: 1}, {a: 1, b: 0}}, optimal)
	assert.InDelta(t, 0.95, score(greedy), 1e-9)
	assert.InDelta(t, 1.0, score(optimal), 1e-9)
}

func TestOptimalAssignment_RectangularLeavesUnmatched(t *testing.T) {
	crit := models.Criteria{Weights: map[string]float64{"skills": 1}}
	entitiesA := []models.Entity{
		skillEntity("a0", "go"),
		skillEntity("a1", "go"),
		skillEntity("a2", "go"),
	}
	entitiesB := []models.Entity{skillEntity("b0", "go")}

	in := buildInput(t, entitiesA, entitiesB, crit)
	pairs, err := runOptimalAssignment(in)
	require.NoError(t, err)

	require.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].b)
}

func TestOptimalAssignment_SkipsInfeasibleCells(t *testing.T) {
	crit := models.Criteria{
		Weights:            map[string]float64{"skills": 1},
		RequiredAttributes: []string{"skills"},
	}
	entitiesA := []models.Entity{
		skillEntity("a0", "go"),
		{ID: "a1"}, // no skills attribute, every cell infeasible
	}
	entitiesB := []models.Entity{
		skillEntity("b0", "go"),
		skillEntity("b1", "go"),
	}

	in := buildInput(t, entitiesA, entitiesB, crit)
	pairs, err := runOptimalAssignment(in)
	require.NoError(t, err)

	require.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].a)
}

func TestOptimalAssignment_AllInfeasible(t *testing.T) {
	crit := models.Criteria{
		Weights:            map[string]float64{"skills": 1},
		RequiredAttributes: []string{"skills"},
	}
	entitiesA := []models.Entity{{ID: "a0"}}
	entitiesB := []models.Entity{{ID: "b0"}}

	in := buildInput(t, entitiesA, entitiesB, crit)
	pairs, err := runOptimalAssignment(in)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestOptimalAssignment_CapacityExpansion(t *testing.T) {
	two := 2
	crit := models.Criteria{
		Weights:    map[string]float64{"skills": 1},
		MaxMatches: &two,
	}
	entitiesA := []models.Entity{
		skillEntity("a0", "go"),
		skillEntity("a1", "go"),
		skillEntity("a2", "go"),
		skillEntity("a3", "go"),
	}
	entitiesB := []models.Entity{
		skillEntity("b0", "go"),
		skillEntity("b1", "go"),
	}

	in := buildInput(t, entitiesA, entitiesB, crit)
	pairs, err := runOptimalAssignment(in)
	require.NoError(t, err)

	// Four A entities fill two B entities with capacity 2 each
	require.Len(t, pairs, 4)
	countA := map[int]int{}
	countB := map[int]int{}
	for _, p := range pairs {
		countA[p.a]++
		countB[p.b]++
	}
	for a, n := range countA {
		assert.LessOrEqual(t, n, 2, "entity a%d over capacity", a)
	}
	assert.Equal(t, 2, countB[0])
	assert.Equal(t, 2, countB[1])
}

func TestOptimalAssignment_DeterministicAcrossRuns(t *testing.T) {
	crit := models.Criteria{Weights: map[string]float64{"skills": 1}}
	entitiesA := []models.Entity{
		skillEntity("a0", "go", "sql"),
		skillEntity("a1", "go"),
		skillEntity("a2", "sql"),
	}
	entitiesB := []models.Entity{
		skillEntity("b0", "go"),
		skillEntity("b1", "sql"),
		skillEntity("b2", "go", "sql"),
	}

	in := buildInput(t, entitiesA, entitiesB, crit)
	first, err := runOptimalAssignment(in)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := runOptimalAssignment(in)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
