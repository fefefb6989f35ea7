package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/graft/pkg/models"
)

func TestGreedy_TakesBestPairsFirst(t *testing.T) {
	crit := models.Criteria{
		Weights: map[string]float64{"level": 1},
		Ranges:  map[string]float64{"level": 10},
	}
	entitiesA := []models.Entity{numberEntity("a0", 5), numberEntity("a1", 2)}
	entitiesB := []models.Entity{numberEntity("b0", 2), numberEntity("b1", 5)}

	in := buildInput(t, entitiesA, entitiesB, crit)
	pairs, err := runGreedy(in)
	require.NoError(t, err)

	// Both perfect pairs exist; output keeps selection order, best first,
	// ties by lower A index
	assert.Equal(t, []pairing{{a: 0, b: 1}, {a: 1, b: 0}}, pairs)
}

func TestGreedy_RespectsCapacity(t *testing.T) {
	two := 2
	crit := models.Criteria{
		Weights:    map[string]float64{"level": 1},
		Ranges:     map[string]float64{"level": 10},
		MaxMatches: &two,
	}
	entitiesA := []models.Entity{
		numberEntity("a0", 10), numberEntity("a1", 9), numberEntity("a2", 8),
	}
	entitiesB := []models.Entity{numberEntity("b0", 10)}

	in := buildInput(t, entitiesA, entitiesB, crit)
	pairs, err := runGreedy(in)
	require.NoError(t, err)

	// b0 can hold two matches and the two best scores win them
	assert.Equal(t, []pairing{{a: 0, b: 0}, {a: 1, b: 0}}, pairs)
}

func TestGreedy_SkipsInfeasible(t *testing.T) {
	crit := models.Criteria{
		Weights:  map[string]float64{"level": 1},
		Ranges:   map[string]float64{"level": 10},
		MinScore: 0.7,
	}
	entitiesA := []models.Entity{numberEntity("a0", 0), numberEntity("a1", 5)}
	entitiesB := []models.Entity{numberEntity("b0", 5)}

	in := buildInput(t, entitiesA, entitiesB, crit)
	pairs, err := runGreedy(in)
	require.NoError(t, err)

	// (a0, b0) scores 0.5, under the minimum; only (a1, b0) survives
	assert.Equal(t, []pairing{{a: 1, b: 0}}, pairs)
}

func TestGreedy_TieBreakIsIndexOrdered(t *testing.T) {
	crit := models.Criteria{Weights: map[string]float64{"skills": 1}}
	entitiesA := []models.Entity{
		skillEntity("a0", "go"),
		skillEntity("a1", "go"),
	}
	entitiesB := []models.Entity{
		skillEntity("b0", "go"),
		skillEntity("b1", "go"),
	}

	in := buildInput(t, entitiesA, entitiesB, crit)
	pairs, err := runGreedy(in)
	require.NoError(t, err)

	// All four cells score 1.0; lower indices pair up first
	assert.Equal(t, []pairing{{a: 0, b: 0}, {a: 1, b: 1}}, pairs)
}
