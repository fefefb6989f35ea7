package matching

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/graft/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func testEngine() *Engine {
	return NewEngine(testLogger(), DefaultConfig())
}

func candidateJobFixture() ([]models.Entity, []models.Entity, models.Criteria) {
	candidates := []models.Entity{
		{ID: "c1", Attributes: map[string]models.AttributeValue{
			"experience": models.NumberValue(5),
			"skills":     models.ListValue([]string{"go", "sql", "docker"}),
			"education":  models.StringValue("masters"),
			"location":   models.StringValue("remote"),
		}},
		{ID: "c2", Attributes: map[string]models.AttributeValue{
			"experience": models.NumberValue(2),
			"skills":     models.ListValue([]string{"python"}),
			"education":  models.StringValue("bachelors"),
			"location":   models.StringValue("onsite"),
		}},
		{ID: "c3", Attributes: map[string]models.AttributeValue{
			"experience": models.NumberValue(10),
			"skills":     models.ListValue([]string{"go", "k8s"}),
			"location":   models.StringValue("remote"),
		}},
		{ID: "c4", Attributes: map[string]models.AttributeValue{
			"skills": models.ListValue([]string{"go"}),
		}},
	}

	jobs := []models.Entity{
		{ID: "j1", Attributes: map[string]models.AttributeValue{
			"experience": models.NumberValue(5),
			"skills":     models.ListValue([]string{"go", "sql"}),
			"education":  models.StringValue("masters"),
			"location":   models.StringValue("remote"),
		}},
		{ID: "j2", Attributes: map[string]models.AttributeValue{
			"experience": models.NumberValue(8),
			"skills":     models.ListValue([]string{"go", "k8s", "terraform"}),
			"education":  models.StringValue("bachelors"),
			"location":   models.StringValue("remote"),
		}},
		{ID: "j3", Attributes: map[string]models.AttributeValue{
			"experience": models.NumberValue(1),
			"skills":     models.ListValue([]string{"java"}),
			"education":  models.StringValue("phd"),
			"location":   models.StringValue("onsite"),
		}},
	}

	crit := models.Criteria{
		Weights: map[string]float64{
			"experience": 0.3,
			"skills":     0.4,
			"education":  0.2,
			"location":   0.1,
		},
		RequiredAttributes: []string{"experience", "skills"},
		MinScore:           0.5,
		Ranges:             map[string]float64{"experience": 10},
	}

	return candidates, jobs, crit
}

func TestEngine_Match_CandidatesToJobs(t *testing.T) {
	candidates, jobs, crit := candidateJobFixture()
	engine := testEngine()

	for _, algorithm := range []string{
		models.AlgorithmOptimalAssignment,
		models.AlgorithmStableMatching,
		models.AlgorithmGreedy,
	} {
		t.Run(algorithm, func(t *testing.T) {
			result, err := engine.Match(context.Background(), candidates, jobs, crit, algorithm)
			require.NoError(t, err)

			// Only two cells clear the 0.5 floor: (c1, j1) and (c3, j2).
			// c4 lacks the required experience attribute everywhere.
			require.Len(t, result.Matches, 2)
			assert.Equal(t, "c1", result.Matches[0].EntityAID)
			assert.Equal(t, "j1", result.Matches[0].EntityBID)
			assert.InDelta(t, 0.3+0.4*(2.0/3.0)+0.2+0.1, result.Matches[0].Score, 1e-9)

			assert.Equal(t, "c3", result.Matches[1].EntityAID)
			assert.Equal(t, "j2", result.Matches[1].EntityBID)
			assert.InDelta(t, 0.24+0.4*(2.0/3.0)+0.1, result.Matches[1].Score, 1e-9)

			assert.Equal(t, []string{"c2", "c4", "j3"}, result.UnmatchedEntities)
			assert.InDelta(t, result.Matches[0].Score+result.Matches[1].Score, result.TotalScore, 1e-9)
			assert.Equal(t, algorithm, result.Algorithm)
			assert.GreaterOrEqual(t, result.ExecutionTime, 0.0)
		})
	}
}

func TestEngine_Match_DetailsExplainScores(t *testing.T) {
	candidates, jobs, crit := candidateJobFixture()
	engine := testEngine()

	result, err := engine.Match(context.Background(), candidates, jobs, crit, models.AlgorithmGreedy)
	require.NoError(t, err)

	require.Len(t, result.Matches, 2)
	best := result.Matches[0]
	require.NotNil(t, best.Details)
	assert.InDelta(t, 1.0, best.Details["experience"], 1e-9)
	assert.InDelta(t, 2.0/3.0, best.Details["skills"], 1e-9)
	assert.InDelta(t, 1.0, best.Details["education"], 1e-9)
	assert.InDelta(t, 1.0, best.Details["location"], 1e-9)

	// c3 has no education attribute, so the detail map omits it
	second := result.Matches[1]
	_, present := second.Details["education"]
	assert.False(t, present)
}

func TestEngine_Match_Deterministic(t *testing.T) {
	candidates, jobs, crit := candidateJobFixture()
	engine := testEngine()

	for _, algorithm := range []string{
		models.AlgorithmOptimalAssignment,
		models.AlgorithmStableMatching,
		models.AlgorithmGreedy,
	} {
		t.Run(algorithm, func(t *testing.T) {
			first, err := engine.Match(context.Background(), candidates, jobs, crit, algorithm)
			require.NoError(t, err)
			first.ExecutionTime = 0

			for i := 0; i < 5; i++ {
				again, err := engine.Match(context.Background(), candidates, jobs, crit, algorithm)
				require.NoError(t, err)
				again.ExecutionTime = 0
				assert.Equal(t, first, again)
			}
		})
	}
}

func TestEngine_Match_CapacityPartition(t *testing.T) {
	three := 3
	crit := models.Criteria{
		Weights:    map[string]float64{"skills": 1},
		MaxMatches: &three,
	}

	entitiesA := make([]models.Entity, 5)
	for i := range entitiesA {
		entitiesA[i] = skillEntity(string(rune('a'+i)), "go")
	}
	entitiesB := []models.Entity{skillEntity("x", "go"), skillEntity("y", "go")}

	engine := testEngine()
	for _, algorithm := range []string{
		models.AlgorithmOptimalAssignment,
		models.AlgorithmStableMatching,
		models.AlgorithmGreedy,
	} {
		t.Run(algorithm, func(t *testing.T) {
			result, err := engine.Match(context.Background(), entitiesA, entitiesB, crit, algorithm)
			require.NoError(t, err)

			perEntity := map[string]int{}
			for _, m := range result.Matches {
				perEntity[m.EntityAID]++
				perEntity[m.EntityBID]++
			}
			for id, count := range perEntity {
				assert.LessOrEqual(t, count, 3, "entity %s exceeds its capacity", id)
			}
			for _, id := range result.UnmatchedEntities {
				assert.Zero(t, perEntity[id], "unmatched entity %s appears in a match", id)
			}
		})
	}
}

func TestEngine_Match_OptimalAtLeastGreedy(t *testing.T) {
	candidates, jobs, crit := candidateJobFixture()
	// Lower the floor so more cells stay feasible and the algorithms
	// actually have choices to disagree on
	crit.MinScore = 0
	crit.RequiredAttributes = nil

	engine := testEngine()
	optimal, err := engine.Match(context.Background(), candidates, jobs, crit, models.AlgorithmOptimalAssignment)
	require.NoError(t, err)
	greedy, err := engine.Match(context.Background(), candidates, jobs, crit, models.AlgorithmGreedy)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, optimal.TotalScore+scoreEpsilon, greedy.TotalScore)
}

func TestEngine_Match_DefaultAlgorithm(t *testing.T) {
	candidates, jobs, crit := candidateJobFixture()
	engine := testEngine()

	result, err := engine.Match(context.Background(), candidates, jobs, crit, "")
	require.NoError(t, err)
	assert.Equal(t, models.AlgorithmOptimalAssignment, result.Algorithm)
	for _, m := range result.Matches {
		assert.Equal(t, models.AlgorithmOptimalAssignment, m.Algorithm)
	}
}

func TestEngine_Match_ErrorKinds(t *testing.T) {
	candidates, jobs, crit := candidateJobFixture()
	engine := testEngine()
	ctx := context.Background()

	t.Run("unknown algorithm", func(t *testing.T) {
		_, err := engine.Match(ctx, candidates, jobs, crit, "simulated-annealing")
		assert.ErrorIs(t, err, ErrUnknownAlgorithm)
		assert.Contains(t, err.Error(), "simulated-annealing")
	})

	t.Run("empty side A", func(t *testing.T) {
		_, err := engine.Match(ctx, nil, jobs, crit, models.AlgorithmGreedy)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("empty side B", func(t *testing.T) {
		_, err := engine.Match(ctx, candidates, nil, crit, models.AlgorithmGreedy)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("invalid criteria", func(t *testing.T) {
		bad := models.Criteria{Weights: map[string]float64{}}
		_, err := engine.Match(ctx, candidates, jobs, bad, models.AlgorithmGreedy)
		assert.ErrorIs(t, err, ErrInvalidCriteria)
	})

	t.Run("algorithm checked before criteria", func(t *testing.T) {
		bad := models.Criteria{Weights: map[string]float64{}}
		_, err := engine.Match(ctx, candidates, jobs, bad, "simulated-annealing")
		assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	})
}

func TestEngine_Match_SizeBounds(t *testing.T) {
	ctx := context.Background()
	crit := models.Criteria{Weights: map[string]float64{"skills": 1}}

	t.Run("per-side entity limit", func(t *testing.T) {
		engine := NewEngine(testLogger(), EngineConfig{MaxEntities: 2})
		entities := []models.Entity{
			skillEntity("a0", "go"), skillEntity("a1", "go"), skillEntity("a2", "go"),
		}

		_, err := engine.Match(ctx, entities, entities[:1], crit, models.AlgorithmGreedy)
		assert.ErrorIs(t, err, ErrInputTooLarge)
	})

	t.Run("optimal dimension counts capacity slots", func(t *testing.T) {
		engine := NewEngine(testLogger(), EngineConfig{MaxOptimalDimension: 4})
		two := 2
		capCrit := models.Criteria{
			Weights:    map[string]float64{"skills": 1},
			MaxMatches: &two,
		}
		entitiesA := []models.Entity{
			skillEntity("a0", "go"), skillEntity("a1", "go"), skillEntity("a2", "go"),
		}
		entitiesB := []models.Entity{skillEntity("b0", "go")}

		_, err := engine.Match(ctx, entitiesA, entitiesB, capCrit, models.AlgorithmOptimalAssignment)
		assert.ErrorIs(t, err, ErrInputTooLarge)

		// The same input is fine for algorithms that never expand slots
		_, err = engine.Match(ctx, entitiesA, entitiesB, capCrit, models.AlgorithmGreedy)
		assert.NoError(t, err)
	})
}

func TestEngine_Algorithms(t *testing.T) {
	engine := testEngine()
	assert.Equal(t, []string{
		models.AlgorithmGreedy,
		models.AlgorithmOptimalAssignment,
		models.AlgorithmStableMatching,
	}, engine.Algorithms())
}
