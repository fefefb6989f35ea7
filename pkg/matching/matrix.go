package matching

import (
	"math"

	"github.com/Ramsey-B/graft/pkg/models"
)

// scoreEpsilon is the slack applied wherever float scores are compared
const scoreEpsilon = 1e-9

// ScoreMatrix holds the pre-filter score of every A×B pair together with a
// feasibility mask. Filtering only ever flips the mask; recorded scores are
// never altered, so callers can always report why a pair was excluded.
type ScoreMatrix struct {
	rows, cols int
	scores     []float64
	feasible   []bool
}

// Rows returns the number of entities on the A side
func (m *ScoreMatrix) Rows() int { return m.rows }

// Cols returns the number of entities on the B side
func (m *ScoreMatrix) Cols() int { return m.cols }

// Score returns the pre-filter score for a cell
func (m *ScoreMatrix) Score(a, b int) float64 { return m.scores[a*m.cols+b] }

// Feasible reports whether a cell survived the constraint filter
func (m *ScoreMatrix) Feasible(a, b int) bool { return m.feasible[a*m.cols+b] }

// BuildScoreMatrix scores every pair between the two sets and applies the
// constraint filter: a cell is infeasible when a required attribute is
// missing or not comparable on either side, or when the score falls below
// the minimum by more than the comparison epsilon.
func BuildScoreMatrix(entitiesA, entitiesB []models.Entity, criteria *models.NormalizedCriteria) *ScoreMatrix {
	m := &ScoreMatrix{
		rows:     len(entitiesA),
		cols:     len(entitiesB),
		scores:   make([]float64, len(entitiesA)*len(entitiesB)),
		feasible: make([]bool, len(entitiesA)*len(entitiesB)),
	}

	for i := range entitiesA {
		for j := range entitiesB {
			score, feasible := pairScore(&entitiesA[i], &entitiesB[j], criteria, nil)
			idx := i*m.cols + j
			m.scores[idx] = score
			m.feasible[idx] = feasible && score >= criteria.MinScore-scoreEpsilon
		}
	}
	return m
}

// pairScore computes the weighted similarity of one entity pair. The bool
// result is false when a required attribute is missing or of a different
// kind on either side; the score is still computed from whatever both sides
// carry, so excluded pairs keep a reportable score.
//
// Absence handling follows the attribute's role. A weighted attribute
// missing from either side normally contributes zero against its full
// weight; marking it optional removes its weight from the denominator
// instead, redistributing the loss across the attributes that are present.
//
// A non-nil details map collects per-attribute similarity for every
// weighted or optional attribute present on both sides.
func pairScore(a, b *models.Entity, criteria *models.NormalizedCriteria, details map[string]float64) (float64, bool) {
	feasible := true
	for name := range criteria.Required {
		va, okA := a.Attribute(name)
		vb, okB := b.Attribute(name)
		if !okA || !okB || va.Kind != vb.Kind {
			feasible = false
			break
		}
	}

	weightedSum := 0.0
	denominator := 0.0
	for _, name := range criteria.WeightNames {
		weight := criteria.Weights[name]
		va, okA := a.Attribute(name)
		vb, okB := b.Attribute(name)
		if okA && okB {
			sim := attributeSimilarity(va, vb, criteria.Range(name))
			weightedSum += weight * sim
			denominator += weight
			if details != nil {
				details[name] = sim
			}
			continue
		}
		if !criteria.IsOptional(name) {
			denominator += weight
		}
	}

	if details != nil {
		for name := range criteria.Optional {
			if _, weighted := criteria.Weights[name]; weighted {
				continue
			}
			va, okA := a.Attribute(name)
			vb, okB := b.Attribute(name)
			if okA && okB {
				details[name] = attributeSimilarity(va, vb, criteria.Range(name))
			}
		}
	}

	if denominator <= 0 {
		return 0.0, feasible
	}
	return clamp01(weightedSum / denominator), feasible
}

// pairing is one selected cell, in original entity indices
type pairing struct {
	a, b int
}

// scoreKey buckets a score at epsilon resolution. Ordering by bucket stays
// transitive under float noise, which a raw |a-b| <= epsilon comparison
// does not, so every sort in the package goes through it.
func scoreKey(score float64) float64 {
	return math.Round(score / scoreEpsilon)
}

// scoresEqual treats scores in the same epsilon bucket as tied
func scoresEqual(a, b float64) bool {
	return scoreKey(a) == scoreKey(b)
}

// pairBefore is the one ordering rule every algorithm shares when scores
// decide: higher score first, ties broken by lower A index, then lower B
// index.
func pairBefore(scoreI float64, aI, bI int, scoreJ float64, aJ, bJ int) bool {
	keyI, keyJ := scoreKey(scoreI), scoreKey(scoreJ)
	if keyI != keyJ {
		return keyI > keyJ
	}
	if aI != aJ {
		return aI < aJ
	}
	return bI < bJ
}
