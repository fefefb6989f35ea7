// Package matching pairs entities from two sets by weighted attribute
// similarity. Scoring, constraint filtering, and pair selection stay
// separate: the score matrix records every pairwise score, the filter only
// marks cells infeasible, and the algorithms choose among feasible cells.
package matching

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/graft/pkg/criteria"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Engine runs multi-criteria matches between two entity sets. A run is pure
// and synchronous: identical inputs always produce identical results, and
// nothing is shared between calls, so one engine serves any number of
// concurrent callers.
type Engine struct {
	logger     ectologger.Logger
	config     EngineConfig
	algorithms map[string]algorithmFunc
}

// EngineConfig bounds how much work a single match run may do
type EngineConfig struct {
	MaxEntities         int // Per-side entity limit for all algorithms (default: 10000)
	MaxOptimalDimension int // Expanded matrix dimension limit for optimal-assignment (default: 2048)
}

// DefaultConfig returns default engine configuration
func DefaultConfig() EngineConfig {
	return EngineConfig{
		MaxEntities:         10000,
		MaxOptimalDimension: 2048,
	}
}

// algorithmInput carries everything a pairing algorithm may consult
type algorithmInput struct {
	entitiesA []models.Entity
	entitiesB []models.Entity
	criteria  *models.NormalizedCriteria
	matrix    *ScoreMatrix
}

type algorithmFunc func(in algorithmInput) ([]pairing, error)

// NewEngine creates a new match engine
func NewEngine(logger ectologger.Logger, config EngineConfig) *Engine {
	if config.MaxEntities <= 0 {
		config.MaxEntities = DefaultConfig().MaxEntities
	}
	if config.MaxOptimalDimension <= 0 {
		config.MaxOptimalDimension = DefaultConfig().MaxOptimalDimension
	}

	return &Engine{
		logger: logger,
		config: config,
		algorithms: map[string]algorithmFunc{
			models.AlgorithmOptimalAssignment: runOptimalAssignment,
			models.AlgorithmStableMatching:    runStableMatching,
			models.AlgorithmGreedy:            runGreedy,
		},
	}
}

// Algorithms lists the registered algorithm selectors in sorted order
func (e *Engine) Algorithms() []string {
	names := make([]string, 0, len(e.algorithms))
	for name := range e.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Match scores every pair between the two sets, filters out pairs that
// violate the criteria's constraints, and selects pairs with the requested
// algorithm. An empty algorithm selects the default. The context carries
// trace and log correlation only; runs are kept short by the size bounds
// rather than by cancellation.
func (e *Engine) Match(ctx context.Context, entitiesA, entitiesB []models.Entity, crit models.Criteria, algorithm string) (*models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.Match")
	defer span.End()

	started := time.Now()

	if algorithm == "" {
		algorithm = models.DefaultAlgorithm
	}
	run, ok := e.algorithms[algorithm]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not one of %s", ErrUnknownAlgorithm, algorithm, strings.Join(e.Algorithms(), ", "))
	}

	if len(entitiesA) == 0 {
		return nil, fmt.Errorf("%w: entities_a is empty", ErrEmptyInput)
	}
	if len(entitiesB) == 0 {
		return nil, fmt.Errorf("%w: entities_b is empty", ErrEmptyInput)
	}

	normalized, err := criteria.Normalize(crit)
	if err != nil {
		return nil, err
	}

	if err := e.checkSize(entitiesA, entitiesB, &normalized, algorithm); err != nil {
		return nil, err
	}

	log := e.logger.WithContext(ctx).WithFields(map[string]any{
		"algorithm":  algorithm,
		"entities_a": len(entitiesA),
		"entities_b": len(entitiesB),
	})
	log.Debug("Running match")

	in := algorithmInput{
		entitiesA: entitiesA,
		entitiesB: entitiesB,
		criteria:  &normalized,
		matrix:    BuildScoreMatrix(entitiesA, entitiesB, &normalized),
	}

	pairs, err := run(in)
	if err != nil {
		log.WithError(err).Error("Match algorithm failed")
		return nil, err
	}

	result := aggregateResult(in, pairs, algorithm, started)

	log.WithFields(map[string]any{
		"match_count":     len(result.Matches),
		"unmatched_count": len(result.UnmatchedEntities),
		"total_score":     result.TotalScore,
	}).Debug("Match complete")

	return result, nil
}

// checkSize enforces the per-side entity limit and, for optimal-assignment,
// the expanded matrix dimension limit. The expanded dimension grows with
// max_matches because every entity is duplicated into that many slots.
func (e *Engine) checkSize(entitiesA, entitiesB []models.Entity, criteria *models.NormalizedCriteria, algorithm string) error {
	if len(entitiesA) > e.config.MaxEntities || len(entitiesB) > e.config.MaxEntities {
		return fmt.Errorf("%w: %d x %d entities exceeds the per-side limit of %d",
			ErrInputTooLarge, len(entitiesA), len(entitiesB), e.config.MaxEntities)
	}

	if algorithm == models.AlgorithmOptimalAssignment {
		dimension := max(len(entitiesA), len(entitiesB)) * criteria.MaxMatches
		if dimension > e.config.MaxOptimalDimension {
			return fmt.Errorf("%w: optimal-assignment would solve a %d-dimension matrix, limit is %d",
				ErrInputTooLarge, dimension, e.config.MaxOptimalDimension)
		}
	}

	return nil
}
