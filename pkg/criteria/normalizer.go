package criteria

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Ramsey-B/graft/pkg/models"
)

// ErrInvalid is the error kind for criteria that fail validation. Callers
// test with errors.Is; messages name the offending field.
var ErrInvalid = errors.New("invalid criteria")

// Normalize validates a criteria document and produces the engine form:
// weights rescaled to sum to 1.0, attribute sets materialized, defaults
// resolved. The input is never mutated.
func Normalize(input models.Criteria) (models.NormalizedCriteria, error) {
	var normalized models.NormalizedCriteria

	if len(input.Weights) == 0 {
		return normalized, fmt.Errorf("%w: weights must not be empty", ErrInvalid)
	}

	names := make([]string, 0, len(input.Weights))
	for name := range input.Weights {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0.0
	for _, name := range names {
		weight := input.Weights[name]
		if strings.TrimSpace(name) == "" {
			return normalized, fmt.Errorf("%w: weight attribute names must not be blank", ErrInvalid)
		}
		if math.IsNaN(weight) || math.IsInf(weight, 0) {
			return normalized, fmt.Errorf("%w: weight for %q must be finite", ErrInvalid, name)
		}
		if weight < 0 {
			return normalized, fmt.Errorf("%w: weight for %q must not be negative", ErrInvalid, name)
		}
		total += weight
	}
	if total <= 0 {
		return normalized, fmt.Errorf("%w: weights must not all be zero", ErrInvalid)
	}

	if math.IsNaN(input.MinScore) || input.MinScore < 0 || input.MinScore > 1 {
		return normalized, fmt.Errorf("%w: min_score %v must be within [0, 1]", ErrInvalid, input.MinScore)
	}

	maxMatches := 1
	if input.MaxMatches != nil {
		if *input.MaxMatches < 1 {
			return normalized, fmt.Errorf("%w: max_matches %d must be at least 1", ErrInvalid, *input.MaxMatches)
		}
		maxMatches = *input.MaxMatches
	}

	optional := make(map[string]struct{}, len(input.OptionalAttributes))
	for _, name := range input.OptionalAttributes {
		if strings.TrimSpace(name) == "" {
			return normalized, fmt.Errorf("%w: optional attribute names must not be blank", ErrInvalid)
		}
		optional[name] = struct{}{}
	}

	required := make(map[string]struct{}, len(input.RequiredAttributes))
	for _, name := range input.RequiredAttributes {
		if strings.TrimSpace(name) == "" {
			return normalized, fmt.Errorf("%w: required attribute names must not be blank", ErrInvalid)
		}
		// A required attribute need not carry weight (presence checking is
		// weight-free) but it must be declared on the scoring surface.
		_, weighted := input.Weights[name]
		_, opt := optional[name]
		if !weighted && !opt {
			return normalized, fmt.Errorf("%w: required attribute %q is neither weighted nor optional", ErrInvalid, name)
		}
		required[name] = struct{}{}
	}

	ranges := make(map[string]float64, len(input.Ranges))
	for name, width := range input.Ranges {
		if strings.TrimSpace(name) == "" {
			return normalized, fmt.Errorf("%w: range attribute names must not be blank", ErrInvalid)
		}
		if math.IsNaN(width) || math.IsInf(width, 0) || width <= 0 {
			return normalized, fmt.Errorf("%w: range for %q must be a positive finite number", ErrInvalid, name)
		}
		ranges[name] = width
	}

	weights := make(map[string]float64, len(input.Weights))
	for _, name := range names {
		weights[name] = input.Weights[name] / total
	}

	normalized = models.NormalizedCriteria{
		Weights:     weights,
		WeightNames: names,
		Required:    required,
		Optional:    optional,
		MinScore:    input.MinScore,
		MaxMatches:  maxMatches,
		Ranges:      ranges,
	}
	return normalized, nil
}
