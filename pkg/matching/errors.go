package matching

import (
	"errors"

	"github.com/Ramsey-B/graft/pkg/criteria"
)

// Error kinds returned by the engine. Messages carry the offending values;
// callers branch with errors.Is.
var (
	// ErrInvalidCriteria aliases the normalizer's error kind so engine
	// callers can branch on every failure mode from one package.
	ErrInvalidCriteria = criteria.ErrInvalid

	// ErrUnknownAlgorithm reports an algorithm selector outside the
	// registered set.
	ErrUnknownAlgorithm = errors.New("unknown algorithm")

	// ErrEmptyInput reports an empty entity collection on either side.
	ErrEmptyInput = errors.New("empty input")

	// ErrInputTooLarge reports inputs past the configured size bounds.
	ErrInputTooLarge = errors.New("input too large")

	// ErrInternalAlgorithm reports an algorithm postcondition violation.
	// Seeing it means a bug in the engine, not in the caller's input.
	ErrInternalAlgorithm = errors.New("internal algorithm error")
)

// IsEngineError reports whether err is one of the engine's error kinds.
// Engine runs are deterministic, so these errors never clear on retry.
func IsEngineError(err error) bool {
	return errors.Is(err, ErrInvalidCriteria) ||
		errors.Is(err, ErrUnknownAlgorithm) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrInputTooLarge) ||
		errors.Is(err, ErrInternalAlgorithm)
}
