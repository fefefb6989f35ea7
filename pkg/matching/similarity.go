package matching

import (
	"math"
	"strings"

	"github.com/Ramsey-B/graft/pkg/models"
)

// attributeSimilarity compares two attribute values and returns a score in
// [0, 1]. Values of different kinds are not comparable and score 0.
func attributeSimilarity(a, b models.AttributeValue, domainRange float64) float64 {
	if a.Kind != b.Kind {
		return 0.0
	}

	switch a.Kind {
	case models.AttributeKindNumber:
		return numberSimilarity(a.Number, b.Number, domainRange)
	case models.AttributeKindString:
		return exactMatch(a.Text, b.Text)
	case models.AttributeKindList:
		return jaccardSimilarity(a.List, b.List)
	default:
		return 0.0
	}
}

// numberSimilarity scores two numbers by distance over a domain width,
// decaying linearly from 1.0 at zero distance to 0.0 at the full width.
// When no width is configured the larger magnitude of the two values
// stands in for it.
func numberSimilarity(a, b, domainRange float64) float64 {
	if a == b {
		return 1.0
	}

	width := domainRange
	if width <= 0 {
		width = math.Max(math.Abs(a), math.Abs(b))
	}
	if width == 0 {
		return 1.0
	}

	return clamp01(1.0 - math.Abs(a-b)/width)
}

// exactMatch returns 1.0 for a case-insensitive exact match, 0.0 otherwise
func exactMatch(a, b string) float64 {
	if strings.ToLower(a) == strings.ToLower(b) {
		return 1.0
	}
	return 0.0
}

// jaccardSimilarity scores two lists by set overlap, ignoring case and
// duplicates. Two empty lists are identical and score 1.0.
func jaccardSimilarity(a, b []string) float64 {
	setA := foldedSet(a)
	setB := foldedSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}

	intersection := 0
	for item := range setA {
		if _, ok := setB[item]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func foldedSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
