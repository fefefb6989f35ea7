package models

// Criteria describes how two entity sets should be matched. This is the
// request form; the engine only ever consumes the normalized form.
type Criteria struct {
	Weights            map[string]float64 `json:"weights" yaml:"weights" validate:"required"`
	RequiredAttributes []string           `json:"required_attributes,omitempty" yaml:"required_attributes"`
	OptionalAttributes []string           `json:"optional_attributes,omitempty" yaml:"optional_attributes"`
	MinScore           float64            `json:"min_score" yaml:"min_score"`
	MaxMatches         *int               `json:"max_matches,omitempty" yaml:"max_matches"` // nil means 1
	Ranges             map[string]float64 `json:"ranges,omitempty" yaml:"ranges"`           // numeric domain widths
}

// NormalizedCriteria is the validated engine form of Criteria: weights sum to
// 1.0, the attribute sets are materialized, and defaults are resolved.
type NormalizedCriteria struct {
	Weights map[string]float64
	// WeightNames holds the weighted attribute names in sorted order.
	// Scoring iterates the slice, not the map, so float accumulation
	// order never varies between runs.
	WeightNames []string
	Required    map[string]struct{}
	Optional    map[string]struct{}
	MinScore    float64
	MaxMatches  int
	Ranges      map[string]float64
}

// IsRequired reports whether the attribute must be present on both entities
func (c *NormalizedCriteria) IsRequired(name string) bool {
	_, ok := c.Required[name]
	return ok
}

// IsOptional reports whether the attribute's absence is forgiven
func (c *NormalizedCriteria) IsOptional(name string) bool {
	_, ok := c.Optional[name]
	return ok
}

// Range returns the configured domain width for a numeric attribute, or 0
// when the caller left it to be derived from the compared values.
func (c *NormalizedCriteria) Range(name string) float64 {
	return c.Ranges[name]
}
