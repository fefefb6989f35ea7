// Package scenario loads YAML match scenarios and runs them through the
// engine without a server. Scenario files declare entities and criteria the
// same way API payloads do, plus optional expectations about the outcome.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Ramsey-B/graft/pkg/models"
)

// Scenario is one self-contained match run
type Scenario struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Algorithm   string          `yaml:"algorithm,omitempty"`
	Criteria    models.Criteria `yaml:"criteria"`
	EntitiesA   []models.Entity `yaml:"entities_a"`
	EntitiesB   []models.Entity `yaml:"entities_b"`
	Expect      *Expectation    `yaml:"expect,omitempty"`
}

// Expectation describes the outcome a scenario requires. Every listed check
// must hold for the scenario to pass; omitted checks are skipped.
type Expectation struct {
	// Pairs that must appear in the result, in any order
	Pairs []ExpectedPair `yaml:"pairs,omitempty"`
	// MinTotalScore the result's total score must reach
	MinTotalScore *float64 `yaml:"min_total_score,omitempty"`
	// Unmatched entity ids that must remain unmatched
	Unmatched []string `yaml:"unmatched,omitempty"`
}

// ExpectedPair names one required match by entity ids
type ExpectedPair struct {
	EntityA string `yaml:"entity_a"`
	EntityB string `yaml:"entity_b"`
}

// Load reads and decodes a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	return &s, nil
}
