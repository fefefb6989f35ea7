package scenario

import (
	"context"
	"fmt"

	"github.com/Ramsey-B/graft/pkg/matching"
	"github.com/Ramsey-B/graft/pkg/models"
)

// Runner executes scenarios against a local engine
type Runner struct {
	engine *matching.Engine
}

// NewRunner creates a new scenario runner
func NewRunner(engine *matching.Engine) *Runner {
	return &Runner{engine: engine}
}

// Report carries a scenario's result and any unmet expectations
type Report struct {
	Scenario *Scenario
	Result   *models.MatchResult
	Failures []string
}

// Passed reports whether every expectation held
func (r *Report) Passed() bool {
	return len(r.Failures) == 0
}

// Run executes the scenario and checks its expectations. An engine error is
// returned as-is; expectation failures land in the report.
func (r *Runner) Run(ctx context.Context, s *Scenario) (*Report, error) {
	result, err := r.engine.Match(ctx, s.EntitiesA, s.EntitiesB, s.Criteria, s.Algorithm)
	if err != nil {
		return nil, err
	}

	report := &Report{Scenario: s, Result: result}
	if s.Expect != nil {
		report.Failures = checkExpectations(s.Expect, result)
	}
	return report, nil
}

func checkExpectations(expect *Expectation, result *models.MatchResult) []string {
	var failures []string

	pairs := make(map[ExpectedPair]struct{}, len(result.Matches))
	for _, m := range result.Matches {
		pairs[ExpectedPair{EntityA: m.EntityAID, EntityB: m.EntityBID}] = struct{}{}
	}
	for _, want := range expect.Pairs {
		if _, ok := pairs[want]; !ok {
			failures = append(failures, fmt.Sprintf("expected pair %s -> %s is missing", want.EntityA, want.EntityB))
		}
	}

	if expect.MinTotalScore != nil && result.TotalScore < *expect.MinTotalScore {
		failures = append(failures, fmt.Sprintf("total score %.4f is below minimum %.4f", result.TotalScore, *expect.MinTotalScore))
	}

	if len(expect.Unmatched) > 0 {
		unmatched := make(map[string]struct{}, len(result.UnmatchedEntities))
		for _, id := range result.UnmatchedEntities {
			unmatched[id] = struct{}{}
		}
		for _, id := range expect.Unmatched {
			if _, ok := unmatched[id]; !ok {
				failures = append(failures, fmt.Sprintf("expected %s to stay unmatched", id))
			}
		}
	}

	return failures
}
