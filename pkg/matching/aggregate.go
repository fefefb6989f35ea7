package matching

import (
	"time"

	"github.com/Ramsey-B/graft/pkg/models"
)

// aggregateResult turns selected pairs into the caller-facing result.
// Match scores come from the score matrix; per-attribute details are
// recomputed for selected pairs only, so the detail pass costs nothing on
// pairs that were never chosen.
func aggregateResult(in algorithmInput, pairs []pairing, algorithm string, started time.Time) *models.MatchResult {
	matches := make([]models.Match, 0, len(pairs))
	matchCountA := make([]int, len(in.entitiesA))
	matchCountB := make([]int, len(in.entitiesB))

	total := 0.0
	for _, p := range pairs {
		details := make(map[string]float64)
		pairScore(&in.entitiesA[p.a], &in.entitiesB[p.b], in.criteria, details)
		if len(details) == 0 {
			details = nil
		}

		score := in.matrix.Score(p.a, p.b)
		matches = append(matches, models.Match{
			EntityAID: in.entitiesA[p.a].ID,
			EntityBID: in.entitiesB[p.b].ID,
			Score:     score,
			Algorithm: algorithm,
			Details:   details,
		})
		total += score
		matchCountA[p.a]++
		matchCountB[p.b]++
	}

	unmatched := make([]string, 0)
	for i := range in.entitiesA {
		if matchCountA[i] == 0 {
			unmatched = append(unmatched, in.entitiesA[i].ID)
		}
	}
	for j := range in.entitiesB {
		if matchCountB[j] == 0 {
			unmatched = append(unmatched, in.entitiesB[j].ID)
		}
	}

	return &models.MatchResult{
		Matches:           matches,
		UnmatchedEntities: unmatched,
		TotalScore:        total,
		ExecutionTime:     time.Since(started).Seconds(),
		Algorithm:         algorithm,
	}
}
