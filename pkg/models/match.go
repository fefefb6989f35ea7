package models

// Algorithm selectors accepted by the engine
const (
	AlgorithmOptimalAssignment = "optimal-assignment" // Hungarian method, maximizes total score
	AlgorithmStableMatching    = "stable-matching"    // Gale-Shapley, no blocking pairs
	AlgorithmGreedy            = "greedy"             // best-score-first selection
)

// DefaultAlgorithm is used when a request leaves the selector empty
const DefaultAlgorithm = AlgorithmOptimalAssignment

// Match pairs one A-side entity with one B-side entity
type Match struct {
	EntityAID string             `json:"entity_a_id"`
	EntityBID string             `json:"entity_b_id"`
	Score     float64            `json:"score"`
	Algorithm string             `json:"algorithm"`
	Details   map[string]float64 `json:"details,omitempty"` // per-attribute similarity
}

// MatchResult is the outcome of one engine run
type MatchResult struct {
	Matches           []Match  `json:"matches"`
	UnmatchedEntities []string `json:"unmatched_entities"`
	TotalScore        float64  `json:"total_score"`
	ExecutionTime     float64  `json:"execution_time"` // seconds
	Algorithm         string   `json:"algorithm"`
}

// MatchStatistics summarizes a MatchResult
type MatchStatistics struct {
	TotalMatches         int     `json:"total_matches"`
	UnmatchedCount       int     `json:"unmatched_count"`
	AverageScore         float64 `json:"average_score"`
	TotalScore           float64 `json:"total_score"`
	ExecutionTimeSeconds float64 `json:"execution_time_seconds"`
}

// Statistics derives summary statistics from the result
func (r *MatchResult) Statistics() MatchStatistics {
	stats := MatchStatistics{
		TotalMatches:         len(r.Matches),
		UnmatchedCount:       len(r.UnmatchedEntities),
		TotalScore:           r.TotalScore,
		ExecutionTimeSeconds: r.ExecutionTime,
	}
	if len(r.Matches) > 0 {
		stats.AverageScore = r.TotalScore / float64(len(r.Matches))
	}
	return stats
}

// MatchRequest is the API request body for a match run. Criteria may be given
// inline or referenced through a stored preset, never both.
type MatchRequest struct {
	EntitiesA []Entity  `json:"entities_a" validate:"dive"`
	EntitiesB []Entity  `json:"entities_b" validate:"dive"`
	Criteria  *Criteria `json:"criteria,omitempty"`
	PresetID  string    `json:"preset_id,omitempty" validate:"omitempty,uuid"`
	Algorithm string    `json:"algorithm,omitempty"`
}

// MatchResponse is the API response for a match run
type MatchResponse struct {
	Matches           []Match         `json:"matches"`
	UnmatchedEntities []string        `json:"unmatched_entities"`
	TotalScore        float64         `json:"total_score"`
	ExecutionTime     float64         `json:"execution_time"`
	Algorithm         string          `json:"algorithm"`
	Statistics        MatchStatistics `json:"statistics"`
}

// NewMatchResponse shapes an engine result for the API
func NewMatchResponse(result *MatchResult) MatchResponse {
	return MatchResponse{
		Matches:           result.Matches,
		UnmatchedEntities: result.UnmatchedEntities,
		TotalScore:        result.TotalScore,
		ExecutionTime:     result.ExecutionTime,
		Algorithm:         result.Algorithm,
		Statistics:        result.Statistics(),
	}
}
