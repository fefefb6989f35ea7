package matching

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// PresetStore loads stored criteria presets
type PresetStore interface {
	// GetByID returns an active preset by its ID
	GetByID(ctx context.Context, id string) (*models.CriteriaPreset, error)
}

// EventPublisher emits match completion events
type EventPublisher interface {
	EmitMatchCompleted(ctx context.Context, result *models.MatchResult, presetID string) error
}

// Service coordinates match runs: it resolves criteria (inline or from a
// stored preset), runs the engine, and emits completion events.
type Service struct {
	logger  ectologger.Logger
	engine  *Engine
	presets PresetStore

	// Optional: match completion events
	events EventPublisher
}

// NewService creates a new matching service
func NewService(logger ectologger.Logger, engine *Engine, presets PresetStore, events EventPublisher) *Service {
	return &Service{
		logger:  logger,
		engine:  engine,
		presets: presets,
		events:  events,
	}
}

// Algorithms returns the available algorithm selectors
func (s *Service) Algorithms() []string {
	return s.engine.Algorithms()
}

// Match resolves the request's criteria, runs the engine, and emits a
// match.completed event. Emission failures are logged but do not fail
// the run.
func (s *Service) Match(ctx context.Context, req models.MatchRequest) (*models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.Match")
	defer span.End()

	crit, err := s.resolveCriteria(ctx, req)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Match(ctx, req.EntitiesA, req.EntitiesB, crit, req.Algorithm)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"algorithm": result.Algorithm,
		"matches":   len(result.Matches),
		"unmatched": len(result.UnmatchedEntities),
	})
	log.Info("Match completed")

	if s.events != nil {
		if err := s.events.EmitMatchCompleted(ctx, result, req.PresetID); err != nil {
			log.WithError(err).Warn("Failed to emit match completed event")
		}
	}

	return result, nil
}

// resolveCriteria picks inline criteria or loads them from a preset
func (s *Service) resolveCriteria(ctx context.Context, req models.MatchRequest) (models.Criteria, error) {
	if req.Criteria != nil && req.PresetID != "" {
		return models.Criteria{}, httperror.NewHTTPError(http.StatusBadRequest, "criteria and preset_id are mutually exclusive")
	}

	if req.Criteria != nil {
		return *req.Criteria, nil
	}

	if req.PresetID == "" {
		return models.Criteria{}, httperror.NewHTTPError(http.StatusBadRequest, "either criteria or preset_id is required")
	}

	preset, err := s.presets.GetByID(ctx, req.PresetID)
	if err != nil {
		return models.Criteria{}, err
	}

	crit, err := preset.ParseCriteria()
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"preset_id": req.PresetID,
		}).Error("Stored preset holds unparseable criteria")
		return models.Criteria{}, httperror.NewHTTPErrorf(http.StatusInternalServerError, "preset %s holds invalid criteria", req.PresetID)
	}

	return crit, nil
}
