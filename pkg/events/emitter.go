// Package events handles event emission for match runs and preset changes
package events

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	appctx "github.com/Ramsey-B/graft/pkg/context"
	"github.com/Ramsey-B/graft/pkg/kafka"
	"github.com/Ramsey-B/graft/pkg/models"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Emitter handles event emission for Graft
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitMatchCompleted emits a match completed event. The presetID is empty
// when the run used inline criteria.
func (e *Emitter) EmitMatchCompleted(ctx context.Context, result *models.MatchResult, presetID string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitMatchCompleted")
	defer span.End()

	stats := result.Statistics()

	// Events are keyed by the in-flight request id when one exists, so
	// consumers can correlate completions with submissions.
	matchID := appctx.GetRequestID(ctx)
	if matchID == "" {
		matchID = uuid.New().String()
	}

	event := &kafka.MatchEvent{
		EventType:      string(EventTypeMatchCompleted),
		MatchID:        matchID,
		Algorithm:      result.Algorithm,
		PresetID:       presetID,
		MatchCount:     stats.TotalMatches,
		UnmatchedCount: stats.UnmatchedCount,
		TotalScore:     stats.TotalScore,
		AverageScore:   stats.AverageScore,
		ExecutionTime:  stats.ExecutionTimeSeconds,
		SchemaVersion:  SchemaVersion,
	}

	if err := e.producer.PublishMatchEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit match.completed event")
		return err
	}

	return nil
}

// EmitPresetCreated emits a preset created event
func (e *Emitter) EmitPresetCreated(ctx context.Context, preset *models.CriteriaPreset) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitPresetCreated")
	defer span.End()

	event := &kafka.PresetEvent{
		EventType:     string(EventTypePresetCreated),
		PresetID:      preset.ID,
		Name:          preset.Name,
		SchemaVersion: SchemaVersion,
	}

	if err := e.producer.PublishPresetEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit preset.created event")
		return err
	}

	return nil
}

// EmitPresetUpdated emits a preset updated event
func (e *Emitter) EmitPresetUpdated(ctx context.Context, preset *models.CriteriaPreset) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitPresetUpdated")
	defer span.End()

	event := &kafka.PresetEvent{
		EventType:     string(EventTypePresetUpdated),
		PresetID:      preset.ID,
		Name:          preset.Name,
		SchemaVersion: SchemaVersion,
	}

	if err := e.producer.PublishPresetEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit preset.updated event")
		return err
	}

	return nil
}

// EmitPresetDeleted emits a preset deleted event
func (e *Emitter) EmitPresetDeleted(ctx context.Context, presetID string, name string) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitPresetDeleted")
	defer span.End()

	event := &kafka.PresetEvent{
		EventType:     string(EventTypePresetDeleted),
		PresetID:      presetID,
		Name:          name,
		SchemaVersion: SchemaVersion,
	}

	if err := e.producer.PublishPresetEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit preset.deleted event")
		return err
	}

	return nil
}
