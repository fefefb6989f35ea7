// Package processor runs match requests arriving over Kafka. It is the
// asynchronous counterpart of the match route: payloads share the HTTP
// request shape, and results leave through the same match.completed events.
package processor

import (
	"context"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	appctx "github.com/Ramsey-B/graft/pkg/context"
	"github.com/Ramsey-B/graft/pkg/kafka"
	"github.com/Ramsey-B/graft/pkg/matching"
	"github.com/Ramsey-B/graft/pkg/tracing"
)

// Processor consumes match request messages and runs them through the
// matching service.
type Processor struct {
	logger  ectologger.Logger
	service *matching.Service
}

// NewProcessor creates a new match request processor
func NewProcessor(logger ectologger.Logger, service *matching.Service) *Processor {
	return &Processor{
		logger:  logger,
		service: service,
	}
}

// ProcessMessage handles one incoming match request message. Requests the
// engine rejects are logged and skipped so a malformed message can never
// wedge the partition; only failures that can clear on redelivery are
// returned to the consumer uncommitted.
func (p *Processor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.ProcessMessage")
	defer span.End()

	requestID := msg.RequestID()
	if requestID != "" {
		ctx = appctx.SetRequestID(ctx, requestID)
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"topic":      msg.Topic,
		"offset":     msg.Offset,
		"request_id": requestID,
	})

	req, err := msg.ParseMatchRequest()
	if err != nil {
		log.WithError(err).Error("Skipping undecodable match request")
		return nil
	}

	result, err := p.service.Match(ctx, *req)
	if err != nil {
		if retryable(err) {
			log.WithError(err).Error("Match run failed, leaving message for redelivery")
			return err
		}
		log.WithError(err).Error("Skipping unrunnable match request")
		return nil
	}

	log.WithFields(map[string]any{
		"algorithm": result.Algorithm,
		"matches":   len(result.Matches),
		"unmatched": len(result.UnmatchedEntities),
	}).Info("Processed match request")
	return nil
}

// retryable reports whether redelivering the message could succeed. Engine
// rejections and HTTP 4xx failures are deterministic for a given payload;
// 5xx statuses cover infrastructure failures like a lost preset store.
func retryable(err error) bool {
	if matching.IsEngineError(err) {
		return false
	}
	if httperror.IsHTTPError(err) {
		return httperror.GetStatusCode(err) >= 500
	}
	return true
}
