package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ramsey-B/graft/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string
}

// RequestID returns the request id for this message: the request_id header
// when present, otherwise the message key.
func (m *IncomingMessage) RequestID() string {
	if id := m.Headers["request_id"]; id != "" {
		return id
	}
	return m.Key
}

// ParseMatchRequest decodes the message value as a match request
func (m *IncomingMessage) ParseMatchRequest() (*models.MatchRequest, error) {
	var req models.MatchRequest
	if err := json.Unmarshal(m.Value, &req); err != nil {
		return nil, fmt.Errorf("failed to decode match request: %w", err)
	}
	return &req, nil
}
