package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for all messages published to Kafka.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlationId,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEvent creates an event envelope with a generated ID and the payload
// marshalled to JSON.
func NewEvent(eventType, source string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Source:     source,
		OccurredAt: time.Now().UTC(),
		Payload:    data,
	}, nil
}

// WithCorrelationID returns a copy of the event carrying the correlation ID.
func (e Event) WithCorrelationID(id string) Event {
	e.CorrelationID = id
	return e
}
