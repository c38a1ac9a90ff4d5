// Package event publishes search domain events to Kafka.
package event

import (
	"context"
	"fmt"
	"strconv"

	"github.com/movelaria/search-service/pkg/kafka"
	"github.com/movelaria/search-service/pkg/logger"
)

// Event types emitted by the search service.
const TypeSearchPerformed = "search.performed"

const eventSource = "search-service"

// SearchPerformed is the payload of a search.performed event, emitted when a
// search is recorded in the history.
type SearchPerformed struct {
	SearchHistoryID int64   `json:"idSearchHistory"`
	AccountID       int64   `json:"idAccount"`
	SearchTerm      string  `json:"searchTerm"`
	Filters         *string `json:"filters,omitempty"`
	ResultCount     int     `json:"resultCount"`
}

// Producer publishes search events. Keyed by account so per-account events
// stay ordered.
type Producer struct {
	producer *kafka.Producer
}

// NewProducer wraps a Kafka producer for search events.
func NewProducer(p *kafka.Producer) *Producer {
	return &Producer{producer: p}
}

// SearchPerformed publishes a search.performed event.
func (p *Producer) SearchPerformed(ctx context.Context, e SearchPerformed) error {
	evt, err := kafka.NewEvent(TypeSearchPerformed, eventSource, e)
	if err != nil {
		return fmt.Errorf("build search.performed event: %w", err)
	}
	if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
		evt = evt.WithCorrelationID(correlationID)
	}
	return p.producer.Publish(ctx, strconv.FormatInt(e.AccountID, 10), evt)
}
