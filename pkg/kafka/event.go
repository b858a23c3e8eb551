package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event announces one change to a shopper's state. Key is the partition key:
// every event of one session shares it, so consumers see a session's changes
// in the order they happened.
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Key           string          `json:"key"`
	Subject       string          `json:"subject"`
	Op            string          `json:"op,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Source        string          `json:"source"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent wraps data for the given subject ("cart", "wishlist") of the
// session identified by key.
func NewEvent(eventType, key, subject, source string, data any) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Source:     source,
		Data:       raw,
	}, nil
}

func (e *Event) WithCorrelationID(id string) *Event {
	e.CorrelationID = id
	return e
}

// WithOp records the kind of mutation ("added", "removed", ...).
func (e *Event) WithOp(op string) *Event {
	e.Op = op
	return e
}

// Decode unmarshals the payload into target.
func (e *Event) Decode(target any) error {
	return json.Unmarshal(e.Data, target)
}

// message renders the event as a Kafka message on topic. The routing fields
// are duplicated into headers so consumers can filter without decoding.
func (e *Event) message(topic string) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event: %w", err)
	}

	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(e.Type)},
		{Key: "subject", Value: []byte(e.Subject)},
		{Key: "source", Value: []byte(e.Source)},
	}
	if e.Op != "" {
		headers = append(headers, kafka.Header{Key: "op", Value: []byte(e.Op)})
	}
	if e.CorrelationID != "" {
		headers = append(headers, kafka.Header{Key: "correlation_id", Value: []byte(e.CorrelationID)})
	}

	return kafka.Message{
		Topic:   topic,
		Key:     []byte(e.Key),
		Value:   value,
		Headers: headers,
		Time:    e.OccurredAt,
	}, nil
}
