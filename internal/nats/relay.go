package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/relaydesk/relay/internal/model"
)

const (
	// StreamName is the name of the inbound events stream.
	StreamName = "RELAY_EVENTS"

	// SubjectPrefix is the prefix for all relay subjects.
	SubjectPrefix = "relay"
)

// EventRelay publishes normalized inbound events to JetStream so downstream
// consumers can replay or audit them.
type EventRelay struct {
	client *Client
}

// NewEventRelay creates a new event relay.
func NewEventRelay(client *Client) *EventRelay {
	return &EventRelay{client: client}
}

// EnsureStream ensures the events stream exists with proper configuration.
func (r *EventRelay) EnsureStream(ctx context.Context) error {
	js := r.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Normalized inbound webhook events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// InboundSubject returns the subject for a session's inbound events.
func InboundSubject(sessionID string) string {
	return fmt.Sprintf("%s.%s.inbound", SubjectPrefix, sessionID)
}

// PublishInbound publishes an inbound event and returns its stream sequence.
func (r *EventRelay) PublishInbound(ctx context.Context, note model.Notification) (uint64, error) {
	data, err := json.Marshal(note)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := r.client.JetStream().Publish(ctx, InboundSubject(note.SessionID), data)
	if err != nil {
		return 0, fmt.Errorf("failed to publish event: %w", err)
	}

	return ack.Sequence, nil
}
