package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relaydesk/relay/internal/model"
	"github.com/relaydesk/relay/internal/webhook"
	"github.com/relaydesk/relay/pkg/logger"
	"github.com/relaydesk/relay/pkg/metrics"
)

// EventNotifier delivers an event to the automation workflow. Implementations
// swallow their own failures.
type EventNotifier interface {
	Notify(ctx context.Context, note model.Notification)
}

// EventPublisher publishes an event to the JetStream relay.
type EventPublisher interface {
	PublishInbound(ctx context.Context, note model.Notification) (uint64, error)
}

// RelayService processes normalized inbound webhook events: it records the
// message in the session transcript, captures self-reported profile data,
// and forwards the event downstream.
type RelayService struct {
	memory      *MemoryService
	transcripts *TranscriptService
	notifier    EventNotifier
	events      EventPublisher
	logger      *logger.Logger
}

// NewRelayService creates a new relay service. notifier and events may be
// nil when the corresponding destination is not configured.
func NewRelayService(
	memory *MemoryService,
	transcripts *TranscriptService,
	notifier EventNotifier,
	events EventPublisher,
	log *logger.Logger,
) *RelayService {
	return &RelayService{
		memory:      memory,
		transcripts: transcripts,
		notifier:    notifier,
		events:      events,
		logger:      log,
	}
}

// Process handles one raw webhook payload. Events without an identifiable
// sender are ignored rather than rejected: providers redeliver on non-2xx
// responses, and an unkeyable payload can never be processed on redelivery
// either.
func (s *RelayService) Process(ctx context.Context, payload []byte) error {
	msg, ok := webhook.Normalize(payload)
	if !ok {
		s.logger.Warn("inbound event without sender, ignoring")
		metrics.RecordWebhookEvent("unknown", "ignored")
		return nil
	}

	sessionID := webhook.SessionID(msg.From)
	if sessionID == "" {
		s.logger.Warn("inbound event with unkeyable sender, ignoring",
			zap.String("from", msg.From))
		metrics.RecordWebhookEvent(msg.Provider, "ignored")
		return nil
	}

	now := time.Now().UTC()
	entry := model.Entry{Role: model.RoleUser, Text: msg.Body, Time: now}
	if err := s.transcripts.Append(ctx, sessionID, entry); err != nil {
		metrics.RecordWebhookEvent(msg.Provider, "error")
		return fmt.Errorf("record inbound message: %w", err)
	}

	if name, found := webhook.CaptureName(msg.Body); found {
		if err := s.memory.Upsert(ctx, &model.User{Phone: sessionID, Name: name}); err != nil {
			metrics.RecordWebhookEvent(msg.Provider, "error")
			return fmt.Errorf("capture profile: %w", err)
		}
	}

	note := model.Notification{
		SessionID:  sessionID,
		From:       msg.From,
		Body:       msg.Body,
		ReceivedAt: now,
	}

	if s.notifier != nil {
		// Fire-and-forget: the POST must not block the provider's callback
		// and must survive the handler returning.
		go s.notifier.Notify(context.WithoutCancel(ctx), note)
	}

	if s.events != nil {
		if _, err := s.events.PublishInbound(ctx, note); err != nil {
			s.logger.Warn("event relay publish failed",
				zap.String("session_id", sessionID), zap.Error(err))
		} else {
			metrics.EventRelayPublishedTotal.Inc()
		}
	}

	metrics.RecordWebhookEvent(msg.Provider, "processed")
	return nil
}
