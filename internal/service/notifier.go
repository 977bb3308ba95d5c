package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/relaydesk/relay/internal/model"
	"github.com/relaydesk/relay/pkg/logger"
	"github.com/relaydesk/relay/pkg/metrics"
)

// Notifier forwards inbound events to the workflow automation endpoint.
// Delivery is fire-and-forget: failures are logged, never retried, and never
// surfaced to the original caller.
type Notifier struct {
	url    string
	client *http.Client
	logger *logger.Logger
}

// NewNotifier creates a notifier for the given automation URL.
func NewNotifier(url string, log *logger.Logger) *Notifier {
	return &Notifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: log,
	}
}

// Notify posts the event to the automation URL.
func (n *Notifier) Notify(ctx context.Context, note model.Notification) {
	data, err := json.Marshal(note)
	if err != nil {
		n.logger.Warn("notification encode failed", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(data))
	if err != nil {
		n.logger.Warn("notification request failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.RecordNotification("error")
		n.logger.Warn("automation webhook unreachable",
			zap.String("session_id", note.SessionID), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusMultipleChoices {
		metrics.RecordNotification("rejected")
		n.logger.Warn("automation webhook rejected event",
			zap.String("session_id", note.SessionID),
			zap.Int("status", resp.StatusCode))
		return
	}

	metrics.RecordNotification("ok")
}
