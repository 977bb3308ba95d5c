package handler

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/relaydesk/relay/internal/service"
	"github.com/relaydesk/relay/pkg/logger"
)

const maxWebhookBody = 1 << 20 // 1MB

// WebhookHandler handles the inbound provider callback.
type WebhookHandler struct {
	relay  *service.RelayService
	logger *logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(relay *service.RelayService, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		relay:  relay,
		logger: log,
	}
}

// Receive handles POST /webhook/message. It answers 200 on best-effort
// success and 500 only on internal failure, so providers do not redeliver
// payloads this service chose to ignore.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		// Treat an unreadable or oversized body like any other unkeyable
		// payload: acknowledge it so the provider does not redeliver.
		h.logger.Warn("unreadable webhook body, ignoring", zap.Error(err))
		writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
		return
	}

	if err := h.relay.Process(r.Context(), body); err != nil {
		h.logger.Error("webhook processing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
