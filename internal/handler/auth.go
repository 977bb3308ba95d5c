package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/relaydesk/relay/internal/middleware"
	"github.com/relaydesk/relay/pkg/logger"
)

// AuthHandler issues JWTs for API clients that hold the static key.
type AuthHandler struct {
	apiKey    string
	jwtSecret string
	tokenTTL  time.Duration
	logger    *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(apiKey, jwtSecret string, tokenTTL time.Duration, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		apiKey:    apiKey,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    log,
	}
}

type tokenRequest struct {
	ClientID string `json:"client_id"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// Token handles POST /auth/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("X-API-Key")
	if key == "" {
		writeError(w, http.StatusUnauthorized, "missing api key")
		return
	}
	if key != h.apiKey {
		writeError(w, http.StatusForbidden, "invalid api key")
		return
	}

	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateClientID(req.ClientID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := middleware.NewToken(h.jwtSecret, req.ClientID, h.tokenTTL)
	if err != nil {
		h.logger.Error("token signing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, &tokenResponse{
		Token:     token,
		ExpiresIn: int64(h.tokenTTL.Seconds()),
	})
}
