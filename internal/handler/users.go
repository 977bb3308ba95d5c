package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/relaydesk/relay/internal/middleware"
	"github.com/relaydesk/relay/internal/model"
	"github.com/relaydesk/relay/internal/service"
	"github.com/relaydesk/relay/internal/webhook"
	"github.com/relaydesk/relay/pkg/logger"
)

// UserHandler handles user profile and memory endpoints.
type UserHandler struct {
	memory      *service.MemoryService
	transcripts *service.TranscriptService
	logger      *logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(memory *service.MemoryService, transcripts *service.TranscriptService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		memory:      memory,
		transcripts: transcripts,
		logger:      log,
	}
}

// Get handles GET /api/v1/users/{phone}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	if err := middleware.ValidatePhone(phone); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.memory.Lookup(r.Context(), phone)
	if err != nil {
		h.logger.Error("user lookup failed", zap.String("phone", phone), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, &model.LookupUserResponse{
		Data:   res.User,
		Source: res.Source,
	})
}

// Upsert handles POST /api/v1/users
func (h *UserHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req model.UpsertUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user := &model.User{
		Phone:  req.Phone,
		Name:   req.Name,
		Extras: req.Extras,
	}

	if err := h.memory.Upsert(r.Context(), user); err != nil {
		if errors.Is(err, service.ErrMissingPhone) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("user upsert failed", zap.String("phone", req.Phone), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, &model.LookupUserResponse{Data: user})
}

// Memory handles GET /api/v1/users/{phone}/memory
func (h *UserHandler) Memory(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	if err := middleware.ValidatePhone(phone); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID := webhook.SessionID(phone)
	entries := h.transcripts.History(r.Context(), sessionID)
	if entries == nil {
		entries = []model.Entry{}
	}

	writeJSON(w, http.StatusOK, &model.TranscriptResponse{
		SessionID: sessionID,
		Entries:   entries,
	})
}
