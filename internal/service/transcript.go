package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/relaydesk/relay/internal/model"
	"github.com/relaydesk/relay/internal/store"
	"github.com/relaydesk/relay/pkg/logger"
	"github.com/relaydesk/relay/pkg/metrics"
)

const sessionKeyPrefix = "session:"

// TranscriptService accumulates per-session conversation entries in the
// volatile store with a fixed retention window.
type TranscriptService struct {
	cache      store.Volatile
	sessionTTL time.Duration
	logger     *logger.Logger
}

// NewTranscriptService creates a new transcript service.
func NewTranscriptService(cache store.Volatile, sessionTTL time.Duration, log *logger.Logger) *TranscriptService {
	return &TranscriptService{
		cache:      cache,
		sessionTTL: sessionTTL,
		logger:     log,
	}
}

// Append adds an entry at the end of the session transcript and renews its
// retention window.
//
// The read-modify-write here is not atomic across processes: two concurrent
// appends to the same session can lose one entry, because the last writer
// stores its full list. This mirrors the store's plain get+set contract and
// is accepted for ephemeral chat memory.
func (s *TranscriptService) Append(ctx context.Context, sessionID string, entry model.Entry) error {
	entries := append(s.load(ctx, sessionID), entry)

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	if err := s.cache.Set(ctx, sessionKeyPrefix+sessionID, string(data), s.sessionTTL); err != nil {
		return fmt.Errorf("store transcript: %w", err)
	}

	metrics.TranscriptAppendsTotal.Inc()
	return nil
}

// History returns the current transcript for a session. Absent or malformed
// data reads as empty.
func (s *TranscriptService) History(ctx context.Context, sessionID string) []model.Entry {
	return s.load(ctx, sessionID)
}

func (s *TranscriptService) load(ctx context.Context, sessionID string) []model.Entry {
	raw, err := s.cache.Get(ctx, sessionKeyPrefix+sessionID)
	if err != nil {
		if !errors.Is(err, store.ErrCacheMiss) {
			s.logger.Warn("transcript read failed, treating as empty",
				zap.String("session_id", sessionID), zap.Error(err))
		}
		return nil
	}

	var entries []model.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn("malformed transcript, treating as empty",
			zap.String("session_id", sessionID))
		return nil
	}
	return entries
}
