// Package service provides business logic for the relay.
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

const userKeyPrefix = "user:"

// ErrMissingPhone is returned when an upsert lacks the identifier field.
var ErrMissingPhone = errors.New("phone is required")

// Result carries a resolved user record with its provenance. User is nil
// when the phone is unknown to both stores.
type Result struct {
	User   *model.User
	Source model.Source
}

// MemoryService resolves user records across the volatile and durable
// stores: cache-aside reads, write-through upserts.
type MemoryService struct {
	cache    store.Volatile
	users    store.Users
	cacheTTL time.Duration
	logger   *logger.Logger
}

// NewMemoryService creates a new memory service.
func NewMemoryService(cache store.Volatile, users store.Users, cacheTTL time.Duration, log *logger.Logger) *MemoryService {
	return &MemoryService{
		cache:    cache,
		users:    users,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// Lookup fetches a user by phone. The volatile store is consulted first; on
// a miss the durable store is read and, when the record exists, the cache is
// repopulated best-effort. A volatile store failure never fails the read; a
// durable store failure does.
func (s *MemoryService) Lookup(ctx context.Context, phone string) (*Result, error) {
	key := userKeyPrefix + phone

	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var user model.User
		if jerr := json.Unmarshal([]byte(raw), &user); jerr == nil {
			metrics.RecordLookup(string(model.SourceCache))
			return &Result{User: &user, Source: model.SourceCache}, nil
		}
		// Malformed cache data falls through to the durable store and is
		// overwritten by the write-back below.
		s.logger.Warn("malformed cache entry", zap.String("key", key))
	case errors.Is(err, store.ErrCacheMiss):
	default:
		s.logger.Warn("volatile store read failed, falling back to durable",
			zap.String("key", key), zap.Error(err))
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		metrics.RecordLookup("miss")
		return &Result{}, nil
	}

	s.populate(ctx, key, user)
	metrics.RecordLookup(string(model.SourceDurable))
	return &Result{User: user, Source: model.SourceDurable}, nil
}

// Upsert writes a record to the durable store and refreshes its cache entry
// so a read immediately after the write cannot observe stale data.
func (s *MemoryService) Upsert(ctx context.Context, user *model.User) error {
	if user == nil || user.Phone == "" {
		return ErrMissingPhone
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		metrics.UserUpsertsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("upsert user: %w", err)
	}

	s.populate(ctx, userKeyPrefix+user.Phone, user)
	metrics.UserUpsertsTotal.WithLabelValues("ok").Inc()
	return nil
}

// populate writes a record into the cache, best effort. Failures are logged
// and swallowed; the durable store remains the source of truth.
func (s *MemoryService) populate(ctx context.Context, key string, user *model.User) {
	data, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.cacheTTL); err != nil {
		metrics.CacheWriteFailuresTotal.Inc()
		s.logger.Warn("cache write-back failed", zap.String("key", key), zap.Error(err))
	}
}
