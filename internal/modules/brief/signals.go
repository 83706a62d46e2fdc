package brief

import (
	"context"
	"encoding/json"
	"time"

	types "github.com/yungbote/hookbrief-backend/internal/domain/brief"
	"github.com/yungbote/hookbrief-backend/internal/platform/cache"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

type cachedSignals struct {
	inner SignalStore
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedSignalStore serves Signals and Exemplars from c for ttl. Recording
// an outcome drops the subject's cached signals. Cache failures fall through
// to inner.
func NewCachedSignalStore(inner SignalStore, c cache.Cache, ttl time.Duration, log *logger.Logger) SignalStore {
	if c == nil || ttl <= 0 {
		return inner
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &cachedSignals{inner: inner, cache: c, ttl: ttl, log: log.With("component", "SignalCache")}
}

func signalsKey(subjectID string) string { return "signals:" + subjectID }
func exemplarsKey(category string) string { return "exemplars:" + category }

func (s *cachedSignals) Signals(ctx context.Context, subjectID string) ([]types.HistoricalSignal, error) {
	var out []types.HistoricalSignal
	if s.load(ctx, signalsKey(subjectID), &out) {
		return out, nil
	}
	out, err := s.inner.Signals(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, signalsKey(subjectID), out)
	return out, nil
}

func (s *cachedSignals) Exemplars(ctx context.Context, category string) ([]string, error) {
	var out []string
	if s.load(ctx, exemplarsKey(category), &out) {
		return out, nil
	}
	out, err := s.inner.Exemplars(ctx, category)
	if err != nil {
		return nil, err
	}
	s.store(ctx, exemplarsKey(category), out)
	return out, nil
}

func (s *cachedSignals) RecordOutcome(ctx context.Context, subjectID, text string, outcome types.Outcome, at time.Time) (*types.HistoricalSignal, error) {
	sig, err := s.inner.RecordOutcome(ctx, subjectID, text, outcome, at)
	if err != nil {
		return nil, err
	}
	if derr := s.cache.Delete(ctx, signalsKey(subjectID)); derr != nil {
		s.log.Warn("signal cache invalidate failed", "subject_id", subjectID, "error", derr)
	}
	return sig, nil
}

func (s *cachedSignals) load(ctx context.Context, key string, dst any) bool {
	b, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("signal cache get failed", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		s.log.Warn("signal cache entry unreadable", "key", key, "error", err)
		return false
	}
	return true
}

func (s *cachedSignals) store(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, b, s.ttl); err != nil {
		s.log.Warn("signal cache set failed", "key", key, "error", err)
	}
}
