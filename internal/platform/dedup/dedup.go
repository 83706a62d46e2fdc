// Package dedup coalesces concurrent executions of the same logical unit of
// work. Callers sharing a key while a call is outstanding all receive the
// result of a single execution.
package dedup

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yungbote/hookbrief-backend/internal/platform/apierr"
	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

var (
	ErrShapeMismatch  = errors.New("dedup: in-flight request for key has a different shape")
	ErrTooManyWaiters = errors.New("dedup: too many waiters for key")
	ErrEmptyKey       = errors.New("dedup: key required")
	ErrWorkTimeout    = errors.New("dedup: work timed out")
)

type Config struct {
	// WorkTimeout bounds a single execution. The key is released when it fires.
	WorkTimeout time.Duration
	// MaxWaiters caps callers attached to one key (primary included). 0 = unbounded.
	MaxWaiters int
}

func DefaultConfig() Config {
	return Config{WorkTimeout: 90 * time.Second, MaxWaiters: 64}
}

// Work is executed at most once per in-flight key. ctx is detached from the
// primary caller's cancellation and carries the WorkTimeout deadline.
type Work func(ctx context.Context) (any, error)

type inflight struct {
	shape   string
	waiters int
	started time.Time
}

type Group struct {
	cfg Config
	log *logger.Logger

	sf singleflight.Group

	mu    sync.Mutex
	calls map[string]*inflight
}

func New(cfg Config, log *logger.Logger) *Group {
	if cfg.WorkTimeout <= 0 {
		cfg.WorkTimeout = DefaultConfig().WorkTimeout
	}
	if cfg.MaxWaiters < 0 {
		cfg.MaxWaiters = 0
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Group{
		cfg:   cfg,
		log:   log.With("component", "Dedup"),
		calls: map[string]*inflight{},
	}
}

// Key joins a namespace label and a subject id ("ai-brief:p1").
func Key(namespace, subjectID string) string {
	return strings.TrimSpace(namespace) + ":" + strings.TrimSpace(subjectID)
}

// Do runs work for key unless an execution is already outstanding, in which
// case it waits for and returns that execution's result. isPrimary is true
// only for the caller whose work function actually ran.
//
// A follower presenting a different shape, or arriving when MaxWaiters is
// reached, gets a CONFLICT error and does not attach. Cancelling ctx detaches
// only this caller; the shared execution keeps running for other waiters.
func (g *Group) Do(ctx context.Context, key, shape string, work Work) (v any, isPrimary bool, err error) {
	if strings.TrimSpace(key) == "" {
		return nil, false, apierr.Validation("dedup_key_required", ErrEmptyKey)
	}
	if work == nil {
		return nil, false, errors.New("dedup: work required")
	}

	primary := false
	run := func() (any, error) {
		primary = true
		defer g.release(key)
		return g.execute(ctx, key, work)
	}

	g.mu.Lock()
	c, exists := g.calls[key]
	if exists {
		if c.shape != shape {
			g.mu.Unlock()
			g.log.Warn("dedup shape conflict", "key", key)
			return nil, false, apierr.Conflict("dedup_shape_conflict", ErrShapeMismatch)
		}
		if g.cfg.MaxWaiters > 0 && c.waiters >= g.cfg.MaxWaiters {
			g.mu.Unlock()
			g.log.Warn("dedup backpressure", "key", key, "waiters", c.waiters)
			return nil, false, apierr.Conflict("dedup_backpressure", ErrTooManyWaiters)
		}
		c.waiters++
	} else {
		c = &inflight{shape: shape, waiters: 1, started: time.Now()}
		g.calls[key] = c
	}
	// Registered under mu so that release (which also takes mu) cannot slip
	// between bookkeeping and the singleflight join.
	ch := g.sf.DoChan(key, run)
	g.mu.Unlock()

	select {
	case res := <-ch:
		return res.Val, primary, res.Err
	case <-ctx.Done():
		g.detach(key, c)
		return nil, false, ctx.Err()
	}
}

// execute runs work on its own goroutine so a work function that ignores its
// context still cannot hold the key past WorkTimeout.
func (g *Group) execute(parent context.Context, key string, work Work) (any, error) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(parent), g.cfg.WorkTimeout)
	defer cancel()

	type outcome struct {
		val any
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				g.log.Error("dedup work panicked", "key", key, "panic", rec, "stack", string(debug.Stack()))
				done <- outcome{err: fmt.Errorf("dedup: work panicked: %v", rec)}
			}
		}()
		v, err := work(wctx)
		done <- outcome{val: v, err: err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-wctx.Done():
		g.log.Warn("dedup work timed out", "key", key, "timeout_ms", g.cfg.WorkTimeout.Milliseconds())
		return nil, fmt.Errorf("%w: key=%s", ErrWorkTimeout, key)
	}
}

// InFlight reports the number of keys with an outstanding execution.
func (g *Group) InFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// Waiters reports the callers currently attached to key, primary included.
func (g *Group) Waiters(key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.calls[key]; ok {
		return c.waiters
	}
	return 0
}

func (g *Group) release(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.calls[key]; ok {
		g.log.Debug("dedup release", "key", key, "waiters", c.waiters, "duration_ms", time.Since(c.started).Milliseconds())
	}
	delete(g.calls, key)
	g.sf.Forget(key)
}

func (g *Group) detach(key string, c *inflight) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.calls[key]; ok && cur == c && c.waiters > 0 {
		c.waiters--
	}
}
