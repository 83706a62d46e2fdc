package observability

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/hookbrief-backend/internal/platform/logger"
)

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge

	generations   *CounterVec
	genLatency    *HistogramVec
	providerCalls *CounterVec
	providerLat   *HistogramVec
	feedback      *CounterVec

	redisUp   *Gauge
	redisPing *Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("hb_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"hb_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("hb_api_inflight_requests", "In-flight API requests."),
		generations: NewCounterVec("hb_brief_generations_total", "Brief generations by mode/outcome.", []string{"mode", "outcome"}),
		genLatency: NewHistogramVec(
			"hb_brief_generation_duration_seconds",
			"Brief generation latency in seconds by mode.",
			[]string{"mode"},
			[]float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		providerCalls: NewCounterVec("hb_llm_requests_total", "Model calls by provider/status.", []string{"provider", "status"}),
		providerLat: NewHistogramVec(
			"hb_llm_request_duration_seconds",
			"Model call latency in seconds by provider.",
			[]string{"provider"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 20, 45, 90},
		),
		feedback:  NewCounterVec("hb_brief_feedback_total", "Recorded feedback by outcome.", []string{"outcome"}),
		redisUp:   NewGauge("hb_redis_up", "Redis connectivity (1=up, 0=down)."),
		redisPing: NewGauge("hb_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.generations, m.genLatency,
		m.providerCalls, m.providerLat,
		m.feedback,
		m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// ObserveGeneration records one finished brief request. outcome is "ok",
// "shared", a fallback reason, or an error kind.
func (m *Metrics) ObserveGeneration(mode, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.generations.Inc(mode, outcome)
	m.genLatency.Observe(dur.Seconds(), mode)
}

func (m *Metrics) ObserveProviderCall(provider, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.providerCalls.Inc(provider, status)
	m.providerLat.Observe(dur.Seconds(), provider)
}

func (m *Metrics) ObserveFeedback(outcome string) {
	if m != nil {
		m.feedback.Inc(outcome)
	}
}

// GenerationCount reads back one generation series.
func (m *Metrics) GenerationCount(mode, outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.generations.Value(mode, outcome)
}

// StartRedisCollector pings client every interval until ctx is done.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, client redis.UniversalClient, interval time.Duration) {
	if m == nil || client == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			start := time.Now()
			pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := client.Ping(pctx).Err()
			cancel()
			if err != nil {
				m.redisUp.Set(0)
				if log != nil {
					log.Debug("redis ping failed", "error", err)
				}
			} else {
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
