package llm

import (
	"context"

	"golang.org/x/time/rate"
)

type rateLimited struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithRateLimit bounds outbound calls to rps with the given burst.
// A non-positive rps returns p unchanged.
func WithRateLimit(p Provider, rps float64, burst int) Provider {
	if p == nil || rps <= 0 {
		return p
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimited{inner: p, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (r *rateLimited) Name() string { return r.inner.Name() }

func (r *rateLimited) Generate(ctx context.Context, req Request) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", Wrap(r.inner.Name(), err)
	}
	return r.inner.Generate(ctx, req)
}
