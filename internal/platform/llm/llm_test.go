package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

type countingProvider struct{ calls int }

func (c *countingProvider) Name() string { return "counting" }
func (c *countingProvider) Generate(ctx context.Context, req Request) (string, error) {
	c.calls++
	return "ok", nil
}

func TestWrapMarksTimeouts(t *testing.T) {
	err := Wrap("p", fmt.Errorf("call: %w", context.DeadlineExceeded))
	if !IsTimeout(err) {
		t.Fatalf("deadline not marked timeout: %v", err)
	}
	if IsTimeout(Wrap("p", errors.New("boom"))) {
		t.Fatalf("plain error marked timeout")
	}
	typed := &Error{Provider: "p", Status: 500, Err: errors.New("x")}
	if Wrap("other", typed) != error(typed) {
		t.Fatalf("typed error rewrapped")
	}
	if Wrap("p", nil) != nil {
		t.Fatalf("nil wrapped")
	}
}

func TestRateLimitWaitsForToken(t *testing.T) {
	inner := &countingProvider{}
	p := WithRateLimit(inner, 1, 1)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatalf("second call within burst window should fail fast")
	}
	if inner.calls != 1 {
		t.Fatalf("calls=%d", inner.calls)
	}
	if WithRateLimit(inner, 0, 0) != Provider(inner) {
		t.Fatalf("zero rps should not wrap")
	}
}

func TestDurationDecoding(t *testing.T) {
	var c struct {
		Timeout Duration `json:"timeout" yaml:"timeout"`
	}
	if err := json.Unmarshal([]byte(`{"timeout":"1500ms"}`), &c); err != nil || c.Timeout.Duration != 1500*time.Millisecond {
		t.Fatalf("json string: %v %v", err, c.Timeout)
	}
	if err := json.Unmarshal([]byte(`{"timeout":2000000000}`), &c); err != nil || c.Timeout.Duration != 2*time.Second {
		t.Fatalf("json int: %v %v", err, c.Timeout)
	}
	if err := yaml.Unmarshal([]byte("timeout: 30s\n"), &c); err != nil || c.Timeout.Duration != 30*time.Second {
		t.Fatalf("yaml: %v %v", err, c.Timeout)
	}
}
