// Package llm is the uniform contract for generative model providers:
// messages in, raw text out, or a typed failure.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Message struct {
	Role    string
	Content string
}

func System(content string) Message { return Message{Role: "system", Content: content} }
func User(content string) Message   { return Message{Role: "user", Content: content} }

type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSON asks the provider for a JSON object response when it supports one.
	JSON bool
}

type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Duration accepts "5s" style strings or integer nanoseconds in config files.
type Duration struct {
	time.Duration
}

type Config struct {
	// Type selects the implementation: oai_http, openai, mock; "" or none disables generation.
	Type    string   `json:"type" yaml:"type"`
	Model   string   `json:"model" yaml:"model"`
	BaseURL string   `json:"base_url,omitempty" yaml:"base_url"`
	APIKey  string   `json:"api_key,omitempty" yaml:"api_key"`
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout"`

	ChatCompletionsPath string `json:"chat_completions_path,omitempty" yaml:"chat_completions_path"`

	Temperature float64 `json:"temperature,omitempty" yaml:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty" yaml:"max_tokens"`

	// RateLimitRPS of 0 disables outbound rate limiting.
	RateLimitRPS   float64 `json:"rate_limit_rps,omitempty" yaml:"rate_limit_rps"`
	RateLimitBurst int     `json:"rate_limit_burst,omitempty" yaml:"rate_limit_burst"`
}

// Error is the typed failure every provider returns.
type Error struct {
	Provider string
	Timeout  bool
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return "llm error"
	}
	switch {
	case e.Timeout:
		return fmt.Sprintf("llm %s: timeout: %v", e.Provider, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("llm %s: status=%d: %v", e.Provider, e.Status, e.Err)
	default:
		return fmt.Sprintf("llm %s: %v", e.Provider, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap converts err into *Error, marking deadline expiry as a timeout.
// An existing *Error is returned unchanged.
func Wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	var le *Error
	if errors.As(err, &le) {
		return err
	}
	return &Error{
		Provider: provider,
		Timeout:  errors.Is(err, context.DeadlineExceeded) || isNetTimeout(err),
		Err:      err,
	}
}

func IsTimeout(err error) bool {
	var le *Error
	return errors.As(err, &le) && le.Timeout
}

func isNetTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
