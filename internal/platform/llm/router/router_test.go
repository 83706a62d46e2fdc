package router

import (
	"testing"

	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      llm.Config
		wantName string
		wantNil  bool
		wantErr  bool
	}{
		{name: "disabled", cfg: llm.Config{}, wantNil: true},
		{name: "none", cfg: llm.Config{Type: "none"}, wantNil: true},
		{name: "mock", cfg: llm.Config{Type: "mock"}, wantName: "mock"},
		{name: "mock rate limited", cfg: llm.Config{Type: "mock", RateLimitRPS: 5}, wantName: "mock"},
		{name: "oai http", cfg: llm.Config{Type: "oai_http", BaseURL: "http://x", Model: "m"}, wantName: "oai_http"},
		{name: "oai http missing url", cfg: llm.Config{Type: "oai_http", Model: "m"}, wantErr: true},
		{name: "openai sdk", cfg: llm.Config{Type: "openai", APIKey: "k", Model: "m"}, wantName: "openai"},
		{name: "unknown", cfg: llm.Config{Type: "carrier_pigeon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if tt.wantNil {
				if p != nil {
					t.Fatalf("expected nil provider, got %s", p.Name())
				}
				return
			}
			if p == nil || p.Name() != tt.wantName {
				t.Fatalf("provider=%v", p)
			}
		})
	}
}
