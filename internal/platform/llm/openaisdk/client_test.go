package openaisdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestGenerate(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if !strings.HasSuffix(req.URL.Path, "/chat/completions") {
				t.Fatalf("path=%s", req.URL.Path)
			}
			var in map[string]any
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if in["model"] != "gpt-test" {
				t.Fatalf("model=%v", in["model"])
			}
			body, _ := json.Marshal(map[string]any{
				"id":      "chatcmpl-1",
				"object":  "chat.completion",
				"created": 0,
				"model":   "gpt-test",
				"choices": []map[string]any{{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": `{"spoken_hook_options":["A"]}`},
				}},
			})
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(bytes.NewReader(body)),
			}, nil
		}),
	}

	c, err := NewWithHTTPClient(llm.Config{Model: "gpt-test", APIKey: "sk-test", BaseURL: "http://upstream/v1/"}, client)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := c.Generate(context.Background(), llm.Request{Messages: []llm.Message{llm.System("s"), llm.User("u")}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `{"spoken_hook_options":["A"]}` {
		t.Fatalf("out=%q", out)
	}
}

func TestGenerateStatusError(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusBadRequest,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(strings.NewReader(`{"error":{"message":"bad","type":"invalid_request_error"}}`)),
			}, nil
		}),
	}
	c, _ := NewWithHTTPClient(llm.Config{Model: "gpt-test", APIKey: "sk-test", BaseURL: "http://upstream/v1/"}, client)
	_, err := c.Generate(context.Background(), llm.Request{Messages: []llm.Message{llm.User("u")}})
	var le *llm.Error
	if !errors.As(err, &le) || le.Status != http.StatusBadRequest {
		t.Fatalf("err=%v", err)
	}
}

func TestNewRequiresKeyAndModel(t *testing.T) {
	if _, err := New(llm.Config{Model: "m"}); err == nil {
		t.Fatalf("missing key accepted")
	}
	if _, err := New(llm.Config{APIKey: "k"}); err == nil {
		t.Fatalf("missing model accepted")
	}
}
