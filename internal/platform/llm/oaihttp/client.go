// Package oaihttp talks to any OpenAI-compatible chat completions endpoint over plain HTTP.
package oaihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
)

const name = "oai_http"

type Client struct {
	baseURL  string
	apiKey   string
	model    string
	chatPath string
	timeout  time.Duration

	temperature float64
	maxTokens   int

	httpClient *http.Client
}

func New(cfg llm.Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("oai_http: base_url required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("oai_http: model required")
	}

	chatPath := strings.TrimSpace(cfg.ChatCompletionsPath)
	if chatPath == "" {
		chatPath = "/v1/chat/completions"
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		chatPath:    chatPath,
		timeout:     timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Transport: tr},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(cfg llm.Config, httpClient *http.Client) (*Client, error) {
	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

func (c *Client) Name() string { return name }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature,omitempty"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
}

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	msgs := toChatMessages(req.Messages)
	if len(msgs) == 0 {
		return "", &llm.Error{Provider: name, Err: errors.New("no messages")}
	}

	body := chatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if req.Temperature > 0 {
		body.Temperature = req.Temperature
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = req.MaxTokens
	}
	if req.JSON {
		body.ResponseFormat = map[string]any{"type": "json_object"}
	}

	var resp chatCompletionResponse
	if err := c.doJSON(ctx, http.MethodPost, c.chatPath, body, &resp); err != nil {
		return "", llm.Wrap(name, err)
	}
	text := extractChatText(resp)
	if strings.TrimSpace(text) == "" {
		return "", &llm.Error{Provider: name, Err: errors.New("empty upstream completion")}
	}
	return text, nil
}

func toChatMessages(messages []llm.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		role := strings.TrimSpace(m.Role)
		content := strings.TrimSpace(m.Content)
		if role == "" || content == "" {
			continue
		}
		out = append(out, chatMessage{Role: role, Content: content})
	}
	return out
}

func extractChatText(resp chatCompletionResponse) string {
	for _, ch := range resp.Choices {
		if strings.TrimSpace(ch.Message.Content) != "" {
			return ch.Message.Content
		}
		if strings.TrimSpace(ch.Text) != "" {
			return ch.Text
		}
	}
	return ""
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &llm.Error{
			Provider: name,
			Status:   resp.StatusCode,
			Timeout:  resp.StatusCode == http.StatusGatewayTimeout,
			Err:      fmt.Errorf("upstream http error: %s", strings.TrimSpace(string(raw))),
		}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
