// Package openaisdk implements llm.Provider with the official openai-go SDK.
package openaisdk

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/yungbote/hookbrief-backend/internal/platform/llm"
)

const name = "openai"

type Client struct {
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	opts        []option.RequestOption
}

func New(cfg llm.Config) (*Client, error) {
	return NewWithHTTPClient(cfg, nil)
}

// NewWithHTTPClient lets tests route SDK traffic through a custom RoundTripper.
func NewWithHTTPClient(cfg llm.Config, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api_key required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("openai: model required")
	}
	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(1),
	}
	if u := strings.TrimSpace(cfg.BaseURL); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		model:       strings.TrimSpace(cfg.Model),
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     timeout,
		opts:        opts,
	}, nil
}

func (c *Client) Name() string { return name }

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(m.Role)) {
		case "system":
			msgs = append(msgs, openai.SystemMessage(content))
		case "assistant":
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(content))
		default:
			msgs = append(msgs, openai.UserMessage(content))
		}
	}
	if len(msgs) == 0 {
		return "", &llm.Error{Provider: name, Err: errors.New("no messages")}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: msgs,
	}
	temp := c.temperature
	if req.Temperature > 0 {
		temp = req.Temperature
	}
	if temp > 0 {
		params.Temperature = openai.Float(temp)
	}
	maxTokens := c.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	if maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(maxTokens))
	}

	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	client := openai.NewClient(c.opts...)
	resp, err := client.Chat.Completions.New(ctx2, params)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &llm.Error{Provider: name, Err: errors.New("empty choices")}
	}
	return resp.Choices[0].Message.Content, nil
}

func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &llm.Error{
			Provider: name,
			Status:   apiErr.StatusCode,
			Timeout:  apiErr.StatusCode == http.StatusGatewayTimeout,
			Err:      err,
		}
	}
	return llm.Wrap(name, err)
}
