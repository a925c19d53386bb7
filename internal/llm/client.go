package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"go-auth-api/internal/model"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

const (
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultOpenRouterModel = "openrouter/auto"
	defaultOpenRouterURL   = "https://openrouter.ai/api/v1"
)

type Message struct {
	Role    string
	Content string
}

type Request struct {
	Model       string
	Messages    []Message
	Temperature float32
}

type Completion struct {
	Content string
	Model   string
}

type Completer interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

// NotConfiguredError reports a provider whose API key is missing.
type NotConfiguredError struct {
	Setting string
}

func (e *NotConfiguredError) Error() string {
	return e.Setting + " is not configured"
}

func (e *NotConfiguredError) Unwrap() error {
	return model.ErrProviderNotConfigured
}

type Config struct {
	OpenAIAPIKey       string
	OpenAIModel        string
	OpenAIBaseURL      string
	OpenRouterAPIKey   string
	OpenRouterModel    string
	OpenRouterBaseURL  string
	OpenRouterReferer  string
	OpenRouterAppTitle string
	HTTPClient         *http.Client
}

// Client talks to one OpenAI-compatible endpoint.
type Client struct {
	api *openai.Client
}

func (c *Client) Complete(ctx context.Context, req Request) (Completion, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return Completion{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, errors.New("chat completion: empty response")
	}

	modelName := req.Model
	if modelName == "" {
		modelName = resp.Model
	}
	return Completion{Content: resp.Choices[0].Message.Content, Model: modelName}, nil
}

// Providers builds clients lazily from one immutable Config.
type Providers struct {
	cfg Config
}

func NewProviders(cfg Config) *Providers {
	return &Providers{cfg: cfg}
}

// Resolve returns the client for provider and the model to use when the
// caller did not pick one. An empty provider means openrouter.
func (p *Providers) Resolve(provider string) (Completer, string, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", model.ProviderOpenRouter:
		return p.openRouter()
	case model.ProviderOpenAI:
		return p.openAI()
	default:
		return nil, "", fmt.Errorf("%w: %q", model.ErrUnknownProvider, provider)
	}
}

func (p *Providers) openAI() (Completer, string, error) {
	if p.cfg.OpenAIAPIKey == "" {
		return nil, "", &NotConfiguredError{Setting: "OPENAI_API_KEY"}
	}

	conf := openai.DefaultConfig(p.cfg.OpenAIAPIKey)
	if p.cfg.OpenAIBaseURL != "" {
		conf.BaseURL = p.cfg.OpenAIBaseURL
	}
	if p.cfg.HTTPClient != nil {
		conf.HTTPClient = p.cfg.HTTPClient
	}

	return &Client{api: openai.NewClientWithConfig(conf)}, orDefault(p.cfg.OpenAIModel, defaultOpenAIModel), nil
}

func (p *Providers) openRouter() (Completer, string, error) {
	if p.cfg.OpenRouterAPIKey == "" {
		return nil, "", &NotConfiguredError{Setting: "OPENROUTER_API_KEY"}
	}

	conf := openai.DefaultConfig(p.cfg.OpenRouterAPIKey)
	conf.BaseURL = orDefault(p.cfg.OpenRouterBaseURL, defaultOpenRouterURL)

	headers := http.Header{}
	if p.cfg.OpenRouterReferer != "" {
		headers.Set("HTTP-Referer", p.cfg.OpenRouterReferer)
	}
	if p.cfg.OpenRouterAppTitle != "" {
		headers.Set("X-Title", p.cfg.OpenRouterAppTitle)
	}

	base := http.DefaultTransport
	timeout := p.cfg.httpTimeout()
	if p.cfg.HTTPClient != nil && p.cfg.HTTPClient.Transport != nil {
		base = p.cfg.HTTPClient.Transport
	}
	conf.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: &headerTransport{base: base, headers: headers},
	}

	return &Client{api: openai.NewClientWithConfig(conf)}, orDefault(p.cfg.OpenRouterModel, defaultOpenRouterModel), nil
}

func (c Config) httpTimeout() time.Duration {
	if c.HTTPClient == nil {
		return 0
	}
	return c.HTTPClient.Timeout
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	for key, values := range t.headers {
		for _, v := range values {
			clone.Header.Add(key, v)
		}
	}
	return t.base.RoundTrip(clone)
}

func orDefault(v string, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
