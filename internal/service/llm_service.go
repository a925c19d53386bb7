package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"go-auth-api/internal/llm"
	"go-auth-api/internal/model"
)

const defaultChatTemperature float32 = 0.2

type completerResolver interface {
	Resolve(provider string) (llm.Completer, string, error)
}

type llmRecorder interface {
	RecordLLM(provider string, err error)
}

type ChatService struct {
	providers completerResolver
	recorder  llmRecorder
}

func NewChatService(providers completerResolver, recorder llmRecorder) *ChatService {
	return &ChatService{providers: providers, recorder: recorder}
}

// Chat forwards one user message, with optional system prompt and history,
// to the selected provider.
func (s *ChatService) Chat(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error) {
	provider := providerName(req.Provider)
	client, defaultModel, err := s.providers.Resolve(provider)
	if err != nil {
		return model.ChatResponse{}, err
	}

	modelName := req.Model
	if modelName == "" {
		modelName = defaultModel
	}

	temperature := defaultChatTemperature
	if req.Temperature != nil && *req.Temperature > 0 {
		temperature = *req.Temperature
	}

	slog.InfoContext(ctx, "invoking llm", "provider", provider, "model", modelName)
	completion, err := client.Complete(ctx, llm.Request{
		Model:       modelName,
		Messages:    chatMessages(req),
		Temperature: temperature,
	})
	s.record(provider, err)
	if err != nil {
		return model.ChatResponse{}, err
	}

	return model.ChatResponse{Content: completion.Content, Model: modelName}, nil
}

func (s *ChatService) record(provider string, err error) {
	if s.recorder != nil {
		s.recorder.RecordLLM(provider, err)
	}
}

func chatMessages(req model.ChatRequest) []llm.Message {
	messages := make([]llm.Message, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: req.System})
	}
	for _, item := range req.History {
		role := llm.RoleAssistant
		switch item.Role {
		case llm.RoleSystem, llm.RoleUser:
			role = item.Role
		}
		messages = append(messages, llm.Message{Role: role, Content: item.Content})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Content: req.Message})
}

func providerName(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return model.ProviderOpenRouter
	}
	return provider
}

var jsonObjectPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// decodeLenient accepts either a bare JSON object or text that wraps one,
// such as a fenced code block.
func decodeLenient(text string, v any) bool {
	if json.Unmarshal([]byte(text), v) == nil {
		return true
	}
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return false
	}
	return json.Unmarshal([]byte(match), v) == nil
}
