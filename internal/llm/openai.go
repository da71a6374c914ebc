package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider on the OpenAI chat completions SDK.
// It also serves any OpenAI-compatible backend (Groq) via BaseURL.
type OpenAIProvider struct {
	client *openai.Client
	name   string
	model  string
	policy DispatchPolicy
}

// NewOpenAIProvider creates the gpt-4o adapter.
func NewOpenAIProvider(apiKey, model string) (*OpenAIProvider, error) {
	return newOpenAICompatible("gpt4o", apiKey, model, "")
}

func newOpenAICompatible(name, apiKey, model, baseURL string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s API key is required", name)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		name:   name,
		model:  model,
		policy: DispatchPolicy{CallTimeout: 60 * time.Second},
	}, nil
}

func (p *OpenAIProvider) Invoke(ctx context.Context, req Request) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", p.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: p.name, Err: ErrEmptyCompletion}
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) Policy() DispatchPolicy { return p.policy }

func (p *OpenAIProvider) mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return &ErrRateLimit{Err: &ProviderError{Provider: p.name, StatusCode: apiErr.HTTPStatusCode, Err: err}}
		}
		return &ProviderError{Provider: p.name, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	return &ProviderError{Provider: p.name, Err: err}
}
