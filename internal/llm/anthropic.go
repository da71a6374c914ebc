package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements Provider on the Anthropic Messages SDK.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
	policy DispatchPolicy
}

// NewAnthropicProvider creates the claude adapter.
func NewAnthropicProvider(apiKey, model string) (*AnthropicProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicProvider{
		client: &client,
		model:  model,
		policy: DispatchPolicy{CallTimeout: 60 * time.Second},
	}, nil
}

func (p *AnthropicProvider) Invoke(ctx context.Context, req Request) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			{
				Role: anthropic.MessageParamRoleUser,
				Content: []anthropic.ContentBlockParamUnion{
					anthropic.NewTextBlock(req.Prompt),
				},
			},
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", p.mapError(err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &ProviderError{Provider: p.Name(), Err: ErrEmptyCompletion}
}

func (p *AnthropicProvider) Name() string { return "claude" }

func (p *AnthropicProvider) Policy() DispatchPolicy { return p.policy }

func (p *AnthropicProvider) mapError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusTooManyRequests {
			return &ErrRateLimit{Err: &ProviderError{Provider: p.Name(), StatusCode: apiErr.StatusCode, Err: err}}
		}
		return &ProviderError{Provider: p.Name(), StatusCode: apiErr.StatusCode, Err: err}
	}
	return &ProviderError{Provider: p.Name(), Err: err}
}
