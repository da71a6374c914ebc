package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const mistralEndpoint = "https://api.mistral.ai/v1/chat/completions"

// MistralProvider implements Provider against the Mistral chat completions
// API over raw HTTP.
type MistralProvider struct {
	client   *resty.Client
	apiKey   string
	model    string
	endpoint string
	policy   DispatchPolicy
}

// NewMistralProvider creates the mistral adapter.
func NewMistralProvider(apiKey, model string) (*MistralProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("mistral API key is required")
	}
	return &MistralProvider{
		client:   resty.New(),
		apiKey:   apiKey,
		model:    model,
		endpoint: mistralEndpoint,
		policy:   DispatchPolicy{CallTimeout: 30 * time.Second},
	}, nil
}

func (p *MistralProvider) Invoke(ctx context.Context, req Request) (string, error) {
	messages := []map[string]string{}
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.Prompt})

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+p.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model":       p.model,
			"messages":    messages,
			"temperature": req.Temperature,
			"max_tokens":  req.MaxTokens,
		}).
		Post(p.endpoint)
	if err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}

	if resp.StatusCode() == http.StatusTooManyRequests {
		return "", &ErrRateLimit{Err: &ProviderError{Provider: p.Name(), StatusCode: resp.StatusCode(), Err: fmt.Errorf("%s", resp.String())}}
	}
	if resp.IsError() {
		return "", &ProviderError{Provider: p.Name(), StatusCode: resp.StatusCode(), Err: fmt.Errorf("%s", resp.String())}
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", &ProviderError{Provider: p.Name(), Err: ErrEmptyCompletion}
	}
	return text, nil
}

func (p *MistralProvider) Name() string { return "mistral" }

func (p *MistralProvider) Policy() DispatchPolicy { return p.policy }
