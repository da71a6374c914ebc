package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const xaiEndpoint = "https://api.x.ai/v1/chat/completions"

// GrokProvider implements Provider against the xAI chat completions API over
// raw HTTP. If the primary model is rejected (404/403/400) the call is
// repeated once with the fallback alias.
type GrokProvider struct {
	client        *resty.Client
	apiKey        string
	model         string
	fallbackModel string
	endpoint      string
	policy        DispatchPolicy
}

// NewGrokProvider creates the grok adapter. The long timeout accounts for
// reasoning-model latency.
func NewGrokProvider(apiKey, model, fallbackModel string) (*GrokProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("xai API key is required")
	}
	return &GrokProvider{
		client:        resty.New(),
		apiKey:        apiKey,
		model:         model,
		fallbackModel: fallbackModel,
		endpoint:      xaiEndpoint,
		policy:        DispatchPolicy{CallTimeout: 120 * time.Second},
	}, nil
}

func (p *GrokProvider) Invoke(ctx context.Context, req Request) (string, error) {
	raw, err := p.complete(ctx, p.model, req)
	if err == nil {
		return raw, nil
	}

	var pe *ProviderError
	if p.fallbackModel != "" && errors.As(err, &pe) && modelRejected(pe.StatusCode) {
		log.Printf("grok: model %s rejected (%d), retrying with %s", p.model, pe.StatusCode, p.fallbackModel)
		return p.complete(ctx, p.fallbackModel, req)
	}
	return "", err
}

func (p *GrokProvider) complete(ctx context.Context, model string, req Request) (string, error) {
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
			"model":       model,
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

func (p *GrokProvider) Name() string { return "grok" }

func (p *GrokProvider) Policy() DispatchPolicy { return p.policy }

func modelRejected(status int) bool {
	return status == http.StatusBadRequest ||
		status == http.StatusForbidden ||
		status == http.StatusNotFound
}
