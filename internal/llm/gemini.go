package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider on the Google Gemini SDK. The free-tier
// RPM ceiling is low, so its policy serializes dispatch with a minimum delay
// between calls; 429 handling happens in the retry decorator.
type GeminiProvider struct {
	client *genai.Client
	model  string
	policy DispatchPolicy
}

// NewGeminiProvider creates the gemini adapter.
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  model,
		policy: DispatchPolicy{
			Serialized:  true,
			MinDelay:    4 * time.Second,
			CallTimeout: 120 * time.Second,
		},
	}, nil
}

func (p *GeminiProvider) Invoke(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(req.MaxTokens),
		ResponseMIMEType: "application/json",
	}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", p.mapError(err)
	}

	if err := validateGeminiResponse(result); err != nil {
		return "", &ProviderError{Provider: p.Name(), Err: err}
	}

	return result.Text(), nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Policy() DispatchPolicy { return p.policy }

func (p *GeminiProvider) mapError(err error) error {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return &ErrRateLimit{Err: &ProviderError{Provider: p.Name(), StatusCode: apiErr.Code, Err: err}}
		}
		return &ProviderError{Provider: p.Name(), StatusCode: apiErr.Code, Err: err}
	}
	return &ProviderError{Provider: p.Name(), Err: err}
}

func validateGeminiResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ErrEmptyCompletion
	}
	return nil
}
