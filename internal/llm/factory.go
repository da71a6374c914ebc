package llm

import (
	"context"
	"log"

	"github.com/prajwalmandlik2004/indx-corporate/internal/config"
)

// BuildProviders assembles every adapter whose API key is configured, each
// wrapped with the retry policy. A missing key skips that backend with a log
// line instead of failing startup, so a partially configured deployment
// still analyzes with the providers it has.
func BuildProviders(ctx context.Context, retry RetryConfig) []Provider {
	var providers []Provider

	add := func(name string, p Provider, err error) {
		if err != nil {
			log.Printf("provider %s disabled: %v", name, err)
			return
		}
		providers = append(providers, WithRetry(p, retry))
	}

	openAICfg := config.LoadOpenAIConfig()
	p, err := NewOpenAIProvider(openAICfg.APIKey, openAICfg.Model)
	add("gpt4o", p, err)

	anthropicCfg := config.LoadAnthropicConfig()
	a, err := NewAnthropicProvider(anthropicCfg.APIKey, anthropicCfg.Model)
	add("claude", a, err)

	xaiCfg := config.LoadXAIConfig()
	g, err := NewGrokProvider(xaiCfg.APIKey, xaiCfg.Model, xaiCfg.FallbackModel)
	add("grok", g, err)

	groqCfg := config.LoadGroqConfig()
	q, err := NewGroqProvider(groqCfg.APIKey, groqCfg.Model, groqCfg.BaseURL)
	add("groq", q, err)

	mistralCfg := config.LoadMistralConfig()
	m, err := NewMistralProvider(mistralCfg.APIKey, mistralCfg.Model)
	add("mistral", m, err)

	geminiCfg := config.LoadGeminiConfig()
	if geminiCfg.APIKey != "" {
		gm, err := NewGeminiProvider(ctx, geminiCfg.APIKey, geminiCfg.Model)
		add("gemini", gm, err)
	} else {
		log.Printf("provider gemini disabled: GEMINI_API_KEY not set")
	}

	return providers
}
