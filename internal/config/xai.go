package config

import (
	"os"
	"sync"
)

type XAIConfig struct {
	APIKey        string
	Model         string
	FallbackModel string
}

var (
	xaiConfig *XAIConfig
	xaiOnce   sync.Once
)

func LoadXAIConfig() *XAIConfig {
	xaiOnce.Do(func() {
		model := os.Getenv("XAI_MODEL")
		if model == "" {
			model = "grok-4-1-fast-reasoning"
		}
		fallback := os.Getenv("XAI_FALLBACK_MODEL")
		if fallback == "" {
			fallback = "grok-beta"
		}
		xaiConfig = &XAIConfig{
			APIKey:        os.Getenv("XAI_API_KEY"),
			Model:         model,
			FallbackModel: fallback,
		}
	})
	return xaiConfig
}
