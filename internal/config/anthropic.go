package config

import (
	"os"
	"sync"
)

type AnthropicConfig struct {
	APIKey string
	Model  string
}

var (
	anthropicConfig *AnthropicConfig
	anthropicOnce   sync.Once
)

func LoadAnthropicConfig() *AnthropicConfig {
	anthropicOnce.Do(func() {
		model := os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-sonnet-4-20250514"
		}
		anthropicConfig = &AnthropicConfig{
			APIKey: os.Getenv("ANTHROPIC_API_KEY"),
			Model:  model,
		}
	})
	return anthropicConfig
}
