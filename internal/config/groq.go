package config

import (
	"os"
	"sync"
)

type GroqConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

var (
	groqConfig *GroqConfig
	groqOnce   sync.Once
)

func LoadGroqConfig() *GroqConfig {
	groqOnce.Do(func() {
		model := os.Getenv("GROQ_MODEL")
		if model == "" {
			model = "llama-3.1-70b-versatile"
		}
		baseURL := os.Getenv("GROQ_BASE_URL")
		if baseURL == "" {
			baseURL = "https://api.groq.com/openai/v1"
		}
		groqConfig = &GroqConfig{
			APIKey:  os.Getenv("GROQ_API_KEY"),
			Model:   model,
			BaseURL: baseURL,
		}
	})
	return groqConfig
}
