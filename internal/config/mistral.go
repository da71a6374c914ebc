package config

import (
	"os"
	"sync"
)

type MistralConfig struct {
	APIKey string
	Model  string
}

var (
	mistralConfig *MistralConfig
	mistralOnce   sync.Once
)

func LoadMistralConfig() *MistralConfig {
	mistralOnce.Do(func() {
		model := os.Getenv("MISTRAL_MODEL")
		if model == "" {
			model = "mistral-large-latest"
		}
		mistralConfig = &MistralConfig{
			APIKey: os.Getenv("MISTRAL_API_KEY"),
			Model:  model,
		}
	})
	return mistralConfig
}
