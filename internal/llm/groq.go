package llm

// NewGroqProvider creates an adapter for the Groq API, which exposes an
// OpenAI-compatible surface, so the same SDK is reused with a BaseURL
// override.
func NewGroqProvider(apiKey, model, baseURL string) (*OpenAIProvider, error) {
	return newOpenAICompatible("groq", apiKey, model, baseURL)
}
