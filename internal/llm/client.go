package llm

import (
	"fmt"

	"github.com/agora-arena/agora/internal/domain"
)

// Provider constants
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
	ProviderMock      = "mock"
)

// Defaults applied when GenerateOpts fields are zero.
const (
	defaultMaxTokens   = 512
	defaultTemperature = 0.7
)

// NewClient creates a generation client based on the provider name.
// Returns an error if the provider is unknown or a required API key is
// empty. Ollama and mock need no key.
func NewClient(provider, apiKey, ollamaURL, ollamaModel string) (domain.Generator, error) {
	switch provider {
	case ProviderAnthropic:
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required for Anthropic provider")
		}
		return NewAnthropicClient(apiKey), nil

	case ProviderGemini:
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for Gemini provider")
		}
		return NewGeminiClient(apiKey), nil

	case ProviderOllama:
		return NewOllamaClient(ollamaURL, ollamaModel), nil

	case ProviderMock:
		return NewMockClient(), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: anthropic, gemini, ollama, mock)", provider)
	}
}

func applyDefaults(opts domain.GenerateOpts) domain.GenerateOpts {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature <= 0 {
		opts.Temperature = defaultTemperature
	}
	return opts
}
