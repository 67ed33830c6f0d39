package llm

import (
	"fmt"
	"os"
	"strconv"
)

// loads LLM configuration from environment variables
func loadConfig() (*Config, error) {
	provider := Provider(os.Getenv("LLM_PROVIDER"))
	if provider == "" {
		provider = ProviderAnthropic // default
	}

	var apiKey string

	switch provider {
	case ProviderAnthropic:
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is required")
		}
	case ProviderOpenAI:
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}

	maxTokens := defaultMaxTokens
	if maxTokensStr := os.Getenv("LLM_MAX_TOKENS"); maxTokensStr != "" {
		if val, err := strconv.Atoi(maxTokensStr); err == nil {
			maxTokens = val
		}
	}

	temperature := float32(defaultTemperature)
	if tempStr := os.Getenv("LLM_TEMPERATURE"); tempStr != "" {
		if val, err := strconv.ParseFloat(tempStr, 32); err == nil {
			temperature = float32(val)
		}
	}

	var rateLimit float64
	if rateStr := os.Getenv("LLM_RATE_LIMIT"); rateStr != "" {
		if val, err := strconv.ParseFloat(rateStr, 64); err == nil {
			rateLimit = val
		}
	}

	return &Config{
		Provider:    provider,
		APIKey:      apiKey,
		Model:       os.Getenv("LLM_MODEL"),
		BaseURL:     os.Getenv("LLM_BASE_URL"),
		MaxTokens:   maxTokens,
		Temperature: temperature,
		RateLimit:   rateLimit,
	}, nil
}
