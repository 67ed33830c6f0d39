package llm

import (
	"context"
	"fmt"
)

// creates a chat client with auto-configuration from environment variables
func NewLLM(ctx context.Context) (ChatCompleter, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load LLM config: %w", err)
	}

	return NewLLMWithConfig(ctx, config)
}

// creates a chat client with explicit configuration
func NewLLMWithConfig(_ context.Context, config *Config) (ChatCompleter, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("api key is required for provider %s", config.Provider)
	}

	switch config.Provider {
	case ProviderAnthropic, "":
		return NewAnthropicClient(*config), nil
	case ProviderOpenAI:
		return NewOpenAIClient(*config), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", config.Provider)
	}
}
