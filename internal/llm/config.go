package llm

import (
	"fmt"
)

// Config selects and configures a hosted model provider.
// API keys are read from the environment only.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter", "mock".
	Provider string `yaml:"provider" env:"AQUA_LLM_PROVIDER" env-default:"anthropic"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`

	MaxTokens int `yaml:"max_tokens" env:"AQUA_LLM_MAX_TOKENS" env-default:"128"`
}

type AnthropicConfig struct {
	APIKey string `yaml:"-" env:"AQUA_ANTHROPIC_API_KEY"`
	Model  string `yaml:"model" env:"AQUA_ANTHROPIC_MODEL" env-default:"claude-haiku"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"-" env:"AQUA_OPENAI_API_KEY"`
	Model   string `yaml:"model" env:"AQUA_OPENAI_MODEL" env-default:"gpt-4o-mini"`
	BaseURL string `yaml:"base_url" env:"AQUA_OPENAI_BASE_URL"`
}

type GeminiConfig struct {
	APIKey string `yaml:"-" env:"AQUA_GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"AQUA_GEMINI_MODEL" env-default:"gemini-flash"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"-" env:"AQUA_OPENROUTER_API_KEY"`
	Model   string `yaml:"model" env:"AQUA_OPENROUTER_MODEL" env-default:"google/gemini-2.0-flash-exp"`
	BaseURL string `yaml:"base_url" env:"AQUA_OPENROUTER_BASE_URL"`
}

// DefaultConfig mirrors the env-default tags for callers that build a
// Config by hand.
func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		MaxTokens:  128,
	}
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("AQUA_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("AQUA_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("AQUA_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("AQUA_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
