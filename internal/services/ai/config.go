// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	// Provider
	APIKey  string
	BaseURL string
	Model   string

	// Model Parameters
	Temperature float32
	MaxTokens   int

	// Performance Configuration
	Timeout time.Duration

	// Context construction
	MaxContextMessages int
	SystemPrompt       string
}

// Validate is checked before every request so a missing key never reaches the network.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return NewConfigError("missing AI API key, set the AI_API_KEY environment variable")
	}
	if c.Model == "" {
		return NewConfigError("AI model is required")
	}
	if c.Timeout <= 0 {
		return NewConfigError("timeout must be positive")
	}
	if c.MaxTokens <= 0 {
		return NewConfigError("max tokens must be positive")
	}
	if c.MaxContextMessages < 0 {
		return NewConfigError(fmt.Sprintf("max context messages cannot be negative (got %d)", c.MaxContextMessages))
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "https://dashscope.aliyuncs.com/compatible-mode/v1",
		Model:              "qwen-turbo",
		Temperature:        0.7,
		MaxTokens:          2000,
		Timeout:            30 * time.Second,
		MaxContextMessages: 10,
		SystemPrompt:       "You are a friendly and professional AI assistant. Answer the user's questions concisely and accurately.",
	}
}
