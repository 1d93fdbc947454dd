// Package llm abstracts the text-generation backends the assistant can talk
// to. The rest of the app only sees Provider; which backend is live is a
// deployment decision.
package llm

import (
	"context"
	"fmt"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Request is a complete generation request: system prompt plus history.
type Request struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Provider generates a completion for a conversation.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}

// Provider selection values for Config.Provider.
const (
	ProviderDeepSeek = "deepseek"
	ProviderOllama   = "ollama"
)

// Config selects and parameterizes a backend.
type Config struct {
	Provider string // "deepseek" or "ollama"

	DeepSeekAPIKey string
	DeepSeekModel  string

	OllamaURL   string
	OllamaModel string

	TimeoutSeconds int
}

// New builds the configured provider.
func New(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case ProviderDeepSeek:
		return NewDeepSeek(cfg.DeepSeekAPIKey, cfg.DeepSeekModel)
	case ProviderOllama:
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel, cfg.TimeoutSeconds), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q (supported: %s, %s)",
			cfg.Provider, ProviderDeepSeek, ProviderOllama)
	}
}
