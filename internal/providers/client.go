// Package providers hosts the AI clients the triage step talks to.
// Every client decodes its completion into a caller-supplied result
// type, so callers never see provider wire formats.
package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/dupecheck/dupecheck/internal/config"
)

type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderOllama    Provider = "ollama"
	ProviderCerebras  Provider = "cerebras"
	ProviderMCP       Provider = "mcp"
)

func ToProvider(provider string) (Provider, error) {
	switch provider {
	case "openai":
		return ProviderOpenAI, nil
	case "anthropic":
		return ProviderAnthropic, nil
	case "gemini":
		return ProviderGemini, nil
	case "ollama":
		return ProviderOllama, nil
	case "cerebras":
		return ProviderCerebras, nil
	case "mcp":
		return ProviderMCP, nil
	default:
		return "", fmt.Errorf("invalid provider: %s", provider)
	}
}

func GetAllProviders() []Provider {
	return []Provider{ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama, ProviderCerebras, ProviderMCP}
}

type ProviderDefaults struct {
	Model     string
	ApiKeyVar string
}

func GetProviderDefaults(provider Provider) ProviderDefaults {
	switch provider {
	case ProviderOpenAI:
		return ProviderDefaults{
			Model:     "gpt-4o",
			ApiKeyVar: "OPENAI_API_KEY",
		}
	case ProviderAnthropic:
		return ProviderDefaults{
			Model:     "claude-sonnet-4-0",
			ApiKeyVar: "ANTHROPIC_API_KEY",
		}
	case ProviderGemini:
		return ProviderDefaults{
			Model:     "gemini-2.5-flash",
			ApiKeyVar: "GOOGLE_API_KEY",
		}
	case ProviderOllama:
		return ProviderDefaults{
			Model:     "llama3.2",
			ApiKeyVar: "", // Ollama doesn't require an API key
		}
	case ProviderCerebras:
		return ProviderDefaults{
			Model:     "llama-4-scout-17b-16e-instruct",
			ApiKeyVar: "CEREBRAS_API_KEY",
		}
	case ProviderMCP:
		return ProviderDefaults{
			Model:     "mcp-server",
			ApiKeyVar: "", // MCP doesn't require an API key
		}
	default:
		return ProviderDefaults{
			Model:     "<unknown>",
			ApiKeyVar: "<unknown>",
		}
	}
}

// Usage represents token usage information
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Request represents a request to an AI provider
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Timeout      time.Duration
}

// Client defines the interface for AI providers. R is the structured
// result type a completion is decoded into.
type Client[R any] interface {
	// Complete sends a completion request to the AI provider
	Complete(ctx context.Context, req *Request) (*R, Usage, error)

	// Name returns the name of the provider
	Name() string

	// Validate checks if the client configuration is valid
	Validate() error
}

// Config holds common configuration for AI providers
type Config struct {
	Provider    Provider
	Model       string
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// CreateClient builds a client for the configured triage provider.
func CreateClient[R any](cfg *config.Triage) (Client[R], error) {
	provider, err := ToProvider(cfg.Provider)
	if err != nil {
		return nil, err
	}

	temperature := 0.1
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	providerConfig := &Config{
		Provider:    provider,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Temperature: temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	var client Client[R]

	switch provider {
	case ProviderOpenAI:
		client, err = NewOpenAIClient[R](providerConfig)
	case ProviderAnthropic:
		client, err = NewAnthropicClient[R](providerConfig)
	case ProviderGemini:
		client, err = NewGeminiClient[R](providerConfig)
	case ProviderOllama:
		client, err = NewOllamaClient[R](providerConfig)
	case ProviderCerebras:
		client, err = NewCerebrasClient[R](providerConfig)
	case ProviderMCP:
		mcpClient := NewMCPClient[R](cfg.BaseURL)
		if err := mcpClient.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to MCP server: %w", err)
		}
		return mcpClient, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}
