package providers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dupecheck/dupecheck/internal/config"
)

type stubResult struct {
	Answer string `json:"answer"`
}

// mockClient implements Client[stubResult] for testing
type mockClient struct {
	name   string
	result *stubResult
	usage  Usage
	err    error
	valid  bool
}

func (m *mockClient) Complete(ctx context.Context, req *Request) (*stubResult, Usage, error) {
	if err := m.Validate(); err != nil {
		return nil, Usage{}, err
	}
	if m.err != nil {
		return nil, Usage{}, m.err
	}
	return m.result, m.usage, nil
}

func (m *mockClient) Name() string {
	return m.name
}

func (m *mockClient) Validate() error {
	if !m.valid {
		return fmt.Errorf("mock client is invalid")
	}
	return nil
}

func TestClientInterface(t *testing.T) {
	tests := []struct {
		name       string
		client     Client[stubResult]
		wantError  bool
		wantAnswer string
	}{
		{
			name: "successful completion",
			client: &mockClient{
				name:   "mock",
				result: &stubResult{Answer: "yes"},
				usage:  Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
				valid:  true,
			},
			wantAnswer: "yes",
		},
		{
			name:      "client error",
			client:    &mockClient{name: "mock", err: fmt.Errorf("API error"), valid: true},
			wantError: true,
		},
		{
			name:      "invalid client",
			client:    &mockClient{name: "mock", valid: false},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, usage, err := tt.client.Complete(context.Background(), &Request{
				SystemPrompt: "system",
				UserPrompt:   "user",
				MaxTokens:    100,
				Timeout:      30 * time.Second,
			})
			if tt.wantError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Answer != tt.wantAnswer {
				t.Errorf("Complete() answer = %q, want %q", result.Answer, tt.wantAnswer)
			}
			if usage.TotalTokens != usage.InputTokens+usage.OutputTokens {
				t.Errorf("usage does not add up: %+v", usage)
			}
		})
	}
}

func TestToProvider(t *testing.T) {
	for _, provider := range GetAllProviders() {
		got, err := ToProvider(string(provider))
		if err != nil {
			t.Errorf("ToProvider(%s) error = %v", provider, err)
		}
		if got != provider {
			t.Errorf("ToProvider(%s) = %v", provider, got)
		}
	}

	if _, err := ToProvider("watson"); err == nil {
		t.Error("ToProvider() accepted an unknown provider")
	}
}

func TestGetProviderDefaults(t *testing.T) {
	for _, provider := range GetAllProviders() {
		defaults := GetProviderDefaults(provider)
		if defaults.Model == "" || defaults.Model == "<unknown>" {
			t.Errorf("GetProviderDefaults(%s) has no default model", provider)
		}
	}

	if got := GetProviderDefaults(ProviderOllama).ApiKeyVar; got != "" {
		t.Errorf("ollama ApiKeyVar = %q, want none", got)
	}
	if got := GetProviderDefaults(ProviderAnthropic).ApiKeyVar; got != "ANTHROPIC_API_KEY" {
		t.Errorf("anthropic ApiKeyVar = %q, want ANTHROPIC_API_KEY", got)
	}
}

func TestCreateClient(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		_, err := CreateClient[stubResult](&config.Triage{Provider: "watson", Model: "m"})
		if err == nil {
			t.Error("expected error for unknown provider")
		}
	})

	t.Run("ollama needs no API key", func(t *testing.T) {
		client, err := CreateClient[stubResult](&config.Triage{
			Provider: "ollama",
			Model:    "llama3.2",
			BaseURL:  "http://localhost:11434",
		})
		if err != nil {
			t.Fatalf("CreateClient() error = %v", err)
		}
		if client.Name() != "ollama" {
			t.Errorf("Name() = %s, want ollama", client.Name())
		}
	})

	t.Run("anthropic requires API key", func(t *testing.T) {
		_, err := CreateClient[stubResult](&config.Triage{Provider: "anthropic", Model: "m"})
		if err == nil {
			t.Error("expected error without an API key")
		}
	})
}
