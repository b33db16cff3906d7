package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// CerebrasClient implements the Client interface for Cerebras API
type CerebrasClient[R any] struct {
	httpClient  *http.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// NewCerebrasClient creates a new Cerebras client
func NewCerebrasClient[R any](config *Config) (Client[R], error) {
	baseURL := "https://api.cerebras.ai/v1"
	if config.BaseURL != "" {
		baseURL = config.BaseURL
	}

	return &CerebrasClient[R]{
		httpClient:  &http.Client{},
		apiKey:      config.APIKey,
		model:       config.Model,
		baseURL:     baseURL,
		temperature: config.Temperature,
		maxTokens:   config.MaxTokens,
	}, nil
}

// Name returns the provider name
func (c *CerebrasClient[R]) Name() string {
	return string(ProviderCerebras)
}

// Validate checks if the client configuration is valid
func (c *CerebrasClient[R]) Validate() error {
	if c.httpClient == nil {
		return fmt.Errorf("HTTP client is not initialized")
	}
	if c.apiKey == "" {
		return fmt.Errorf("API key is required")
	}
	if c.model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

// CerebrasMessage represents a message in the chat completion request
type CerebrasMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CerebrasJsonSchema struct {
	Name   string `json:"name"`
	Strict bool   `json:"strict"`
	Schema any    `json:"schema"`
}

type CerebrasResponseFormat struct {
	Type       string             `json:"type"`
	JsonSchema CerebrasJsonSchema `json:"json_schema"`
}

// CerebrasRequest represents the request payload for Cerebras API
type CerebrasRequest struct {
	Model          string                  `json:"model"`
	Messages       []CerebrasMessage       `json:"messages"`
	Temperature    *float64                `json:"temperature,omitempty"`
	MaxTokens      *int                    `json:"max_completion_tokens,omitempty"`
	ResponseFormat *CerebrasResponseFormat `json:"response_format,omitempty"`
}

// CerebrasChoice represents a choice in the API response
type CerebrasChoice struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
}

// CerebrasUsage represents token usage in the API response
type CerebrasUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// CerebrasResponse represents the response from Cerebras API
type CerebrasResponse struct {
	ID      string           `json:"id"`
	Choices []CerebrasChoice `json:"choices"`
	Usage   CerebrasUsage    `json:"usage"`
	Created int64            `json:"created"`
	Model   string           `json:"model"`
}

// Complete sends a completion request to Cerebras API
func (c *CerebrasClient[R]) Complete(ctx context.Context, req *Request) (*R, Usage, error) {
	if err := c.Validate(); err != nil {
		return nil, Usage{}, fmt.Errorf("client validation failed: %w", err)
	}

	messages := []CerebrasMessage{
		{Role: "system", Content: req.SystemPrompt},
		{Role: "user", Content: req.UserPrompt},
	}

	// Generate schema for structured output
	schema := generateSchema[R]()

	payload := CerebrasRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: &c.temperature,
		MaxTokens:   &c.maxTokens,
		ResponseFormat: &CerebrasResponseFormat{
			Type: "json_schema",
			JsonSchema: CerebrasJsonSchema{
				Name:   "structured_response",
				Strict: true,
				Schema: schema,
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, Usage{}, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("cerebras API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, Usage{}, fmt.Errorf("cerebras API returned status %d: %s", resp.StatusCode, string(body))
	}

	var cerebrasResp CerebrasResponse
	if err := json.Unmarshal(body, &cerebrasResp); err != nil {
		return nil, Usage{}, fmt.Errorf("failed to parse Cerebras response: %w", err)
	}

	if len(cerebrasResp.Choices) == 0 {
		return nil, Usage{}, fmt.Errorf("no choices in response")
	}

	// Parse the response content directly into type R
	var result R
	if err := json.Unmarshal([]byte(cerebrasResp.Choices[0].Message.Content), &result); err != nil {
		return nil, Usage{}, fmt.Errorf("failed to parse structured response: %w", err)
	}

	usage := Usage{
		InputTokens:  cerebrasResp.Usage.PromptTokens,
		OutputTokens: cerebrasResp.Usage.CompletionTokens,
		TotalTokens:  cerebrasResp.Usage.TotalTokens,
	}

	return &result, usage, nil
}
