package mcp

import (
	"context"
	"fmt"

	"github.com/dupecheck/dupecheck/internal/providers"
	"github.com/dupecheck/dupecheck/internal/triage"
)

// LLMRequestHandler answers llm_request calls, so one dupecheck
// instance can front a configured provider for another's triage.
type LLMRequestHandler interface {
	HandleLLMRequest(ctx context.Context, req *providers.Request) (interface{}, error)
}

// DirectLLMRequestHandler is an implementation that directly uses a provider client
type DirectLLMRequestHandler struct {
	client providers.Client[triage.Verdict]
}

// NewDirectLLMRequestHandler creates a new direct LLM request handler
func NewDirectLLMRequestHandler(client providers.Client[triage.Verdict]) *DirectLLMRequestHandler {
	return &DirectLLMRequestHandler{
		client: client,
	}
}

// HandleLLMRequest handles LLM requests by calling the provider client directly
func (h *DirectLLMRequestHandler) HandleLLMRequest(ctx context.Context, req *providers.Request) (interface{}, error) {
	if h.client == nil {
		return nil, fmt.Errorf("provider client not configured")
	}

	verdict, _, err := h.client.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	return verdict, nil
}
