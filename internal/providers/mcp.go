package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
)

// MCPClient forwards completion requests to an MCP server over TCP,
// one JSON object per line in each direction.
type MCPClient[R any] struct {
	address string
	conn    net.Conn
	encoder *json.Encoder
	decoder *json.Decoder
	reqID   int64
}

// MCPRequest represents a request sent via MCP protocol
type MCPRequest struct {
	ID           string `json:"id"`
	Method       string `json:"method"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	UserPrompt   string `json:"user_prompt,omitempty"`
	MaxTokens    int    `json:"max_tokens,omitempty"`
	Timeout      int    `json:"timeout,omitempty"`
}

// MCPResponse represents a response received via MCP protocol
type MCPResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *MCPError       `json:"error,omitempty"`
}

// MCPError represents an error in MCP protocol
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewMCPClient creates a new MCP client for a host:port address
func NewMCPClient[R any](address string) *MCPClient[R] {
	return &MCPClient[R]{address: address}
}

// Connect establishes a connection to the MCP server
func (c *MCPClient[R]) Connect() error {
	conn, err := net.Dial("tcp", c.address)
	if err != nil {
		return fmt.Errorf("failed to connect to MCP server at %s: %w", c.address, err)
	}

	c.conn = conn
	c.encoder = json.NewEncoder(conn)
	c.decoder = json.NewDecoder(conn)

	return nil
}

// Disconnect closes the connection to the MCP server
func (c *MCPClient[R]) Disconnect() error {
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		c.encoder = nil
		c.decoder = nil
		return err
	}
	return nil
}

// Complete sends a completion request to the MCP server
func (c *MCPClient[R]) Complete(ctx context.Context, req *Request) (*R, Usage, error) {
	if c.conn == nil {
		return nil, Usage{}, fmt.Errorf("not connected to MCP server")
	}

	// Generate unique request ID
	reqID := fmt.Sprintf("%d", atomic.AddInt64(&c.reqID, 1))

	mcpReq := &MCPRequest{
		ID:           reqID,
		Method:       "llm_request",
		SystemPrompt: req.SystemPrompt,
		UserPrompt:   req.UserPrompt,
		MaxTokens:    req.MaxTokens,
		Timeout:      int(req.Timeout.Seconds()),
	}

	if err := c.encoder.Encode(mcpReq); err != nil {
		return nil, Usage{}, fmt.Errorf("failed to send MCP request: %w", err)
	}

	var mcpResp MCPResponse
	if err := c.decoder.Decode(&mcpResp); err != nil {
		return nil, Usage{}, fmt.Errorf("failed to receive MCP response: %w", err)
	}

	if mcpResp.Error != nil {
		return nil, Usage{}, fmt.Errorf("MCP server error: %s", mcpResp.Error.Message)
	}

	// Parse result directly into type R
	var result R
	if err := json.Unmarshal(mcpResp.Result, &result); err != nil {
		return nil, Usage{}, fmt.Errorf("failed to unmarshal MCP result: %w", err)
	}

	// The MCP protocol carries no token accounting
	return &result, Usage{}, nil
}

// Name returns the name of the client
func (c *MCPClient[R]) Name() string {
	return string(ProviderMCP)
}

// Validate validates the client configuration
func (c *MCPClient[R]) Validate() error {
	if c.address == "" {
		return fmt.Errorf("MCP address is required")
	}
	if _, _, err := net.SplitHostPort(c.address); err != nil {
		return fmt.Errorf("MCP address must be host:port, got %q", c.address)
	}
	return nil
}
