// Package mcp exposes scan tooling to agent clients over a TCP
// transport speaking newline-delimited JSON.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dupecheck/dupecheck/internal/providers"
)

// Server represents an MCP server that accepts TCP connections
type Server struct {
	address    string
	handler    *ToolsResourcesHandler
	llmHandler LLMRequestHandler
	mu         sync.RWMutex
	running    bool
	ln         net.Listener
}

// MCPRequest represents a request received via MCP protocol. Tool and
// resource calls carry their payload in params; llm_request carries it
// inline, matching the provider-side client.
type MCPRequest struct {
	ID     string                 `json:"id"`
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params,omitempty"`

	SystemPrompt string `json:"system_prompt,omitempty"`
	UserPrompt   string `json:"user_prompt,omitempty"`
	MaxTokens    int    `json:"max_tokens,omitempty"`
	Timeout      int    `json:"timeout,omitempty"`
}

// MCPResponse represents a response sent via MCP protocol
type MCPResponse struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  *MCPError   `json:"error,omitempty"`
}

// MCPError represents an error in MCP protocol
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewServer creates a new MCP server listening on a host:port address.
// The llmHandler may be nil, in which case llm_request is rejected.
func NewServer(address string, handler *ToolsResourcesHandler, llmHandler LLMRequestHandler) *Server {
	return &Server{
		address:    address,
		handler:    handler,
		llmHandler: llmHandler,
	}
}

// Start starts the MCP server
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}

	s.ln = ln
	s.running = true

	log.Info("MCP server started", "addr", ln.Addr().String())

	go s.acceptConnections(ctx)

	return nil
}

// Stop stops the MCP server
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	s.running = false

	if s.ln != nil {
		err := s.ln.Close()
		s.ln = nil
		return err
	}

	return nil
}

// IsRunning returns true if the server is running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the bound listen address, or "" when the server is
// stopped. Useful when listening on port 0.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// acceptConnections accepts incoming TCP connections
func (s *Server) acceptConnections(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := s.ln.Accept()
			if err != nil {
				s.mu.RLock()
				if !s.running {
					s.mu.RUnlock()
					return
				}
				s.mu.RUnlock()
				log.Warn("Error accepting connection", "err", err)
				continue
			}

			go s.handleConnection(ctx, conn)
		}
	}
}

// handleConnection handles an individual TCP connection
func (s *Server) handleConnection(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	log.Debug("New MCP connection", "remote", conn.RemoteAddr().String())

	decoder := json.NewDecoder(conn)
	encoder := json.NewEncoder(conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var req MCPRequest
			if err := decoder.Decode(&req); err != nil {
				log.Debug("MCP connection closed", "remote", conn.RemoteAddr().String(), "err", err)
				return
			}

			response := s.processRequest(ctx, &req)
			if err := encoder.Encode(response); err != nil {
				log.Warn("Error encoding response", "err", err)
				return
			}
		}
	}
}

// processRequest processes an MCP request
func (s *Server) processRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	response := &MCPResponse{
		ID: req.ID,
	}

	switch req.Method {
	case "tools/list":
		response.Result = map[string]interface{}{
			"tools": s.handler.ListTools(),
		}
	case "tools/call":
		toolCallReq := &ToolCallRequest{}
		if name, ok := req.Params["name"].(string); ok {
			toolCallReq.Name = name
		}
		if arguments, ok := req.Params["arguments"].(map[string]interface{}); ok {
			toolCallReq.Arguments = arguments
		}

		result, err := s.handler.CallTool(ctx, toolCallReq)
		if err != nil {
			response.Error = &MCPError{
				Code:    500,
				Message: err.Error(),
			}
		} else {
			response.Result = result
		}
	case "resources/list":
		response.Result = map[string]interface{}{
			"resources": s.handler.ListResources(),
		}
	case "resources/read":
		resourceReadReq := &ResourceReadRequest{}
		if uri, ok := req.Params["uri"].(string); ok {
			resourceReadReq.URI = uri
		}

		result, err := s.handler.ReadResource(ctx, resourceReadReq)
		if err != nil {
			response.Error = &MCPError{
				Code:    500,
				Message: err.Error(),
			}
		} else {
			response.Result = result
		}
	case "llm_request":
		if s.llmHandler == nil {
			response.Error = &MCPError{
				Code:    501,
				Message: "llm_request forwarding is not enabled",
			}
			break
		}

		result, err := s.llmHandler.HandleLLMRequest(ctx, &providers.Request{
			SystemPrompt: req.SystemPrompt,
			UserPrompt:   req.UserPrompt,
			MaxTokens:    req.MaxTokens,
			Timeout:      time.Duration(req.Timeout) * time.Second,
		})
		if err != nil {
			response.Error = &MCPError{
				Code:    500,
				Message: err.Error(),
			}
		} else {
			response.Result = result
		}
	default:
		response.Error = &MCPError{
			Code:    400,
			Message: fmt.Sprintf("unknown method: %s", req.Method),
		}
	}

	return response
}
