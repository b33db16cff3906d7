package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dupecheck/dupecheck/internal/cache"
	"github.com/dupecheck/dupecheck/internal/config"
	"github.com/dupecheck/dupecheck/internal/corpus"
	"github.com/dupecheck/dupecheck/internal/detect"
)

// Tool represents an MCP tool that can be called by external clients
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema interface{} `json:"inputSchema"`
}

// Resource represents an MCP resource that can be accessed by external clients
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType,omitempty"`
}

// ToolCallRequest represents a tool call request from an external client
type ToolCallRequest struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolCallResponse represents a tool call response
type ToolCallResponse struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content represents content returned by a tool
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ResourceReadRequest represents a resource read request
type ResourceReadRequest struct {
	URI string `json:"uri"`
}

// ResourceReadResponse represents a resource read response
type ResourceReadResponse struct {
	Contents []Content `json:"contents"`
}

// ToolsResourcesHandler handles MCP tools and resources
type ToolsResourcesHandler struct {
	config     *config.Config
	workingDir string
	store      *cache.Store
}

// NewToolsResourcesHandler creates a new tools/resources handler. The
// store may be nil when no cache is configured.
func NewToolsResourcesHandler(cfg *config.Config, workingDir string, store *cache.Store) *ToolsResourcesHandler {
	return &ToolsResourcesHandler{
		config:     cfg,
		workingDir: workingDir,
		store:      store,
	}
}

// ListTools returns the list of available tools
func (h *ToolsResourcesHandler) ListTools() []Tool {
	return []Tool{
		{
			Name:        "scan_paths",
			Description: "Scan for duplicated code and return the clusters found",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "File paths to scan, relative to the working directory; omit to scan the full corpus",
					},
				},
			},
		},
		{
			Name:        "list_rules",
			Description: "List all configured duplicate detection rules",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "get_rule_details",
			Description: "Get detailed information about a specific rule",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"rule_name": map[string]interface{}{
						"type":        "string",
						"description": "Name of the rule to get details for",
					},
				},
				"required": []string{"rule_name"},
			},
		},
		{
			Name:        "list_files",
			Description: "List the source units each enabled rule would scan",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "File paths to classify; omit to list the full corpus",
					},
				},
			},
		},
	}
}

// ListResources returns the list of available resources
func (h *ToolsResourcesHandler) ListResources() []Resource {
	resources := []Resource{
		{
			URI:         "config://dupecheck.yaml",
			Name:        "Dupecheck Configuration",
			Description: "Current dupecheck configuration with the API key masked",
			MimeType:    "application/yaml",
		},
	}

	if h.store != nil {
		resources = append(resources, Resource{
			URI:         "baseline://keys",
			Name:        "Accepted baseline",
			Description: "Cluster keys accepted by the last baseline update",
			MimeType:    "application/json",
		})
	}

	return resources
}

// CallTool executes a tool call
func (h *ToolsResourcesHandler) CallTool(ctx context.Context, req *ToolCallRequest) (*ToolCallResponse, error) {
	switch req.Name {
	case "scan_paths":
		return h.scanPaths(ctx, req.Arguments)
	case "list_rules":
		return h.listRules(ctx, req.Arguments)
	case "get_rule_details":
		return h.getRuleDetails(ctx, req.Arguments)
	case "list_files":
		return h.listFiles(ctx, req.Arguments)
	default:
		return errorResponse(fmt.Sprintf("Unknown tool: %s", req.Name)), nil
	}
}

// ReadResource reads a resource
func (h *ToolsResourcesHandler) ReadResource(ctx context.Context, req *ResourceReadRequest) (*ResourceReadResponse, error) {
	switch {
	case strings.HasPrefix(req.URI, "config://"):
		return h.readConfig(ctx)
	case strings.HasPrefix(req.URI, "baseline://"):
		return h.readBaseline(ctx)
	default:
		return nil, fmt.Errorf("unknown resource URI: %s", req.URI)
	}
}

// scanPaths runs a full duplicate scan over the given paths
func (h *ToolsResourcesHandler) scanPaths(ctx context.Context, args map[string]interface{}) (*ToolCallResponse, error) {
	paths, err := stringSlice(args, "paths")
	if err != nil {
		return errorResponse(err.Error()), nil
	}

	// Triage stays off for server-side scans; agent clients judge
	// borderline pairs themselves.
	engine := detect.NewEngine(h.config, h.workingDir, detect.ScanOptions{
		Inputs: paths,
		Store:  h.store,
	})

	result, err := engine.Scan(ctx)
	if err != nil {
		return errorResponse(fmt.Sprintf("Error scanning paths: %v", err)), nil
	}

	resultData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("Error formatting results: %v", err)), nil
	}

	return textResponse(string(resultData)), nil
}

// listRules returns all configured rules
func (h *ToolsResourcesHandler) listRules(ctx context.Context, args map[string]interface{}) (*ToolCallResponse, error) {
	rules := make([]map[string]interface{}, 0, len(h.config.Rules))
	for _, rule := range h.config.Rules {
		rules = append(rules, map[string]interface{}{
			"name":        rule.Name,
			"description": rule.Description,
			"enabled":     rule.Enabled,
			"fail_on":     rule.FailOn,
		})
	}

	resultData, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("Error formatting rules: %v", err)), nil
	}

	return textResponse(string(resultData)), nil
}

// getRuleDetails returns details for a specific rule
func (h *ToolsResourcesHandler) getRuleDetails(ctx context.Context, args map[string]interface{}) (*ToolCallResponse, error) {
	ruleName, ok := args["rule_name"].(string)
	if !ok {
		return errorResponse("Invalid 'rule_name' parameter: must be a string"), nil
	}

	for _, rule := range h.config.Rules {
		if rule.Name == ruleName {
			resultData, err := json.MarshalIndent(rule, "", "  ")
			if err != nil {
				return errorResponse(fmt.Sprintf("Error formatting rule details: %v", err)), nil
			}

			return textResponse(string(resultData)), nil
		}
	}

	return errorResponse(fmt.Sprintf("Rule not found: %s", ruleName)), nil
}

// listFiles reports which source units each enabled rule would scan
func (h *ToolsResourcesHandler) listFiles(ctx context.Context, args map[string]interface{}) (*ToolCallResponse, error) {
	paths, err := stringSlice(args, "paths")
	if err != nil {
		return errorResponse(err.Error()), nil
	}

	collector, err := corpus.NewCollector(h.config, h.workingDir)
	if err != nil {
		return errorResponse(fmt.Sprintf("Error preparing corpus: %v", err)), nil
	}

	unitsByRule := make(map[string][]string)
	for _, rule := range h.config.Rules {
		if !rule.Enabled {
			continue
		}

		files, err := collector.Collect(rule.Name, paths)
		if err != nil {
			return errorResponse(fmt.Sprintf("Error collecting files for rule %s: %v", rule.Name, err)), nil
		}

		units := make([]string, 0, len(files))
		for _, file := range files {
			units = append(units, file.ID())
		}
		unitsByRule[rule.Name] = units
	}

	resultData, err := json.MarshalIndent(unitsByRule, "", "  ")
	if err != nil {
		return errorResponse(fmt.Sprintf("Error formatting file list: %v", err)), nil
	}

	return textResponse(string(resultData)), nil
}

// readConfig renders the configuration with the API key masked
func (h *ToolsResourcesHandler) readConfig(ctx context.Context) (*ResourceReadResponse, error) {
	configData, err := h.config.MaskedYAML()
	if err != nil {
		return nil, fmt.Errorf("error formatting config: %w", err)
	}

	return &ResourceReadResponse{
		Contents: []Content{{
			Type: "text",
			Text: string(configData),
		}},
	}, nil
}

// readBaseline lists the accepted cluster keys
func (h *ToolsResourcesHandler) readBaseline(ctx context.Context) (*ResourceReadResponse, error) {
	if h.store == nil {
		return nil, fmt.Errorf("no cache configured, baseline is unavailable")
	}

	keys, err := h.store.BaselineKeys()
	if err != nil {
		return nil, fmt.Errorf("error reading baseline: %w", err)
	}
	if keys == nil {
		keys = []string{}
	}

	keysData, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error formatting baseline: %w", err)
	}

	return &ResourceReadResponse{
		Contents: []Content{{
			Type: "text",
			Text: string(keysData),
		}},
	}, nil
}

func textResponse(text string) *ToolCallResponse {
	return &ToolCallResponse{
		Content: []Content{{
			Type: "text",
			Text: text,
		}},
	}
}

func errorResponse(message string) *ToolCallResponse {
	return &ToolCallResponse{
		Content: []Content{{
			Type: "text",
			Text: message,
		}},
		IsError: true,
	}
}

// stringSlice pulls an optional []string argument out of generic JSON
// arguments.
func stringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok {
		return nil, nil
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid '%s' parameter: must be an array of strings", key)
	}

	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("invalid '%s' entry at index %d: must be a string", key, i)
		}
		out[i] = s
	}
	return out, nil
}
