package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test-config.yaml")

	validConfig := `version: "1.0"
fail_on_issues: true
cache:
  path: .dupecheck/cache.db
  baseline: true
triage:
  enabled: true
  provider: openai
  model: gpt-4o
  api_key: test-key
  timeout: 30
rules:
  - name: test-rule
    description: Test rule description
    enabled: true
    files:
      include:
        - "**/*.go"
      exclude:
        - "vendor/**"
    min_tokens: 30
    kgram: 6
    window: 5
    similarity: 0.75
    fail_on: "error"
`

	err := os.WriteFile(configPath, []byte(validConfig), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Test loading valid config
	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Verify config values
	if config.Version != "1.0" {
		t.Errorf("expected version '1.0', got %s", config.Version)
	}
	if config.FailOnIssues == nil || !*config.FailOnIssues {
		t.Error("expected fail_on_issues to be true")
	}
	if config.Cache.Path != ".dupecheck/cache.db" {
		t.Errorf("expected cache path '.dupecheck/cache.db', got %s", config.Cache.Path)
	}
	if !config.Cache.Baseline {
		t.Error("expected cache baseline to be enabled")
	}
	if config.Triage == nil || !config.Triage.Enabled {
		t.Fatal("expected triage to be enabled")
	}
	if config.Triage.Provider != "openai" {
		t.Errorf("expected triage provider 'openai', got %s", config.Triage.Provider)
	}
	if config.Triage.Model != "gpt-4o" {
		t.Errorf("expected triage model 'gpt-4o', got %s", config.Triage.Model)
	}
	if config.Triage.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %s", config.Triage.APIKey)
	}
	if len(config.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(config.Rules))
	}

	rule := config.Rules[0]
	if rule.Name != "test-rule" {
		t.Errorf("expected rule name 'test-rule', got %s", rule.Name)
	}
	if rule.Description != "Test rule description" {
		t.Errorf("expected rule description 'Test rule description', got %s", rule.Description)
	}
	if !rule.Enabled {
		t.Error("expected rule to be enabled")
	}
	if len(rule.Files.Include) != 1 || rule.Files.Include[0] != "**/*.go" {
		t.Errorf("expected include pattern '**/*.go', got %v", rule.Files.Include)
	}
	if len(rule.Files.Exclude) != 1 || rule.Files.Exclude[0] != "vendor/**" {
		t.Errorf("expected exclude pattern 'vendor/**', got %v", rule.Files.Exclude)
	}
	if rule.MinTokens != 30 {
		t.Errorf("expected min_tokens 30, got %d", rule.MinTokens)
	}
	if rule.KGram != 6 {
		t.Errorf("expected kgram 6, got %d", rule.KGram)
	}
	if rule.Window != 5 {
		t.Errorf("expected window 5, got %d", rule.Window)
	}
	if rule.Similarity == nil || *rule.Similarity != 0.75 {
		t.Errorf("expected similarity 0.75, got %v", rule.Similarity)
	}
	if rule.FailOn != "error" {
		t.Errorf("expected fail_on 'error', got %s", rule.FailOn)
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("non-existent-file.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid.yaml")

	invalidYAML := `invalid: yaml: content: [unclosed`
	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	if err != nil {
		t.Fatalf("failed to write invalid config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "unknown.yaml")

	// Strict parsing rejects fields the schema does not know about
	unknownField := `version: "1.0"
detectors: [all]
rules:
  - name: test
    files:
      include: ["**/*.go"]
`
	err := os.WriteFile(configPath, []byte(unknownField), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Error("expected error for unknown config field")
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "env-config.yaml")

	t.Setenv("DUPECHECK_TEST_KEY", "key-from-env")

	envConfig := `version: "1.0"
triage:
  enabled: true
  provider: openai
  model: gpt-4o
  api_key: ${DUPECHECK_TEST_KEY}
rules:
  - name: test
    files:
      include: ["**/*.go"]
`
	err := os.WriteFile(configPath, []byte(envConfig), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if config.Triage.APIKey != "key-from-env" {
		t.Errorf("expected api_key expanded from environment, got %s", config.Triage.APIKey)
	}
}

func TestConfig_validate(t *testing.T) {
	similarity := 0.8
	tooBig := 1.5

	tests := []struct {
		name      string
		config    Config
		wantError bool
	}{
		{
			name: "valid config",
			config: Config{
				Version: "1.0",
				Rules: []Rule{
					{
						Name:        "test",
						Description: "test rule",
						Files:       FilePattern{Include: []string{"**/*.go"}},
					},
				},
			},
			wantError: false,
		},
		{
			name:      "missing version",
			config:    Config{},
			wantError: true,
		},
		{
			name: "unsupported version",
			config: Config{
				Version: "2.0",
			},
			wantError: true,
		},
		{
			name: "no rules",
			config: Config{
				Version: "1.0",
				Rules:   []Rule{},
			},
			wantError: true,
		},
		{
			name: "rule without name",
			config: Config{
				Version: "1.0",
				Rules: []Rule{
					{Files: FilePattern{Include: []string{"**/*.go"}}},
				},
			},
			wantError: true,
		},
		{
			name: "duplicate rule names",
			config: Config{
				Version: "1.0",
				Rules: []Rule{
					{Name: "test", Files: FilePattern{Include: []string{"**/*.go"}}},
					{Name: "test", Files: FilePattern{Include: []string{"**/*.py"}}},
				},
			},
			wantError: true,
		},
		{
			name: "rule without include patterns",
			config: Config{
				Version: "1.0",
				Rules: []Rule{
					{Name: "test"},
				},
			},
			wantError: true,
		},
		{
			name: "similarity out of range",
			config: Config{
				Version: "1.0",
				Rules: []Rule{
					{
						Name:       "test",
						Files:      FilePattern{Include: []string{"**/*.go"}},
						Similarity: &tooBig,
					},
				},
			},
			wantError: true,
		},
		{
			name: "min_tokens below kgram",
			config: Config{
				Version: "1.0",
				Rules: []Rule{
					{
						Name:      "test",
						Files:     FilePattern{Include: []string{"**/*.go"}},
						MinTokens: 4,
						KGram:     8,
					},
				},
			},
			wantError: true,
		},
		{
			name: "invalid fail_on",
			config: Config{
				Version: "1.0",
				Rules: []Rule{
					{
						Name:   "test",
						Files:  FilePattern{Include: []string{"**/*.go"}},
						FailOn: "panic",
					},
				},
			},
			wantError: true,
		},
		{
			name: "baseline without cache path",
			config: Config{
				Version: "1.0",
				Cache:   Cache{Baseline: true},
				Rules: []Rule{
					{Name: "test", Files: FilePattern{Include: []string{"**/*.go"}}},
				},
			},
			wantError: true,
		},
		{
			name: "triage enabled without provider",
			config: Config{
				Version: "1.0",
				Triage:  &Triage{Enabled: true, Model: "gpt-4o", APIKey: "k"},
				Rules: []Rule{
					{Name: "test", Files: FilePattern{Include: []string{"**/*.go"}}},
				},
			},
			wantError: true,
		},
		{
			name: "triage enabled without model",
			config: Config{
				Version: "1.0",
				Triage:  &Triage{Enabled: true, Provider: "openai", APIKey: "k"},
				Rules: []Rule{
					{Name: "test", Files: FilePattern{Include: []string{"**/*.go"}}},
				},
			},
			wantError: true,
		},
		{
			name: "triage missing api key for remote provider",
			config: Config{
				Version: "1.0",
				Triage:  &Triage{Enabled: true, Provider: "openai", Model: "gpt-4o"},
				Rules: []Rule{
					{Name: "test", Files: FilePattern{Include: []string{"**/*.go"}}},
				},
			},
			wantError: true,
		},
		{
			name: "ollama triage without api key",
			config: Config{
				Version: "1.0",
				Triage:  &Triage{Enabled: true, Provider: "ollama", Model: "llama3.2"},
				Rules: []Rule{
					{Name: "test", Files: FilePattern{Include: []string{"**/*.go"}}},
				},
			},
			wantError: false,
		},
		{
			name: "mcp triage with address",
			config: Config{
				Version: "1.0",
				Triage:  &Triage{Enabled: true, Provider: "mcp", Model: "mcp-server", BaseURL: "localhost:8080"},
				Rules: []Rule{
					{Name: "test", Files: FilePattern{Include: []string{"**/*.go"}}},
				},
			},
			wantError: false,
		},
		{
			name: "mcp triage without address",
			config: Config{
				Version: "1.0",
				Triage:  &Triage{Enabled: true, Provider: "mcp", Model: "mcp-server"},
				Rules: []Rule{
					{Name: "test", Files: FilePattern{Include: []string{"**/*.go"}}},
				},
			},
			wantError: true,
		},
		{
			name: "disabled triage skips provider checks",
			config: Config{
				Version: "1.0",
				Triage:  &Triage{Enabled: false},
				Rules: []Rule{
					{Name: "test", Files: FilePattern{Include: []string{"**/*.go"}}},
				},
			},
			wantError: false,
		},
		{
			name: "valid config with similarity",
			config: Config{
				Version: "1.0",
				Rules: []Rule{
					{
						Name:       "test",
						Files:      FilePattern{Include: []string{"**/*.go"}},
						Similarity: &similarity,
					},
				},
			},
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.validate()
			if tt.wantError && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_validate_Defaults(t *testing.T) {
	config := Config{
		Version: "1.0",
		Triage: &Triage{
			Enabled:  true,
			Provider: "openai",
			Model:    "gpt-4o",
			APIKey:   "test-key",
		},
		Rules: []Rule{
			{
				Name:        "test",
				Description: "test rule",
				Files:       FilePattern{Include: []string{"**/*.go"}},
			},
		},
	}

	err := config.validate()
	if err != nil {
		t.Fatalf("validation failed: %v", err)
	}

	// Check that defaults were set
	rule := config.Rules[0]
	if rule.MinTokens != 24 {
		t.Errorf("expected default min_tokens 24, got %d", rule.MinTokens)
	}
	if rule.KGram != 8 {
		t.Errorf("expected default kgram 8, got %d", rule.KGram)
	}
	if rule.Window != 4 {
		t.Errorf("expected default window 4, got %d", rule.Window)
	}
	if rule.Similarity == nil || *rule.Similarity != 0.8 {
		t.Errorf("expected default similarity 0.8, got %v", rule.Similarity)
	}
	if rule.FailOn != "warning" {
		t.Errorf("expected default fail_on 'warning', got %s", rule.FailOn)
	}
	if config.Triage.Timeout != 30 {
		t.Errorf("expected default triage timeout 30, got %d", config.Triage.Timeout)
	}
	if config.Triage.MaxTokens != 1500 {
		t.Errorf("expected default triage max_tokens 1500, got %d", config.Triage.MaxTokens)
	}
	if config.Triage.Temperature == nil || *config.Triage.Temperature != 0.1 {
		t.Error("expected default triage temperature 0.1")
	}
	if config.Triage.BandLow == nil || *config.Triage.BandLow != 0.6 {
		t.Error("expected default triage band_low 0.6")
	}
	if config.Triage.BandHigh == nil || *config.Triage.BandHigh != 0.9 {
		t.Error("expected default triage band_high 0.9")
	}
	if config.Triage.Confidence == nil || *config.Triage.Confidence != 0.7 {
		t.Error("expected default triage confidence 0.7")
	}
	if config.FailOnIssues == nil || !*config.FailOnIssues {
		t.Error("expected default fail_on_issues to be true")
	}
}

func TestConfig_validate_ExplicitFailOnIssuesFalse(t *testing.T) {
	explicitFalse := false
	config := Config{
		Version:      "1.0",
		FailOnIssues: &explicitFalse,
		Rules: []Rule{
			{
				Name:        "test",
				Description: "test rule",
				Files:       FilePattern{Include: []string{"**/*.go"}},
			},
		},
	}

	err := config.validate()
	if err != nil {
		t.Fatalf("validation failed: %v", err)
	}

	// Check that explicit false is preserved
	if config.FailOnIssues == nil || *config.FailOnIssues {
		t.Error("expected fail_on_issues to remain false when explicitly set")
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   string
	}{
		{"short key fully masked", "sk-short", "[MASKED]"},
		{"long key keeps edges", "sk-aaaabbbbccccdddd", "sk-aaaa[MASKED]dddd"},
		{"empty key", "", "[MASKED]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskAPIKey(tt.apiKey); got != tt.want {
				t.Errorf("maskAPIKey(%q) = %q, want %q", tt.apiKey, got, tt.want)
			}
		})
	}
}
