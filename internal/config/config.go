package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Version      string  `yaml:"version"`
	FailOnIssues *bool   `yaml:"fail_on_issues,omitempty"`
	Cache        Cache   `yaml:"cache,omitempty"`
	Triage       *Triage `yaml:"triage,omitempty"`
	Rules        []Rule  `yaml:"rules"`
}

// Cache configures the on-disk token cache and the baseline of accepted
// duplicates. An empty path disables caching entirely.
type Cache struct {
	Path     string `yaml:"path,omitempty"`
	Baseline bool   `yaml:"baseline,omitempty"`
}

// Triage configures the optional AI pass that re-judges borderline
// near-miss pairs. Pairs scoring inside [band_low, band_high) are sent
// to the provider; everything else is decided locally.
type Triage struct {
	Enabled     bool     `yaml:"enabled"`
	Provider    string   `yaml:"provider"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"api_key,omitempty"`
	BaseURL     string   `yaml:"base_url,omitempty"`
	Timeout     int      `yaml:"timeout"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	BandLow     *float64 `yaml:"band_low,omitempty"`
	BandHigh    *float64 `yaml:"band_high,omitempty"`
	Confidence  *float64 `yaml:"confidence,omitempty"`
}

type Rule struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Enabled     bool        `yaml:"enabled"`
	Files       FilePattern `yaml:"files"`
	MinTokens   int         `yaml:"min_tokens,omitempty"`
	KGram       int         `yaml:"kgram,omitempty"`
	Window      int         `yaml:"window,omitempty"`
	Similarity  *float64    `yaml:"similarity,omitempty"`
	FailOn      string      `yaml:"fail_on"`
}

type FilePattern struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude,omitempty"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	data = []byte(os.ExpandEnv(string(data)))

	config, err := ParseFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func ParseFromBytes(data []byte) (*Config, error) {

	var config Config
	if err := yaml.UnmarshalWithOptions(data, &config, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s", c.Version)
	}

	if len(c.Rules) == 0 {
		return fmt.Errorf("at least one rule is required")
	}

	ruleNames := make(map[string]bool)
	for i, rule := range c.Rules {
		if rule.Name == "" {
			return fmt.Errorf("rule name is required")
		}
		if ruleNames[rule.Name] {
			return fmt.Errorf("duplicate rule name: %s", rule.Name)
		}
		ruleNames[rule.Name] = true

		if len(rule.Files.Include) == 0 {
			return fmt.Errorf("at least one include pattern is required for rule: %s", rule.Name)
		}

		// Set per-rule defaults before range checks
		if c.Rules[i].MinTokens == 0 {
			c.Rules[i].MinTokens = 24
		}
		if c.Rules[i].KGram == 0 {
			c.Rules[i].KGram = 8
		}
		if c.Rules[i].Window == 0 {
			c.Rules[i].Window = 4
		}
		if c.Rules[i].Similarity == nil {
			defaultSimilarity := 0.8
			c.Rules[i].Similarity = &defaultSimilarity
		}
		if c.Rules[i].FailOn == "" {
			c.Rules[i].FailOn = "warning"
		}

		if c.Rules[i].KGram < 2 {
			return fmt.Errorf("kgram must be at least 2 for rule: %s", rule.Name)
		}
		if c.Rules[i].Window < 1 {
			return fmt.Errorf("window must be at least 1 for rule: %s", rule.Name)
		}
		if c.Rules[i].MinTokens < c.Rules[i].KGram {
			return fmt.Errorf("min_tokens must be at least kgram (%d) for rule: %s", c.Rules[i].KGram, rule.Name)
		}
		if s := *c.Rules[i].Similarity; s <= 0 || s > 1 {
			return fmt.Errorf("similarity must be between 0.0 and 1.0, got: %f for rule: %s", s, rule.Name)
		}

		if c.Rules[i].FailOn != "error" && c.Rules[i].FailOn != "warning" && c.Rules[i].FailOn != "notice" {
			return fmt.Errorf("fail_on must be 'error', 'warning', or 'notice' for rule: %s", rule.Name)
		}
	}

	if c.Cache.Baseline && c.Cache.Path == "" {
		return fmt.Errorf("cache.path is required when cache.baseline is enabled")
	}

	if c.Triage != nil && c.Triage.Enabled {
		if err := c.Triage.validate(); err != nil {
			return err
		}
	}

	if c.FailOnIssues == nil {
		defaultFailOnIssues := true
		c.FailOnIssues = &defaultFailOnIssues
	}

	return nil
}

func (t *Triage) validate() error {
	// Whether the provider name is known is checked on client instantiation
	if t.Provider == "" {
		return fmt.Errorf("triage provider is required")
	}

	if t.Model == "" {
		return fmt.Errorf("triage model is required")
	}

	// API key is optional for local providers (ollama, mcp)
	if t.Provider != "ollama" && t.Provider != "mcp" && t.APIKey == "" {
		return fmt.Errorf("api_key is required for triage provider %s", t.Provider)
	}

	if t.Provider == "mcp" && t.BaseURL == "" {
		return fmt.Errorf("base_url (host:port) is required for triage provider mcp")
	}

	// Set defaults
	if t.Timeout == 0 {
		t.Timeout = 30
	}

	if t.MaxTokens == 0 {
		t.MaxTokens = 1500
	}

	if t.Temperature == nil {
		defaultTemperature := 0.1
		t.Temperature = &defaultTemperature
	}

	if t.BandLow == nil {
		defaultBandLow := 0.6
		t.BandLow = &defaultBandLow
	}
	if t.BandHigh == nil {
		defaultBandHigh := 0.9
		t.BandHigh = &defaultBandHigh
	}
	if t.Confidence == nil {
		defaultConfidence := 0.7
		t.Confidence = &defaultConfidence
	}

	if t.Timeout < 0 {
		return fmt.Errorf("triage timeout must be positive number, got: %d", t.Timeout)
	}

	// Validate temperature range (0.0 is allowed for deterministic output)
	if *t.Temperature < 0 || *t.Temperature > 1 {
		return fmt.Errorf("triage temperature must be between 0.0 and 1.0, got: %f", *t.Temperature)
	}

	if *t.BandLow < 0 || *t.BandHigh > 1 || *t.BandLow > *t.BandHigh {
		return fmt.Errorf("triage band must satisfy 0 <= band_low <= band_high <= 1, got: [%f, %f]", *t.BandLow, *t.BandHigh)
	}

	if *t.Confidence < 0 || *t.Confidence > 1 {
		return fmt.Errorf("triage confidence must be between 0.0 and 1.0, got: %f", *t.Confidence)
	}

	return nil
}

// maskAPIKey masks the API key for secure display
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 11 {
		return "[MASKED]"
	}
	return apiKey[:7] + "[MASKED]" + apiKey[len(apiKey)-4:]
}

// MaskedYAML renders the config as YAML with the API key masked.
func (c *Config) MaskedYAML() ([]byte, error) {
	configCopy := *c
	if c.Triage != nil {
		triageCopy := *c.Triage
		triageCopy.APIKey = maskAPIKey(c.Triage.APIKey)
		configCopy.Triage = &triageCopy
	}

	return yaml.Marshal(&configCopy)
}

func (c *Config) PrintAsYAML() error {
	yamlData, err := c.MaskedYAML()
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	// Add a newline to the end of the YAML string
	fmt.Println(string(yamlData))
	return nil
}
