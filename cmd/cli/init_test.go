package cli

import (
	"testing"

	"github.com/dupecheck/dupecheck/internal/config"
	"github.com/dupecheck/dupecheck/internal/providers"
)

func TestGenerateConfig(t *testing.T) {
	t.Run("without triage", func(t *testing.T) {
		configStr, err := generateConfig(ConfigData{})
		if err != nil {
			t.Fatalf("generateConfig() failed: %v", err)
		}

		cfg, err := config.ParseFromBytes([]byte(configStr))
		if err != nil {
			t.Fatalf("generated config does not parse: %v", err)
		}

		if cfg.Triage != nil {
			t.Error("generateConfig() emitted a triage section without triage enabled")
		}
		if cfg.Cache.Path == "" {
			t.Error("generateConfig() missing cache path")
		}
		if !cfg.Cache.Baseline {
			t.Error("generateConfig() baseline not enabled")
		}
		if len(cfg.Rules) != 1 {
			t.Fatalf("generateConfig() rules = %d, want 1", len(cfg.Rules))
		}
		if cfg.Rules[0].MinTokens != 24 {
			t.Errorf("generateConfig() min_tokens = %d, want 24", cfg.Rules[0].MinTokens)
		}
	})

	// Every provider's defaults must yield a parseable triage section
	for _, provider := range providers.GetAllProviders() {
		t.Run(string(provider), func(t *testing.T) {
			defaults := providers.GetProviderDefaults(provider)

			configStr, err := generateConfig(ConfigData{
				TriageEnabled: true,
				Provider:      string(provider),
				Model:         defaults.Model,
				APIKeyVar:     defaults.ApiKeyVar,
			})
			if err != nil {
				t.Errorf("generateConfig() with provider defaults failed: %v", err)
				return
			}

			cfg, err := config.ParseFromBytes([]byte(configStr))
			if err != nil {
				t.Errorf("generated config does not parse: %v", err)
				return
			}

			if cfg.Triage == nil {
				t.Fatal("generateConfig() missing triage section")
			}
			if !cfg.Triage.Enabled {
				t.Error("generateConfig() triage not enabled")
			}
			if cfg.Triage.Provider != string(provider) {
				t.Errorf("generateConfig() provider mismatch: got %s, want %s", cfg.Triage.Provider, provider)
			}
			if cfg.Triage.Model != defaults.Model {
				t.Errorf("generateConfig() model mismatch: got %s, want %s", cfg.Triage.Model, defaults.Model)
			}
		})
	}
}
