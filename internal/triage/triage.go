// Package triage re-judges borderline near-miss pairs with an AI
// provider before they reach the report. It is opt-in: scans run fully
// offline without it.
package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dupecheck/dupecheck/internal/config"
	"github.com/dupecheck/dupecheck/internal/detect"
	"github.com/dupecheck/dupecheck/internal/providers"
)

// Verdict is the structured judgement a provider returns for one pair.
type Verdict struct {
	Verdict    string  `json:"verdict" jsonschema_description:"Whether the two regions duplicate the same logic (duplicate) or are only coincidentally similar (distinct)"`
	Reasoning  string  `json:"reasoning" jsonschema_description:"Brief reasoning behind the verdict"`
	Confidence float64 `json:"confidence" jsonschema_description:"Confidence in the verdict (0.0-1.0)"`
}

// Triager judges near-miss pairs through a provider client. It
// implements detect.Triager.
type Triager struct {
	cfg    *config.Triage
	client providers.Client[Verdict]
}

// New builds a Triager for the configured provider.
func New(cfg *config.Triage) (*Triager, error) {
	client, err := providers.CreateClient[Verdict](cfg)
	if err != nil {
		return nil, err
	}
	return &Triager{cfg: cfg, client: client}, nil
}

// NewWithClient builds a Triager around an existing client.
func NewWithClient(cfg *config.Triage, client providers.Client[Verdict]) *Triager {
	return &Triager{cfg: cfg, client: client}
}

// Judge asks the provider whether the pair is genuinely duplicated
// logic. Returning false drops the pair from the scan results.
func (t *Triager) Judge(ctx context.Context, pair *detect.Pair) (bool, error) {
	timeout := time.Duration(t.cfg.Timeout) * time.Second
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req := &providers.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildPairPrompt(pair),
		MaxTokens:    t.cfg.MaxTokens,
		Timeout:      timeout,
	}

	verdict, usage, err := t.client.Complete(ctx, req)
	if err != nil {
		return false, fmt.Errorf("AI request failed: %w", err)
	}

	log.Debug("triage verdict",
		"provider", t.client.Name(),
		"a", pair.A.File,
		"b", pair.B.File,
		"verdict", verdict.Verdict,
		"confidence", verdict.Confidence,
		"tokens", usage.TotalTokens)

	confidence := 0.7
	if t.cfg.Confidence != nil {
		confidence = *t.cfg.Confidence
	}

	// Only a confident "distinct" dismisses the pair; low-confidence
	// and malformed verdicts keep it.
	if strings.EqualFold(verdict.Verdict, "distinct") && verdict.Confidence >= confidence {
		return false, nil
	}
	return true, nil
}

const systemPrompt = `You are a code reviewer deciding whether two code regions duplicate the same logic.

The regions were flagged by token-level similarity. Judge intent, not formatting: renamed identifiers, changed literals and shuffled comments do not make regions distinct. Regions are distinct when they merely share boilerplate or language idioms while implementing different behavior.

ONLY JUDGE THE REGIONS GIVEN, NEVER SUGGEST REFACTORINGS
Return a structured JSON verdict with the following fields:
- verdict: "duplicate" if the regions implement the same logic, "distinct" otherwise
- reasoning: brief reasoning behind the verdict
- confidence: your confidence in the verdict (0.0-1.0)`

func buildPairPrompt(pair *detect.Pair) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("RULE: %s\n", pair.Rule))
	prompt.WriteString(fmt.Sprintf("TOKEN SIMILARITY: %.2f\n\n", pair.Similarity))

	prompt.WriteString(fmt.Sprintf("REGION A: %s:%d-%d\n", pair.A.Path, pair.A.StartLine, pair.A.EndLine))
	prompt.WriteString("```\n")
	prompt.WriteString(pair.SnippetA)
	prompt.WriteString("\n```\n\n")

	prompt.WriteString(fmt.Sprintf("REGION B: %s:%d-%d\n", pair.B.Path, pair.B.StartLine, pair.B.EndLine))
	prompt.WriteString("```\n")
	prompt.WriteString(pair.SnippetB)
	prompt.WriteString("\n```\n")

	return prompt.String()
}
