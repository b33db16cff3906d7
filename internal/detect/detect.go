// Package detect finds duplicated code regions across a corpus. Files
// are tokenized, fingerprinted with winnowed k-gram hashes, and shared
// fingerprints are extended into matched regions, merged across small
// gaps, scored, and clustered.
package detect

import (
	"context"

	"github.com/dupecheck/dupecheck/internal/config"
)

// Location is one matched region, in both on-disk lines and token
// indices of its source unit.
type Location struct {
	File       string `json:"file"` // unit id; includes a #L marker for markdown fragments
	Path       string `json:"path"` // on-disk path
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	StartToken int    `json:"-"`
	EndToken   int    `json:"-"` // exclusive
	Tokens     int    `json:"tokens"`
}

// Pair is a scored match between two regions.
type Pair struct {
	Rule       string
	Type       CloneType
	Similarity float64
	A, B       Location
	SnippetA   string
	SnippetB   string
}

// Cluster groups matched regions that transitively share pairs.
type Cluster struct {
	Rule       string     `json:"rule"`
	Type       CloneType  `json:"type"`
	Severity   string     `json:"severity"`
	Similarity float64    `json:"similarity"` // lowest pair similarity in the cluster
	Members    []Location `json:"members"`
	Key        string     `json:"key"` // stable baseline key, content-derived
}

// Result is the outcome of one scan.
type Result struct {
	Processed     int       `json:"processed"` // source units scanned, summed over rules
	TokensScanned int       `json:"tokens_scanned"`
	Clusters      []Cluster `json:"clusters"`
	Suppressed    int       `json:"suppressed"`     // findings dropped by inline directives
	Baselined     int       `json:"baselined"`      // clusters hidden by the accepted baseline
	TriageDropped int       `json:"triage_dropped"` // borderline pairs dismissed by triage
	HasFailures   bool      `json:"has_failures"`
}

// Triager re-judges a borderline near-miss pair. Returning false drops
// the pair from the results.
type Triager interface {
	Judge(ctx context.Context, pair *Pair) (bool, error)
}

// ShouldFail determines if the scan results should cause the tool to exit with error
func (r *Result) ShouldFail(cfg *config.Config) bool {
	if cfg.FailOnIssues != nil && !*cfg.FailOnIssues {
		return false
	}

	return r.HasFailures
}
