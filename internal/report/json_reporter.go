package report

import (
	"encoding/json"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/dupecheck/dupecheck/internal/detect"
)

// JSONReporter implements Reporter interface for machine-readable output
type JSONReporter struct {
	out io.Writer
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{out: os.Stdout}
}

// Report writes the scan result as one indented JSON document
func (r *JSONReporter) Report(result *detect.Result) {
	// Keep clusters an array even when empty, consumers should not
	// have to handle null.
	out := *result
	if out.Clusters == nil {
		out.Clusters = []detect.Cluster{}
	}

	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(&out); err != nil {
		log.Error("Failed to encode scan result", "err", err)
	}
}
