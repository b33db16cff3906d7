// Package report renders scan results for terminals and CI.
package report

import "github.com/dupecheck/dupecheck/internal/detect"

// Reporter defines the interface for reporting duplicate scan results
type Reporter interface {
	Report(result *detect.Result)
}
