package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dupecheck/dupecheck/internal/detect"
)

// GitHubReporter implements Reporter interface for GitHub Actions annotations
type GitHubReporter struct {
	out io.Writer
}

// NewGitHubReporter creates a new GitHub Actions reporter
func NewGitHubReporter() *GitHubReporter {
	return &GitHubReporter{out: os.Stdout}
}

// Report outputs GitHub Actions annotations for duplicate scan results
func (r *GitHubReporter) Report(result *detect.Result) {
	if result.Processed == 0 {
		r.outputNotice("Nothing found to scan.")
		return
	}

	if len(result.Clusters) == 0 {
		r.outputNotice("🎉 No duplicates found!")
		return
	}

	r.outputNotice(fmt.Sprintf("📊 Found %d duplicate clusters", len(result.Clusters)))

	for _, cluster := range result.Clusters {
		r.outputCluster(cluster)
	}
}

// outputCluster emits one annotation per member so every affected file
// carries the finding.
func (r *GitHubReporter) outputCluster(cluster detect.Cluster) {
	// Determine annotation level based on cluster severity
	level := "warning"
	switch cluster.Severity {
	case detect.SeverityError:
		level = "error"
	case detect.SeverityNotice:
		level = "notice"
	}

	for i, member := range cluster.Members {
		message := fmt.Sprintf("[%s] %s duplicate spanning %d regions (similarity %.0f%%)",
			cluster.Rule, cluster.Type, len(cluster.Members), cluster.Similarity*100)

		if others := otherLocations(cluster.Members, i); others != "" {
			message += "; also at " + others
		}

		escapedMessage := r.escapeForGitHubActions(message)
		annotation := fmt.Sprintf("::%s file=%s,line=%d,col=1::%s", level, member.Path, member.StartLine, escapedMessage)
		fmt.Fprintln(r.out, annotation)
	}
}

func otherLocations(members []detect.Location, skip int) string {
	var parts []string
	for i, member := range members {
		if i == skip {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%d-%d", member.Path, member.StartLine, member.EndLine))
	}
	return strings.Join(parts, ", ")
}

// outputNotice outputs a GitHub Actions notice message
func (r *GitHubReporter) outputNotice(message string) {
	fmt.Fprintf(r.out, "::notice ::%s\n", r.escapeForGitHubActions(message))
}

// escapeForGitHubActions escapes special characters for GitHub Actions annotations
func (r *GitHubReporter) escapeForGitHubActions(message string) string {
	// Replace newlines with %0A
	message = strings.ReplaceAll(message, "\n", "%0A")
	// Replace carriage returns with %0D
	message = strings.ReplaceAll(message, "\r", "%0D")
	return message
}
