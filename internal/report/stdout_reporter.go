package report

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/dupecheck/dupecheck/internal/color"
	"github.com/dupecheck/dupecheck/internal/detect"
)

var (
	boldCyan = lipgloss.NewStyle().
			Bold(true).
			Foreground(color.Cyan)

	muted = lipgloss.NewStyle().
		Foreground(color.DarkGray)

	foreground = lipgloss.NewStyle().
			Foreground(color.LightGray)

	boldGreen = lipgloss.NewStyle().
			Bold(true).
			Foreground(color.DarkGreen)

	boldRed = lipgloss.NewStyle().
		Bold(true).
		Foreground(color.DarkRed)

	red = lipgloss.NewStyle().
		Foreground(color.Red)

	boldYellow = lipgloss.NewStyle().
			Bold(true).
			Foreground(color.Orange)

	yellow = lipgloss.NewStyle().
		Foreground(color.Yellow)

	boldBlue = lipgloss.NewStyle().
			Bold(true).
			Foreground(color.DarkBlue)

	blue = lipgloss.NewStyle().
		Foreground(color.Blue)

	bold = lipgloss.NewStyle().
		Bold(true)
)

// StdoutReporter implements Reporter interface for console output
type StdoutReporter struct {
	options *StdoutReporterOptions
	out     io.Writer
}

type StdoutReporterOptions struct {
	// ShowKeys prints each cluster's baseline key, for inspecting what
	// -update-baseline would accept.
	ShowKeys bool
}

// NewStdoutReporter creates a new stdout reporter
func NewStdoutReporter(options *StdoutReporterOptions) *StdoutReporter {
	return &StdoutReporter{
		options: options,
		out:     os.Stdout,
	}
}

// Report formats and displays the duplicate scan results to stdout
func (r *StdoutReporter) Report(result *detect.Result) {
	fmt.Fprint(r.out, "\n")
	fmt.Fprintln(r.out, boldCyan.Render("🔍 DUPLICATE SCAN RESULTS"))

	if result.Processed == 0 {
		fmt.Fprintln(r.out, muted.Render("Nothing found to scan."))
		return
	}

	if len(result.Clusters) == 0 {
		fmt.Fprint(r.out, "\n")
		fmt.Fprintln(r.out, boldGreen.Render("🎉 No duplicates found!"))
		r.displayCounters(result)
		return
	}

	// Group clusters by severity
	errorClusters := make([]detect.Cluster, 0)
	warningClusters := make([]detect.Cluster, 0)
	noticeClusters := make([]detect.Cluster, 0)

	for _, cluster := range result.Clusters {
		switch cluster.Severity {
		case detect.SeverityError:
			errorClusters = append(errorClusters, cluster)
		case detect.SeverityWarning:
			warningClusters = append(warningClusters, cluster)
		case detect.SeverityNotice:
			noticeClusters = append(noticeClusters, cluster)
		}
	}

	// Display errors
	if len(errorClusters) > 0 {
		fmt.Fprint(r.out, "\n")
		fmt.Fprintln(r.out, boldRed.Render(fmt.Sprintf("🚨 ERRORS (%d)", len(errorClusters))))
		for i, cluster := range errorClusters {
			r.displayCluster(cluster, i+1, red)
		}
	}

	// Display warnings
	if len(warningClusters) > 0 {
		fmt.Fprint(r.out, "\n")
		fmt.Fprintln(r.out, boldYellow.Render(fmt.Sprintf("⚠️  WARNINGS (%d)", len(warningClusters))))
		for i, cluster := range warningClusters {
			r.displayCluster(cluster, i+1, yellow)
		}
	}

	// Display notices
	if len(noticeClusters) > 0 {
		fmt.Fprint(r.out, "\n")
		fmt.Fprintln(r.out, boldBlue.Render(fmt.Sprintf("💡 NOTICES (%d)", len(noticeClusters))))
		for i, cluster := range noticeClusters {
			r.displayCluster(cluster, i+1, blue)
		}
	}

	fmt.Fprint(r.out, "\n")
	summary := bold.Render("📊 SUMMARY: ") +
		red.Render(fmt.Sprintf("%d", len(errorClusters))) +
		" errors, " +
		yellow.Render(fmt.Sprintf("%d", len(warningClusters))) +
		" warnings, " +
		blue.Render(fmt.Sprintf("%d", len(noticeClusters))) +
		" notices"
	fmt.Fprintln(r.out, summary)
	r.displayCounters(result)
}

func (r *StdoutReporter) displayCluster(cluster detect.Cluster, number int, severityColor lipgloss.Style) {
	numberText := severityColor.Render(fmt.Sprintf("%d. ", number))
	headline := bold.Render(fmt.Sprintf("%s: %d duplicated regions (%s, similarity %.0f%%)",
		cluster.Rule, len(cluster.Members), cluster.Type, cluster.Similarity*100))
	fmt.Fprintf(r.out, "   %s%s\n", numberText, headline)

	for _, member := range cluster.Members {
		location := fmt.Sprintf("%s:%d-%d", member.Path, member.StartLine, member.EndLine)
		tokens := fmt.Sprintf("(%d tokens)", member.Tokens)
		fmt.Fprintf(r.out, "      %s %s\n", foreground.Render(location), muted.Render(tokens))
	}

	if r.options.ShowKeys {
		fmt.Fprintf(r.out, "      %s\n", muted.Render("key: "+cluster.Key))
	}

	fmt.Fprintln(r.out)
}

func (r *StdoutReporter) displayCounters(result *detect.Result) {
	counters := fmt.Sprintf("%d units scanned, %d tokens", result.Processed, result.TokensScanned)
	if result.Suppressed > 0 {
		counters += fmt.Sprintf(", %d suppressed", result.Suppressed)
	}
	if result.Baselined > 0 {
		counters += fmt.Sprintf(", %d baselined", result.Baselined)
	}
	if result.TriageDropped > 0 {
		counters += fmt.Sprintf(", %d dropped by triage", result.TriageDropped)
	}
	fmt.Fprintln(r.out, muted.Render(counters))
}
