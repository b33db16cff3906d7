package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dupecheck/dupecheck/internal/detect"
)

func testResult() *detect.Result {
	return &detect.Result{
		Processed:     3,
		TokensScanned: 420,
		Suppressed:    1,
		Clusters: []detect.Cluster{
			{
				Rule:       "go-sources",
				Type:       detect.Type1,
				Severity:   detect.SeverityError,
				Similarity: 1.0,
				Members: []detect.Location{
					{File: "pkg/a.go", Path: "pkg/a.go", StartLine: 3, EndLine: 14, Tokens: 52},
					{File: "pkg/b.go", Path: "pkg/b.go", StartLine: 9, EndLine: 20, Tokens: 52},
				},
				Key: "0a1b2c",
			},
			{
				Rule:       "go-sources",
				Type:       detect.Type3,
				Severity:   detect.SeverityNotice,
				Similarity: 0.88,
				Members: []detect.Location{
					{File: "pkg/c.go", Path: "pkg/c.go", StartLine: 1, EndLine: 9, Tokens: 44},
					{File: "pkg/d.go", Path: "pkg/d.go", StartLine: 5, EndLine: 13, Tokens: 47},
				},
				Key: "3d4e5f",
			},
		},
		HasFailures: true,
	}
}

func renderStdout(result *detect.Result, options *StdoutReporterOptions) string {
	var buf bytes.Buffer
	reporter := NewStdoutReporter(options)
	reporter.out = &buf
	reporter.Report(result)
	return buf.String()
}

func TestStdoutReporter_Report(t *testing.T) {
	out := renderStdout(testResult(), &StdoutReporterOptions{})

	for _, want := range []string{
		"DUPLICATE SCAN RESULTS",
		"ERRORS (1)",
		"NOTICES (1)",
		"pkg/a.go:3-14",
		"pkg/b.go:9-20",
		"(52 tokens)",
		"similarity 88%",
		" errors, ",
		"3 units scanned, 420 tokens, 1 suppressed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\noutput:\n%s", want, out)
		}
	}

	if strings.Contains(out, "WARNINGS (") {
		t.Error("output has a warnings section for a result without warnings")
	}
	if strings.Contains(out, "key: 0a1b2c") {
		t.Error("output shows baseline keys without ShowKeys")
	}
}

func TestStdoutReporter_ShowKeys(t *testing.T) {
	out := renderStdout(testResult(), &StdoutReporterOptions{ShowKeys: true})

	if !strings.Contains(out, "key: 0a1b2c") {
		t.Errorf("output missing baseline key\noutput:\n%s", out)
	}
}

func TestStdoutReporter_EmptyCorpus(t *testing.T) {
	out := renderStdout(&detect.Result{}, &StdoutReporterOptions{})

	if !strings.Contains(out, "Nothing found to scan.") {
		t.Errorf("output missing empty-corpus message\noutput:\n%s", out)
	}
}

func TestStdoutReporter_CleanScan(t *testing.T) {
	out := renderStdout(&detect.Result{Processed: 2, TokensScanned: 77}, &StdoutReporterOptions{})

	if !strings.Contains(out, "No duplicates found!") {
		t.Errorf("output missing clean-scan message\noutput:\n%s", out)
	}
	if !strings.Contains(out, "2 units scanned, 77 tokens") {
		t.Errorf("output missing scan counters\noutput:\n%s", out)
	}
}

func TestGitHubReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewGitHubReporter()
	reporter.out = &buf
	reporter.Report(testResult())

	want := strings.Join([]string{
		"::notice ::📊 Found 2 duplicate clusters",
		"::error file=pkg/a.go,line=3,col=1::[go-sources] type-1 duplicate spanning 2 regions (similarity 100%); also at pkg/b.go:9-20",
		"::error file=pkg/b.go,line=9,col=1::[go-sources] type-1 duplicate spanning 2 regions (similarity 100%); also at pkg/a.go:3-14",
		"::notice file=pkg/c.go,line=1,col=1::[go-sources] type-3 duplicate spanning 2 regions (similarity 88%); also at pkg/d.go:5-13",
		"::notice file=pkg/d.go,line=5,col=1::[go-sources] type-3 duplicate spanning 2 regions (similarity 88%); also at pkg/c.go:1-9",
	}, "\n") + "\n"

	if buf.String() != want {
		t.Errorf("annotations = \n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestGitHubReporter_CleanScan(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewGitHubReporter()
	reporter.out = &buf
	reporter.Report(&detect.Result{Processed: 2})

	if got, want := buf.String(), "::notice ::🎉 No duplicates found!\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestJSONReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporter()
	reporter.out = &buf
	reporter.Report(testResult())

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	if decoded["processed"] != float64(3) {
		t.Errorf("processed = %v, want 3", decoded["processed"])
	}
	if decoded["has_failures"] != true {
		t.Errorf("has_failures = %v, want true", decoded["has_failures"])
	}

	clusters, ok := decoded["clusters"].([]any)
	if !ok || len(clusters) != 2 {
		t.Fatalf("clusters = %v, want 2 entries", decoded["clusters"])
	}

	first, ok := clusters[0].(map[string]any)
	if !ok {
		t.Fatalf("first cluster is not an object: %v", clusters[0])
	}
	if first["type"] != "type-1" {
		t.Errorf("first cluster type = %v, want type-1", first["type"])
	}
	if first["severity"] != "ERROR" {
		t.Errorf("first cluster severity = %v, want ERROR", first["severity"])
	}

	members, ok := first["members"].([]any)
	if !ok || len(members) != 2 {
		t.Fatalf("first cluster members = %v, want 2 entries", first["members"])
	}
}

func TestJSONReporter_EmptyClustersIsArray(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporter()
	reporter.out = &buf
	reporter.Report(&detect.Result{Processed: 2})

	if !strings.Contains(buf.String(), `"clusters": []`) {
		t.Errorf("output should carry an empty clusters array:\n%s", buf.String())
	}
}
