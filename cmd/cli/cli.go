// Package cli implements the dupecheck command line interface.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/dupecheck/dupecheck/internal/cache"
	"github.com/dupecheck/dupecheck/internal/config"
	"github.com/dupecheck/dupecheck/internal/corpus"
	"github.com/dupecheck/dupecheck/internal/detect"
	"github.com/dupecheck/dupecheck/internal/mcp"
	"github.com/dupecheck/dupecheck/internal/providers"
	"github.com/dupecheck/dupecheck/internal/report"
	"github.com/dupecheck/dupecheck/internal/triage"
)

var (
	configPath     = flag.String("config", "dupecheck.yaml", "path to configuration file")
	showHelp       = flag.Bool("help", false, "show help message")
	showVer        = flag.Bool("version", false, "show version")
	showConfig     = flag.Bool("show-config", false, "print full configuration")
	initConfig     = flag.Bool("init", false, "create a starter configuration file")
	format         = flag.String("format", "text", "output format: text, github or json")
	staged         = flag.Bool("staged", false, "scan git staged files instead of the full corpus")
	updateBaseline = flag.Bool("update-baseline", false, "accept every surviving cluster as the new baseline")
	serveMCP       = flag.String("serve-mcp", "", "serve scan tooling over MCP on this host:port instead of scanning")
	showKeys       = flag.Bool("show-keys", false, "print cluster baseline keys in text output")
	showFiles      = flag.Bool("show-files", false, "list scanned and ignored files before results")
)

const version = "0.1.0"

// ErrDuplicatesFound marks a scan that completed normally but found
// failing clusters. The results are already reported, so main exits
// non-zero without logging it again.
var ErrDuplicatesFound = errors.New("duplicate detection failed with errors")

func Execute() error {
	flag.Parse()

	if *showHelp {
		showUsage()
		return nil
	}

	if *showVer {
		fmt.Printf("dupecheck version %s\n", version)
		return nil
	}

	if *initConfig {
		return runInit()
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		return err
	}

	if *showConfig {
		return cfg.PrintAsYAML()
	}

	workingDir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting working directory: %v\n", err)
		return err
	}

	var store *cache.Store
	if cfg.Cache.Path != "" {
		store, err = cache.Open(cfg.Cache.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
			return err
		}
		defer store.Close()
	}

	if *serveMCP != "" {
		return serve(cfg, workingDir, store, *serveMCP)
	}

	// Nil inputs means the full corpus; an explicit empty list scans
	// nothing.
	var inputs []string
	if args := flag.Args(); len(args) > 0 {
		inputs = args
	}
	if *staged {
		inputs = append(inputs, corpus.GetStagedFiles(workingDir)...)
		if inputs == nil {
			inputs = []string{}
		}
	}

	if *showFiles {
		if err := displayFiles(cfg, workingDir, inputs); err != nil {
			fmt.Fprintf(os.Stderr, "Error matching files: %v\n", err)
			return err
		}
	}

	options := detect.ScanOptions{
		Inputs:         inputs,
		UpdateBaseline: *updateBaseline,
		Store:          store,
	}

	if cfg.Triage != nil && cfg.Triage.Enabled {
		triager, err := triage.New(cfg.Triage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating triage client: %v\n", err)
			return err
		}
		options.Triager = triager
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := detect.NewEngine(cfg, workingDir, options)
	result, err := engine.Scan(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
		return err
	}

	reporter, err := reporterFor(*format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	reporter.Report(result)

	if result.ShouldFail(cfg) {
		return ErrDuplicatesFound
	}

	return nil
}

func reporterFor(format string) (report.Reporter, error) {
	switch format {
	case "text":
		return report.NewStdoutReporter(&report.StdoutReporterOptions{
			ShowKeys: *showKeys,
		}), nil
	case "github":
		return report.NewGitHubReporter(), nil
	case "json":
		return report.NewJSONReporter(), nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// displayFiles shows which files the scan covers. Explicit inputs are
// classified against the rules; with none, the resolved corpus of every
// enabled rule is listed.
func displayFiles(cfg *config.Config, workingDir string, inputs []string) error {
	matcher, err := corpus.NewMatcher(cfg, workingDir)
	if err != nil {
		return err
	}

	var results []corpus.MatcherResult
	if inputs != nil {
		results, err = matcher.MatchFiles(inputs)
		if err != nil {
			return err
		}
	} else {
		for _, rule := range cfg.Rules {
			if !rule.Enabled {
				continue
			}
			for _, path := range matcher.RuleFiles(rule.Name) {
				results = append(results, corpus.MatcherResult{
					Path:     path,
					Type:     corpus.FileTypeSource,
					RuleName: rule.Name,
				})
			}
		}
	}

	corpus.DisplayMatchResults(results)
	return nil
}

// serve blocks until interrupted, exposing scan tooling to agent
// clients. When triage is configured with a real provider the server
// also fronts it for llm_request forwarding; an MCP triage provider is
// never re-exported.
func serve(cfg *config.Config, workingDir string, store *cache.Store, address string) error {
	handler := mcp.NewToolsResourcesHandler(cfg, workingDir, store)

	var llmHandler mcp.LLMRequestHandler
	if cfg.Triage != nil && cfg.Triage.Enabled && cfg.Triage.Provider != string(providers.ProviderMCP) {
		client, err := providers.CreateClient[triage.Verdict](cfg.Triage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating provider client: %v\n", err)
			return err
		}
		llmHandler = mcp.NewDirectLLMRequestHandler(client)
	}

	server := mcp.NewServer(address, handler, llmHandler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := server.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return server.Stop()
}

func showUsage() {
	fmt.Printf("Usage: %s [options] [paths...]\n\n", os.Args[0])
	fmt.Printf("Dupecheck finds duplicated code across a repository by fingerprint matching, with optional AI triage of borderline matches.\n\n")
	fmt.Println("Arguments:")
	fmt.Println("  [paths...] - Files to scan. With no paths every file matched by the configured rules is scanned.")
	fmt.Println("Options:")
	flag.PrintDefaults()
}
