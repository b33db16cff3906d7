package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dupecheck/dupecheck/internal/config"
	"github.com/dupecheck/dupecheck/internal/detect"
)

// evalCase is one corpus directory with its expected scan outcome.
type evalCase struct {
	Path             string
	ExpectedClusters int
	ExpectedMembers  int
}

func RunEvaluation(specificCases []string) error {
	fmt.Println("Running dupecheck evaluations...")

	workingDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	// Load expectations from CSV
	cases, err := loadExpectations(filepath.Join(workingDir, "evals", "expectations.csv"))
	if err != nil {
		return fmt.Errorf("failed to load expectations: %w", err)
	}

	cases = filterCases(cases, specificCases)
	if len(cases) == 0 {
		return fmt.Errorf("no evaluation cases selected")
	}

	// Load config
	cfg, err := config.Load(filepath.Join(workingDir, "evals", "eval-config.yaml"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	fmt.Println("\n--- Evaluation Results ---")

	passed := 0
	for _, c := range cases {
		// Each case directory is scanned as its own corpus
		engine := detect.NewEngine(cfg, filepath.Join(workingDir, c.Path), detect.ScanOptions{})
		result, err := engine.Scan(ctx)
		if err != nil {
			return fmt.Errorf("scanning %s: %w", c.Path, err)
		}

		clusters := len(result.Clusters)
		members := 0
		for _, cluster := range result.Clusters {
			members += len(cluster.Members)
		}

		ok := clusters == c.ExpectedClusters && members == c.ExpectedMembers
		if ok {
			passed++
		}

		status := "❌ FAIL"
		if ok {
			status = "✅ PASS"
		}

		fmt.Printf("%s %s: expected %d clusters / %d members, got %d / %d\n",
			status, c.Path, c.ExpectedClusters, c.ExpectedMembers, clusters, members)

		for _, cluster := range result.Clusters {
			fmt.Printf("  - %s [%s]: %d members, similarity %.2f\n",
				cluster.Type, cluster.Rule, len(cluster.Members), cluster.Similarity)
		}
	}

	fmt.Printf("\nSummary: %d/%d cases passed\n", passed, len(cases))

	if passed != len(cases) {
		return fmt.Errorf("evaluation failed: %d/%d cases passed", passed, len(cases))
	}

	fmt.Println("✅ All evaluations passed!")
	return nil
}

func loadExpectations(filePath string) ([]evalCase, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var cases []evalCase
	for i, record := range records {
		if i == 0 {
			continue // Skip header
		}
		if len(record) < 3 {
			continue
		}
		clusters, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("invalid expected_clusters for case %s: %v", record[0], err)
		}
		members, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("invalid expected_members for case %s: %v", record[0], err)
		}
		cases = append(cases, evalCase{
			Path:             record[0],
			ExpectedClusters: clusters,
			ExpectedMembers:  members,
		})
	}

	return cases, nil
}

// filterCases narrows the run to named cases. Names match either the
// full case path or its final directory.
func filterCases(cases []evalCase, names []string) []evalCase {
	if len(names) == 0 {
		return cases
	}

	var filtered []evalCase
	for _, c := range cases {
		for _, name := range names {
			if c.Path == name || filepath.Base(c.Path) == name {
				filtered = append(filtered, c)
				break
			}
		}
	}
	return filtered
}
