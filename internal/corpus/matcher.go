package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dupecheck/dupecheck/internal/config"
)

type FileType int

const (
	FileTypeIgnored FileType = iota
	FileTypeSource
)

type IgnoreReason int

const (
	IgnoreReasonNone IgnoreReason = iota
	IgnoreReasonIgnore
	IgnoreReasonExcludedByRule
	IgnoreReasonNoRuleMatch
)

func (r IgnoreReason) String() string {
	switch r {
	case IgnoreReasonIgnore:
		return "ignore"
	case IgnoreReasonExcludedByRule:
		return "excluded by rule"
	case IgnoreReasonNoRuleMatch:
		return "no rule match"
	default:
		return "unknown"
	}
}

type MatcherResult struct {
	Path         NormalizedPath
	Type         FileType
	RuleName     string
	IgnoreReason IgnoreReason
}

type NormalizedPath string

func NormalizedPathsToStrings(paths []NormalizedPath) []string {
	result := make([]string, len(paths))
	for i, path := range paths {
		result[i] = string(path)
	}
	return result
}

func NormalizePath(path string) NormalizedPath {
	if strings.HasPrefix(path, "./") {
		return NormalizedPath(path[2:])
	}
	return NormalizedPath(path)
}

// mapping rule names to a list of files
type RuleFileMap map[string][]NormalizedPath

type Matcher struct {
	config      *config.Config
	ignoreRules []string
	ruleFiles   RuleFileMap
	workingDir  string
}

func NewMatcher(cfg *config.Config, workingDir string) (*Matcher, error) {
	m := &Matcher{
		config:     cfg,
		ruleFiles:  make(RuleFileMap),
		workingDir: workingDir,
	}

	gitignoreRules, err := LoadGitignore(m.workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load gitignore: %w", err)
	}
	dupeignoreRules, err := LoadDupeignore(m.workingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dupeignore: %w", err)
	}
	m.ignoreRules = append(defaultIgnores(), gitignoreRules...)
	m.ignoreRules = append(m.ignoreRules, dupeignoreRules...)
	if err := m.resolveRuleFiles(); err != nil {
		return nil, fmt.Errorf("failed to resolve rule files: %w", err)
	}

	return m, nil
}

// defaultIgnores are always active; version control internals are never
// part of a corpus.
func defaultIgnores() []string {
	return []string{".git/"}
}

func (m *Matcher) resolveRuleFiles() error {
	// find all files in the working directory matched by each rule
	for _, rule := range m.config.Rules {
		if !rule.Enabled {
			continue
		}
		var files []NormalizedPath

		err := filepath.WalkDir(m.workingDir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}

			relPath, err := filepath.Rel(m.workingDir, path)
			if err != nil {
				return err
			}

			if d.IsDir() {
				// Prune ignored directories so large trees stay cheap
				if relPath != "." && MatchesPatterns(relPath, m.ignoreRules) {
					return filepath.SkipDir
				}
				return nil
			}

			if MatchesPatterns(relPath, m.ignoreRules) {
				return nil
			}

			if MatchesPatterns(relPath, rule.Files.Exclude) {
				return nil
			}

			if MatchesPatterns(relPath, rule.Files.Include) {
				files = append(files, NormalizePath(relPath))
			}

			return nil
		})

		if err != nil {
			return fmt.Errorf("failed to resolve rule files: %w", err)
		}

		m.ruleFiles[rule.Name] = files
	}

	return nil
}

// RuleFiles returns the working-directory files resolved for a rule.
func (m *Matcher) RuleFiles(ruleName string) []NormalizedPath {
	return m.ruleFiles[ruleName]
}

// MatchFiles classifies an explicit file list, such as staged paths,
// against the ignore rules and every enabled rule's patterns.
func (m *Matcher) MatchFiles(inputFiles []string) ([]MatcherResult, error) {
	var results []MatcherResult
	seen := make(map[string]bool)

	for _, file := range inputFiles {
		fileResults := m.matchFile(file)
		for _, result := range fileResults {
			key := string(result.Path) + "\x00" + result.RuleName
			if !seen[key] {
				seen[key] = true
				results = append(results, result)
			}
		}
	}

	return results, nil
}

func (m *Matcher) matchFile(filePath string) []MatcherResult {
	normalizedPath := NormalizePath(filePath)

	// Check if file should be ignored
	if MatchesPatterns(filePath, m.ignoreRules) {
		return []MatcherResult{{
			Path:         normalizedPath,
			Type:         FileTypeIgnored,
			IgnoreReason: IgnoreReasonIgnore,
		}}
	}

	var results []MatcherResult
	var ruleExcluded bool

	for _, rule := range m.config.Rules {
		if !rule.Enabled {
			continue
		}

		if MatchesPatterns(filePath, rule.Files.Exclude) {
			ruleExcluded = true
			continue
		}

		if MatchesPatterns(filePath, rule.Files.Include) {
			results = append(results, MatcherResult{
				Path:         normalizedPath,
				Type:         FileTypeSource,
				RuleName:     rule.Name,
				IgnoreReason: IgnoreReasonNone,
			})
		}
	}

	// If no matches found, return ignored result
	if len(results) == 0 {
		ignoreReason := IgnoreReasonNoRuleMatch
		if ruleExcluded {
			ignoreReason = IgnoreReasonExcludedByRule
		}
		return []MatcherResult{{
			Path:         normalizedPath,
			Type:         FileTypeIgnored,
			IgnoreReason: ignoreReason,
		}}
	}

	return results
}

func DisplayMatchResults(matchedResults []MatcherResult) {
	var sourceFiles, ignoredFiles []MatcherResult

	for _, file := range matchedResults {
		switch file.Type {
		case FileTypeSource:
			sourceFiles = append(sourceFiles, file)
		case FileTypeIgnored:
			ignoredFiles = append(ignoredFiles, file)
		}
	}

	if len(sourceFiles) > 0 {
		fmt.Printf("\n⚙️  Scanned Files (%d):\n", len(sourceFiles))
		for _, file := range sourceFiles {
			fmt.Printf("  • %s", file.Path)
			if file.RuleName != "" {
				fmt.Printf(" [rule: %s]", file.RuleName)
			}
			fmt.Println()
		}
	}

	if len(ignoredFiles) > 0 {
		fmt.Printf("\n🚫 Ignored Files (%d):\n", len(ignoredFiles))

		// Group by ignore reason
		reasonGroups := make(map[string][]MatcherResult)
		for _, file := range ignoredFiles {
			reason := file.IgnoreReason.String()
			reasonGroups[reason] = append(reasonGroups[reason], file)
		}

		for reason, files := range reasonGroups {
			fmt.Printf("  [%s]\n", reason)
			for _, file := range files {
				fmt.Printf("    • %s\n", file.Path)
			}
		}
	}
}
