// Package corpus resolves which files a scan covers and loads them as
// tokenizable source units.
package corpus

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dupecheck/dupecheck/internal/config"
	"github.com/dupecheck/dupecheck/internal/token"
)

// SourceFile is one tokenizable unit: a whole on-disk file, or one
// fenced code block lifted out of a markdown document.
type SourceFile struct {
	Path       NormalizedPath
	Language   token.Language
	Content    []byte
	LineOffset int    // 1-based line of Content's first line within the on-disk file
	Checksum   string // hex sha256 of Content
}

// ID distinguishes fragments of the same on-disk file.
func (f SourceFile) ID() string {
	if f.LineOffset > 1 {
		return string(f.Path) + "#L" + strconv.Itoa(f.LineOffset)
	}
	return string(f.Path)
}

type Collector struct {
	matcher    *Matcher
	workingDir string
}

func NewCollector(cfg *config.Config, workingDir string) (*Collector, error) {
	matcher, err := NewMatcher(cfg, workingDir)
	if err != nil {
		return nil, err
	}
	return &Collector{matcher: matcher, workingDir: workingDir}, nil
}

func (c *Collector) Matcher() *Matcher {
	return c.matcher
}

// Collect loads the corpus for one rule. With a nil input list the
// rule's resolved working-directory files are used; otherwise only the
// inputs matching the rule are loaded, which is how staged and
// explicit-path scans stay narrow.
func (c *Collector) Collect(ruleName string, inputs []string) ([]SourceFile, error) {
	var paths []NormalizedPath
	if inputs == nil {
		paths = c.matcher.RuleFiles(ruleName)
	} else {
		results, err := c.matcher.MatchFiles(inputs)
		if err != nil {
			return nil, err
		}
		for _, result := range results {
			if result.Type == FileTypeSource && result.RuleName == ruleName {
				paths = append(paths, result.Path)
			}
		}
	}

	var files []SourceFile
	for _, path := range paths {
		loaded, err := c.Load(path)
		if err != nil {
			return nil, err
		}
		files = append(files, loaded...)
	}
	return files, nil
}

// Load reads one on-disk file into source units. Markdown documents
// explode into their fenced code blocks; binary files load as nothing.
func (c *Collector) Load(path NormalizedPath) ([]SourceFile, error) {
	content, err := os.ReadFile(filepath.Join(c.workingDir, string(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if isBinary(content) {
		return nil, nil
	}

	if ext := strings.ToLower(filepath.Ext(string(path))); ext == ".md" || ext == ".markdown" {
		return ExtractFences(path, content), nil
	}

	return []SourceFile{{
		Path:       path,
		Language:   token.LanguageForPath(string(path)),
		Content:    content,
		LineOffset: 1,
		Checksum:   Checksum(content),
	}}, nil
}

// Checksum is the hex sha256 of content, used for cache invalidation.
func Checksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// isBinary sniffs for NUL bytes the way git does.
func isBinary(content []byte) bool {
	n := len(content)
	if n > 8000 {
		n = 8000
	}
	return bytes.IndexByte(content[:n], 0) >= 0
}
