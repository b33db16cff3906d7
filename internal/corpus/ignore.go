package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadGitignore reads .gitignore patterns from dir. A missing file is
// not an error.
func LoadGitignore(dir string) ([]string, error) {
	return loadIgnoreFile(filepath.Join(dir, ".gitignore"))
}

// LoadDupeignore reads .dupeignore patterns from dir, one pattern per
// line with # comments. A missing file is not an error.
func LoadDupeignore(dir string) ([]string, error) {
	return loadIgnoreFile(filepath.Join(dir, ".dupeignore"))
}

func loadIgnoreFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	var rules []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}

	return rules, scanner.Err()
}
