package corpus

import (
	"path/filepath"
	"strings"
)

// MatchesPatterns checks if a file path matches any of the given patterns
func MatchesPatterns(filePath string, patterns []string) bool {
	for _, pattern := range patterns {
		if MatchesPattern(filePath, pattern) {
			return true
		}
	}
	return false
}

// MatchesPattern checks if a file path matches a single pattern.
// Supported forms: literal paths, glob segments (`*.go`), `**` crossing
// directory levels, trailing `dir/` matching everything under a
// directory, and slash-free patterns matching any single path segment
// the way .gitignore entries do.
func MatchesPattern(filePath, pattern string) bool {
	// Normalize both file path and pattern by removing ./ prefix
	pattern = strings.TrimPrefix(pattern, "./")
	filePath = strings.TrimPrefix(filePath, "./")

	if pattern == "" {
		return false
	}

	if pattern == filePath {
		return true
	}

	// Directory patterns like temp/ cover everything under the directory
	// and the directory itself at any depth.
	if strings.HasSuffix(pattern, "/") {
		dir := strings.TrimSuffix(pattern, "/")
		return filePath == dir ||
			strings.HasPrefix(filePath, dir+"/") ||
			strings.Contains(filePath, "/"+dir+"/") ||
			strings.HasSuffix(filePath, "/"+dir)
	}

	// Slash-free patterns match any single segment at any depth, so
	// .gitignore entries like *.log or node_modules behave as expected.
	if !strings.Contains(pattern, "/") {
		for _, segment := range strings.Split(filePath, "/") {
			if matched, err := filepath.Match(pattern, segment); err == nil && matched {
				return true
			}
		}
		return false
	}

	return matchSegments(strings.Split(pattern, "/"), strings.Split(filePath, "/"))
}

// matchSegments matches pattern segments against path segments, letting
// ** consume zero or more whole segments.
func matchSegments(pattern, path []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			if len(pattern) == 1 {
				return true
			}
			for skip := 0; skip <= len(path); skip++ {
				if matchSegments(pattern[1:], path[skip:]) {
					return true
				}
			}
			return false
		}

		if len(path) == 0 {
			return false
		}
		matched, err := filepath.Match(pattern[0], path[0])
		if err != nil || !matched {
			return false
		}
		pattern = pattern[1:]
		path = path[1:]
	}

	return len(path) == 0
}
