package corpus

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestGit(t *testing.T) {
	tmpDir := t.TempDir()

	cmd := exec.Command("git", "init")
	cmd.Dir = tmpDir
	if err := cmd.Run(); err != nil {
		t.Skipf("git unavailable: %v", err)
	}

	t.Run("staged files", func(t *testing.T) {
		files := GetStagedFiles(tmpDir)
		if len(files) != 0 {
			t.Errorf("expected no staged files, got %v", files)
		}

		if err := os.WriteFile(filepath.Join(tmpDir, "test.go"), []byte("package test\n"), 0o644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}

		cmd := exec.Command("git", "add", "test.go")
		cmd.Dir = tmpDir
		if err := cmd.Run(); err != nil {
			t.Fatalf("Failed to stage file: %v", err)
		}

		files = GetStagedFiles(tmpDir)
		if len(files) != 1 {
			t.Fatalf("expected 1 staged file, got %v", files)
		}
		if files[0] != "test.go" {
			t.Errorf("expected file name 'test.go', got %s", files[0])
		}
	})

	t.Run("gitignore loading", func(t *testing.T) {
		rules, err := LoadGitignore(tmpDir)
		if err != nil {
			t.Fatalf("Failed to load gitignore: %v", err)
		}
		if rules != nil {
			t.Fatalf("expected no gitignore rules, got %v", rules)
		}

		content := "# build output\nbin/\n\n*.tmp\n"
		if err := os.WriteFile(filepath.Join(tmpDir, ".gitignore"), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to create gitignore file: %v", err)
		}

		rules, err = LoadGitignore(tmpDir)
		if err != nil {
			t.Fatalf("Failed to load gitignore: %v", err)
		}

		if len(rules) != 2 {
			t.Fatalf("expected 2 gitignore rules, got %v", rules)
		}
		if rules[0] != "bin/" || rules[1] != "*.tmp" {
			t.Errorf("rules = %v, want [bin/ *.tmp]", rules)
		}
	})

	t.Run("dupeignore loading", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(tmpDir, ".dupeignore"), []byte("generated/\n"), 0o644); err != nil {
			t.Fatalf("Failed to create dupeignore file: %v", err)
		}

		rules, err := LoadDupeignore(tmpDir)
		if err != nil {
			t.Fatalf("Failed to load dupeignore: %v", err)
		}
		if len(rules) != 1 || rules[0] != "generated/" {
			t.Errorf("rules = %v, want [generated/]", rules)
		}
	})
}
