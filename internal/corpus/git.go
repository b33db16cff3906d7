package corpus

import (
	"os/exec"
	"strings"
)

var (
	cmdStagedFiles = []string{"git", "diff", "--name-only", "--cached", "--diff-filter=ACMR"}
)

// GetStagedFiles lists files staged in workingDir's git index. Outside
// a repository, or with nothing staged, the list is empty.
func GetStagedFiles(workingDir string) []string {
	cmd := exec.Command(cmdStagedFiles[0], cmdStagedFiles[1:]...)
	cmd.Dir = workingDir

	output, err := cmd.Output()
	if err != nil {
		return []string{}
	}

	files := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(files) == 1 && files[0] == "" {
		return []string{}
	}

	return files
}
