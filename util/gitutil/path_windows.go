package gitutil

import (
	"os/exec"
	"path/filepath"
)

func gitPath(_ string) (string, error) {
	return exec.LookPath("git.exe")
}

func sanitizePath(path string) string {
	return filepath.FromSlash(filepath.Clean(path))
}
