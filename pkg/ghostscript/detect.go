package ghostscript

import (
	"os"
	"os/exec"
)

var candidates = []string{"gs", "gswin64c", "gswin32c"}

// Detect locates a Ghostscript executable. A configured command wins
// when it resolves on PATH or points at an existing file; otherwise the
// well-known names are probed. Returns "" when nothing is found.
func Detect(configured string) string {
	if configured != "" {
		if resolved, err := exec.LookPath(configured); err == nil {
			return resolved
		}
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	for _, candidate := range candidates {
		if resolved, err := exec.LookPath(candidate); err == nil {
			return resolved
		}
	}

	return ""
}
