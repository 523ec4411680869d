// Package workspace resolves the project a session belongs to and the
// artifact paths written next to it.
package workspace

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// gitTimeout bounds the toplevel lookup so a hung git cannot stall the
// whole tool.
const gitTimeout = 5 * time.Second

// GitRoot returns the repository root of the working directory. When
// git is missing, times out, or the directory is not a repository, the
// working directory itself is the project root.
func GitRoot() string {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "git", "rev-parse", "--show-toplevel").Output()
	if err == nil {
		if root := strings.TrimSpace(string(out)); root != "" {
			return root
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
