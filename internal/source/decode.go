package source

import (
	"os"
	"path/filepath"
	"strings"
)

// DecodeProjectPath reverses the directory-name encoding Claude Code
// uses under ~/.claude/projects, turning "-home-user-proj" back into
// "/home/user/proj". The encoding replaces every "/" with "-", which is
// ambiguous when directory names themselves contain dashes, so segments
// are rebuilt greedily: each candidate is extended with the next
// dash-separated piece until the partial path exists.
//
// The exists predicate is injectable for tests; pass DefaultExists for
// the real filesystem.
func DecodeProjectPath(encoded string, exists func(string) bool) string {
	rest := strings.TrimPrefix(encoded, "-")
	parts := strings.Split(rest, "-")

	path := "/"
	i := 0
	for i < len(parts) {
		candidate := parts[i]
		j := i + 1
		for !exists(filepath.Join(path, candidate)) && j < len(parts) {
			candidate = candidate + "-" + parts[j]
			j++
		}
		path = filepath.Join(path, candidate)
		i = j
	}
	return path
}

// EncodeProjectPath converts an absolute project path to the directory
// name Claude Code uses under ~/.claude/projects.
func EncodeProjectPath(path string) string {
	return strings.ReplaceAll(path, "/", "-")
}

// DefaultExists reports whether a path exists on the filesystem.
func DefaultExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
