package source

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoSessions reports a project directory that holds no transcripts.
var ErrNoSessions = errors.New("no session files found")

// SessionFiles returns the top-level session transcripts of a project
// directory, oldest first by modification time.
func SessionFiles(projectDir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(projectDir, "*.jsonl"))
	if err != nil {
		return nil, err
	}

	type candidate struct {
		path  string
		mtime time.Time
	}
	found := make([]candidate, 0, len(matches))
	for _, p := range matches {
		fi, err := os.Stat(p)
		if err != nil {
			continue
		}
		found = append(found, candidate{p, fi.ModTime()})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].mtime.Before(found[j].mtime) })

	paths := make([]string, len(found))
	for i, c := range found {
		paths[i] = c.path
	}
	return paths, nil
}

// LatestSession returns the ID of the most recently modified session in
// the project directory, which is the one Claude Code is writing to.
func LatestSession(projectDir string) (string, error) {
	files, err := SessionFiles(projectDir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoSessions
	}
	return SessionID(files[len(files)-1]), nil
}

// SessionID derives the session UUID from a transcript path.
func SessionID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".jsonl")
}

// SessionPath returns the transcript path for a session ID.
func SessionPath(projectDir, sessionID string) string {
	return filepath.Join(projectDir, sessionID+".jsonl")
}

// SubagentFiles returns the sub-agent transcripts spawned by a session,
// sorted by filename. Auto-compaction transcripts are skipped.
func SubagentFiles(projectDir, sessionID string) []string {
	pattern := filepath.Join(projectDir, sessionID, "subagents", "agent-*.jsonl")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	var files []string
	for _, p := range matches {
		if strings.Contains(filepath.Base(p), "compact") {
			continue
		}
		files = append(files, p)
	}
	sort.Strings(files)
	return files
}
