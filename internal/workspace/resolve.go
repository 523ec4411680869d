package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ecclabs/wcost/internal/config"
	"github.com/ecclabs/wcost/internal/source"
)

// maxProjectHints caps the project list printed when resolution fails.
const maxProjectHints = 10

// ProjectNotFoundError reports a project with no recorded sessions. It
// carries the path that was expected and nearby project names so the
// CLI can print a useful hint.
type ProjectNotFoundError struct {
	ProjectRoot string
	Expected    string
	Available   []string
}

func (e *ProjectNotFoundError) Error() string {
	return fmt.Sprintf("no Claude Code sessions found for project %s (expected %s)", e.ProjectRoot, e.Expected)
}

// ProjectsDir returns the Claude Code projects directory, honoring a
// configured Claude home override.
func ProjectsDir(cfg config.Config) string {
	if cfg.General.ClaudeDir != "" {
		return filepath.Join(cfg.General.ClaudeDir, "projects")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".claude", "projects")
	}
	return filepath.Join(home, ".claude", "projects")
}

// ResolveProjectDir locates the session directory for a project. With
// an empty explicit root, the git toplevel (or working directory)
// decides which project is meant.
func ResolveProjectDir(cfg config.Config, explicit string) (string, error) {
	var root string
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", err
		}
		root = abs
	} else {
		root = GitRoot()
	}

	projects := ProjectsDir(cfg)
	dir := filepath.Join(projects, source.EncodeProjectPath(root))
	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}
	return "", &ProjectNotFoundError{
		ProjectRoot: root,
		Expected:    dir,
		Available:   AvailableProjects(projects),
	}
}

// AvailableProjects lists up to ten project names under the projects
// directory, deduplicated and sorted, as a hint when resolution fails.
func AvailableProjects(projectsDir string) []string {
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		name = strings.SplitN(name, ".", 2)[0]
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) > maxProjectHints {
		names = names[:maxProjectHints]
	}
	return names
}

// CSVPath derives the cost-log path for a session directory. Projects
// that keep a docs/sprint-artifacts directory get the log there next to
// the other sprint artifacts; everything else gets a dotfile in the
// project root. A configured path wins over both.
func CSVPath(cfg config.Config, projectDir string) string {
	if cfg.General.CSVPath != "" {
		return cfg.General.CSVPath
	}

	root := source.DecodeProjectPath(filepath.Base(projectDir), source.DefaultExists)
	sprintDir := filepath.Join(root, "docs", "sprint-artifacts")
	if source.DefaultExists(sprintDir) {
		return filepath.Join(sprintDir, "workflow-costs.csv")
	}
	return filepath.Join(root, ".claude-workflow-costs.csv")
}

// StatsPath derives the stats JSON path, a sibling of the CSV.
func StatsPath(cfg config.Config, csvPath string) string {
	if cfg.General.StatsPath != "" {
		return cfg.General.StatsPath
	}
	return filepath.Join(filepath.Dir(csvPath), "workflow-cost-stats.json")
}
