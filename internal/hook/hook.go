// Package hook implements the edit-guard checks run from Claude Code
// tool hooks. Warnings go to stderr and never block the edit; a
// malformed payload keeps the hook silent.
package hook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Input is the hook payload Claude Code writes to stdin.
type Input struct {
	ToolInput ToolInput `json:"tool_input"`
}

// ToolInput carries the edit under review. Edit calls populate
// NewString; Write calls populate Content.
type ToolInput struct {
	FilePath  string `json:"file_path"`
	NewString string `json:"new_string"`
	Content   string `json:"content"`
}

// Decode reads the hook payload. ok is false when stdin is empty or
// not valid JSON, in which case the hook has nothing to say.
func Decode(r io.Reader) (Input, bool) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return Input{}, false
	}
	return in, true
}

// newText returns the edited text under review.
func (t ToolInput) newText() string {
	if t.NewString != "" {
		return t.NewString
	}
	return t.Content
}

var reWaitForTimeout = regexp.MustCompile(`waitForTimeout\((\d+)\)`)

// PreEdit checks an edit before it lands: stray debug logging, escape
// hatches in typing, oversized files, and known-flaky e2e patterns.
func PreEdit(in Input) []string {
	path := in.ToolInput.FilePath
	text := in.ToolInput.newText()

	var warnings []string

	if strings.Contains(text, "console.log") && !isTestFile(path) {
		warnings = append(warnings,
			"⚠️  console.log detected. Use proper logging or remove before commit.")
	}

	if strings.Contains(text, ": any") {
		warnings = append(warnings,
			`⚠️  Explicit "any" type detected. Please use proper typing.`)
	}

	if path != "" {
		if lines := countLines(path); lines > 0 {
			if lines > 500 {
				warnings = append(warnings, fmt.Sprintf(
					"⚠️  Editing large file (%d lines >500). Consider refactoring first.", lines))
			}
			if isUnitTest(path) && lines > 300 {
				warnings = append(warnings, fmt.Sprintf(
					"⚠️  Unit test file exceeds 300 lines (%d). Per .claude/rules/testing.md, consider splitting.", lines))
			}
			if isIntegrationTest(path) && lines > 500 {
				warnings = append(warnings, fmt.Sprintf(
					"⚠️  Integration test file exceeds 500 lines (%d). Per .claude/rules/testing.md, consider splitting.", lines))
			}
			if isE2ESpec(path) && lines > 400 {
				warnings = append(warnings, fmt.Sprintf(
					"⚠️  E2E test file exceeds 400 lines (%d). Per E2E-TEST-CONVENTIONS.md, consider splitting journey.", lines))
			}
		}
	}

	if isE2ESpec(path) {
		if strings.Contains(text, "text=Ajustes") {
			warnings = append(warnings,
				"⚠️  E2E: 'text=Ajustes' matches 2 elements. Use getByRole('menuitem', { name: 'Ajustes' }) instead.")
		}
		for _, m := range reWaitForTimeout.FindAllStringSubmatch(text, -1) {
			if ms, err := strconv.Atoi(m[1]); err == nil && ms >= 3000 {
				warnings = append(warnings, fmt.Sprintf(
					"⚠️  E2E: waitForTimeout(%d) is too long. Use element.waitFor({ state: 'hidden/visible' }) for async ops.", ms))
			}
		}
		if strings.Contains(text, "networkidle") {
			warnings = append(warnings,
				"⚠️  E2E: 'networkidle' never resolves with Firebase WebSocket. Use waitForSelector for specific elements instead.")
		}
	}

	return warnings
}

// PostEdit checks an edit after it landed: weak test assertions and
// e2e specs that never clean up their data.
func PostEdit(in Input) []string {
	path := in.ToolInput.FilePath
	text := in.ToolInput.newText()

	var warnings []string

	if isTestTS(path) &&
		strings.Contains(text, "toHaveBeenCalled") &&
		!strings.Contains(text, "toHaveBeenCalledWith") {
		warnings = append(warnings,
			"⚠️  toHaveBeenCalled detected. Per .claude/rules/testing.md, prefer toHaveBeenCalledWith over bare toHaveBeenCalled.")
	}

	if isE2ESpec(path) {
		if data, err := os.ReadFile(path); err == nil {
			content := strings.ToLower(string(data))
			if !strings.Contains(content, "cleanup") &&
				!strings.Contains(content, "afterall") &&
				!strings.Contains(content, "aftereach") {
				warnings = append(warnings,
					"⚠️  E2E test may be missing cleanup. Per E2E-TEST-CONVENTIONS.md, always delete test data at end.")
			}
		}
	}

	return warnings
}

// Report prints warnings to w, one per line. It returns true when
// there was anything to report, which maps to the non-blocking exit 1.
func Report(w io.Writer, warnings []string) bool {
	for _, warning := range warnings {
		fmt.Fprintln(w, warning)
	}
	return len(warnings) > 0
}

func isTestTS(path string) bool {
	return strings.HasSuffix(path, ".test.ts") || strings.HasSuffix(path, ".test.tsx")
}

func isTestFile(path string) bool {
	return isTestTS(path) || strings.HasSuffix(path, ".spec.ts")
}

func isUnitTest(path string) bool {
	return isTestTS(path) &&
		!strings.Contains(path, "integration") &&
		!strings.Contains(path, "e2e")
}

func isIntegrationTest(path string) bool {
	return isTestTS(path) && strings.Contains(path, "integration")
}

func isE2ESpec(path string) bool {
	return strings.Contains(path, "e2e") && strings.HasSuffix(path, ".spec.ts")
}

// countLines counts lines the way a line iterator would: a trailing
// fragment without a newline still counts. Unreadable files count 0.
func countLines(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	n := bytes.Count(data, []byte("\n"))
	if len(data) > 0 && data[len(data)-1] != '\n' {
		n++
	}
	return n
}
