package pipeline

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeParent creates a parent transcript inside a project directory.
func writeParent(t *testing.T, projectDir, sessionID string, lines ...string) {
	t.Helper()
	path := filepath.Join(projectDir, sessionID+".jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
}

// writeSubagent creates one sub-agent transcript under the session's
// subagents directory.
func writeSubagent(t *testing.T, projectDir, sessionID, name string, lines ...string) {
	t.Helper()
	dir := filepath.Join(projectDir, sessionID, "subagents")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
}

func assistantLine(ts, modelName string, in, out int) string {
	return fmt.Sprintf(`{"type":"assistant","timestamp":%q,"message":{"model":%q,"usage":{"input_tokens":%d,"output_tokens":%d}}}`,
		ts, modelName, in, out)
}

func userLine(ts, text string) string {
	return fmt.Sprintf(`{"type":"user","timestamp":%q,"message":{"role":"user","content":%q}}`, ts, text)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzeSession_PricesParent(t *testing.T) {
	dir := t.TempDir()
	writeParent(t, dir, "abc123",
		userLine("2025-06-01T10:00:00Z", "fix the flaky test"),
		assistantLine("2025-06-01T10:05:00Z", "claude-sonnet-4-5", 1500, 400),
		assistantLine("2025-06-01T10:37:00Z", "claude-sonnet-4-5", 500, 600),
	)

	r, err := AnalyzeSession(dir, "abc123", nil)
	if err != nil {
		t.Fatal(err)
	}

	// 2000 input and 1000 output on sonnet: 2000*3/1e6 + 1000*15/1e6.
	if !almostEqual(r.ParentCost, 0.021) {
		t.Errorf("ParentCost = %f, want 0.021", r.ParentCost)
	}
	if !almostEqual(r.TotalCost, 0.021) {
		t.Errorf("TotalCost = %f, want 0.021", r.TotalCost)
	}
	if r.Duration != "37min" {
		t.Errorf("Duration = %q, want 37min", r.Duration)
	}
	if r.SessionID != "abc123" {
		t.Errorf("SessionID = %q", r.SessionID)
	}
	if r.Parent.FirstUserMsg != "fix the flaky test" {
		t.Errorf("FirstUserMsg = %q", r.Parent.FirstUserMsg)
	}
	if len(r.Subagents) != 0 {
		t.Errorf("Subagents = %d, want 0", len(r.Subagents))
	}
}

func TestAnalyzeSession_MergesSubagents(t *testing.T) {
	dir := t.TempDir()
	writeParent(t, dir, "s1",
		assistantLine("2025-06-01T09:00:00Z", "claude-opus-4-6", 1000, 200),
	)
	writeSubagent(t, dir, "s1", "agent-b.jsonl",
		userLine("2025-06-01T09:01:00Z", "review the diff"),
		assistantLine("2025-06-01T09:02:00Z", "claude-sonnet-4-5", 2000, 1000),
	)
	writeSubagent(t, dir, "s1", "agent-a.jsonl",
		assistantLine("2025-06-01T09:03:00Z", "claude-sonnet-4-5", 1000, 0),
		assistantLine("2025-06-01T09:04:00Z", "claude-sonnet-4-5", 1000, 0),
	)
	// Auto-compaction transcripts never count.
	writeSubagent(t, dir, "s1", "agent-compact-1.jsonl",
		assistantLine("2025-06-01T09:05:00Z", "claude-opus-4-6", 9_000_000, 0),
	)

	r, err := AnalyzeSession(dir, "s1", nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(r.Subagents) != 2 {
		t.Fatalf("Subagents = %d, want 2", len(r.Subagents))
	}
	// Filename order, not creation order.
	if r.Subagents[0].File != "agent-a.jsonl" || r.Subagents[1].File != "agent-b.jsonl" {
		t.Errorf("subagent order = %q, %q", r.Subagents[0].File, r.Subagents[1].File)
	}
	if r.Subagents[1].FirstMsg != "review the diff" {
		t.Errorf("FirstMsg = %q", r.Subagents[1].FirstMsg)
	}
	if r.Subagents[1].Models != "sonnet" {
		t.Errorf("Models = %q, want sonnet", r.Subagents[1].Models)
	}
	if r.Subagents[0].MsgCount != 2 {
		t.Errorf("MsgCount = %d, want 2", r.Subagents[0].MsgCount)
	}

	// Parent opus 1000/200 = 0.01; agents add sonnet 4000 in, 1000 out.
	if !almostEqual(r.ParentCost, 0.01) {
		t.Errorf("ParentCost = %f, want 0.01", r.ParentCost)
	}
	if !almostEqual(r.SubagentCost(), 0.027) {
		t.Errorf("SubagentCost = %f, want 0.027", r.SubagentCost())
	}
	if !almostEqual(r.TotalCost, 0.037) {
		t.Errorf("TotalCost = %f, want 0.037", r.TotalCost)
	}

	sonnet := r.AllTokens["claude-sonnet-4-5"]
	if sonnet.Input != 4000 || sonnet.Output != 1000 {
		t.Errorf("merged sonnet = %d/%d, want 4000/1000", sonnet.Input, sonnet.Output)
	}
	opus := r.AllTokens["claude-opus-4-6"]
	if opus.Input != 1000 || opus.Output != 200 {
		t.Errorf("merged opus = %d/%d, want 1000/200", opus.Input, opus.Output)
	}
	if r.SubagentMsgs() != 3 {
		t.Errorf("SubagentMsgs = %d, want 3", r.SubagentMsgs())
	}
}

func TestAnalyzeSession_DurationUnknown(t *testing.T) {
	dir := t.TempDir()
	writeParent(t, dir, "no-ts",
		`{"type":"assistant","message":{"model":"claude-opus-4-6","usage":{"input_tokens":1,"output_tokens":1}}}`,
	)

	r, err := AnalyzeSession(dir, "no-ts", nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Duration != "?" {
		t.Errorf("Duration = %q, want ?", r.Duration)
	}
}

func TestAnalyzeSession_Missing(t *testing.T) {
	dir := t.TempDir()

	_, err := AnalyzeSession(dir, "nope", nil)
	var nf *SessionNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want SessionNotFoundError", err)
	}
	if !strings.HasSuffix(nf.Path, "nope.jsonl") {
		t.Errorf("Path = %q", nf.Path)
	}
}

func TestAnalyzeSession_WorkflowDetected(t *testing.T) {
	dir := t.TempDir()
	writeParent(t, dir, "wf",
		userLine("2025-06-01T10:00:00Z", "<command-name>/ecc-dev-story</command-name><command-args> STORY-42 </command-args>"),
		assistantLine("2025-06-01T10:01:00Z", "claude-opus-4-6", 10, 10),
	)

	r, err := AnalyzeSession(dir, "wf", trackedSet("ecc-dev-story"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Parent.Workflow != "ecc-dev-story" || r.Parent.Story != "STORY-42" {
		t.Errorf("workflow/story = %q/%q", r.Parent.Workflow, r.Parent.Story)
	}
}

func trackedSet(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}
