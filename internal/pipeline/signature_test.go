package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSessionSignature_Stable(t *testing.T) {
	dir := t.TempDir()
	writeParent(t, dir, "s1", assistantLine("2025-06-01T09:00:00Z", "claude-opus-4-6", 10, 10))

	a := SessionSignature(dir, "s1")
	b := SessionSignature(dir, "s1")
	if a != b {
		t.Errorf("signature not stable: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("signature length = %d, want 16 hex digits", len(a))
	}
}

func TestSessionSignature_ChangesOnTouch(t *testing.T) {
	dir := t.TempDir()
	writeParent(t, dir, "s1", assistantLine("2025-06-01T09:00:00Z", "claude-opus-4-6", 10, 10))
	before := SessionSignature(dir, "s1")

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "s1.jsonl"), future, future); err != nil {
		t.Fatal(err)
	}
	if after := SessionSignature(dir, "s1"); after == before {
		t.Error("signature unchanged after mtime bump")
	}
}

func TestSessionSignature_ChangesOnAppend(t *testing.T) {
	dir := t.TempDir()
	writeParent(t, dir, "s1", assistantLine("2025-06-01T09:00:00Z", "claude-opus-4-6", 10, 10))
	before := SessionSignature(dir, "s1")

	f, err := os.OpenFile(filepath.Join(dir, "s1.jsonl"), os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(assistantLine("2025-06-01T09:01:00Z", "claude-opus-4-6", 5, 5) + "\n"); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	if after := SessionSignature(dir, "s1"); after == before {
		t.Error("signature unchanged after append")
	}
}

func TestSessionSignature_CoversSubagents(t *testing.T) {
	dir := t.TempDir()
	writeParent(t, dir, "s1", assistantLine("2025-06-01T09:00:00Z", "claude-opus-4-6", 10, 10))
	before := SessionSignature(dir, "s1")

	writeSubagent(t, dir, "s1", "agent-a.jsonl", assistantLine("2025-06-01T09:05:00Z", "claude-haiku-4-5", 5, 5))
	after := SessionSignature(dir, "s1")
	if after == before {
		t.Error("signature unchanged after subagent appeared")
	}

	// Compaction transcripts are outside the signature, as they are
	// outside the analysis.
	writeSubagent(t, dir, "s1", "agent-compact-z.jsonl", assistantLine("2025-06-01T09:06:00Z", "claude-haiku-4-5", 5, 5))
	if again := SessionSignature(dir, "s1"); again != after {
		t.Error("compaction transcript changed the signature")
	}
}

func TestSessionSignature_MissingParent(t *testing.T) {
	dir := t.TempDir()
	a := SessionSignature(dir, "ghost")
	b := SessionSignature(dir, "ghost")
	if a != b || len(a) != 16 {
		t.Errorf("missing-file signature unstable: %s vs %s", a, b)
	}
}
