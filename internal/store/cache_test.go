package store

import (
	"path/filepath"
	"testing"

	"github.com/ecclabs/wcost/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func sampleResult() *model.SessionResult {
	return &model.SessionResult{
		SessionID: "sess-1",
		Parent: &model.SessionLog{
			Tokens: map[string]model.TokenUsage{
				"claude-opus-4-6": {Input: 100, Output: 50, Cache5m: 5, Cache1h: 10, CacheRead: 1000, Messages: 3},
			},
			FirstTS:      "2025-06-01T10:00:00Z",
			LastTS:       "2025-06-01T10:25:00Z",
			MsgCount:     3,
			FirstUserMsg: "fix the login bug",
			Workflow:     "ecc-dev-story",
			Story:        "1.4",
			TaskCalls: []model.TaskCall{
				{SubagentType: "code-reviewer", Description: "Review diff", Model: "inherited"},
			},
		},
		ParentCost: 0.75,
		Subagents: []model.SubagentResult{
			{File: "agent-aaa.jsonl", FirstMsg: "review this", Models: "sonnet", MsgCount: 7, Cost: 0.20},
			{File: "agent-bbb.jsonl", FirstMsg: "run e2e", Models: "opus", MsgCount: 4, Cost: 0.05},
		},
		AllTokens: map[string]model.TokenUsage{
			"claude-opus-4-6":   {Input: 150, Output: 70, Cache5m: 5, Cache1h: 10, CacheRead: 1200, Messages: 7},
			"claude-sonnet-4-5": {Input: 40, Output: 20, Messages: 7},
		},
		TotalCost: 1.00,
		Duration:  "25min",
	}
}

func TestPutGet_RoundTrip(t *testing.T) {
	c := openTestCache(t)
	want := sampleResult()

	if err := c.Put("-home-user-proj", "sess-1", "sig-abc", want); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Get("-home-user-proj", "sess-1", "sig-abc")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected cache hit")
	}

	if got.SessionID != "sess-1" || got.Duration != "25min" || got.TotalCost != 1.00 {
		t.Errorf("result header = %q/%q/%.2f", got.SessionID, got.Duration, got.TotalCost)
	}
	p := got.Parent
	if p.Workflow != "ecc-dev-story" || p.Story != "1.4" || p.MsgCount != 3 {
		t.Errorf("parent = %q/%q/%d", p.Workflow, p.Story, p.MsgCount)
	}
	if u := p.Tokens["claude-opus-4-6"]; u.Input != 100 || u.CacheRead != 1000 || u.Messages != 3 {
		t.Errorf("parent tokens = %+v", u)
	}
	if u := got.AllTokens["claude-sonnet-4-5"]; u.Input != 40 || u.Messages != 7 {
		t.Errorf("all tokens = %+v", u)
	}
	if len(p.TaskCalls) != 1 || p.TaskCalls[0].SubagentType != "code-reviewer" {
		t.Errorf("task calls = %+v", p.TaskCalls)
	}
	if len(got.Subagents) != 2 {
		t.Fatalf("subagents = %d, want 2", len(got.Subagents))
	}
	if got.Subagents[0].File != "agent-aaa.jsonl" || got.Subagents[0].Cost != 0.20 {
		t.Errorf("subagent order or fields lost: %+v", got.Subagents[0])
	}
	if got.Subagents[1].Models != "opus" {
		t.Errorf("subagent models = %q, want opus", got.Subagents[1].Models)
	}
}

func TestGet_SignatureMismatchIsMiss(t *testing.T) {
	c := openTestCache(t)
	if err := c.Put("-p", "s", "sig-1", sampleResult()); err != nil {
		t.Fatal(err)
	}

	_, ok, err := c.Get("-p", "s", "sig-2")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("changed signature must be a cache miss")
	}
}

func TestGet_UnknownSession(t *testing.T) {
	c := openTestCache(t)
	_, ok, err := c.Get("-p", "nope", "sig")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("unknown session must be a miss, not an error")
	}
}

func TestPut_ReplacesChildRows(t *testing.T) {
	c := openTestCache(t)
	r := sampleResult()
	if err := c.Put("-p", "s", "sig-1", r); err != nil {
		t.Fatal(err)
	}

	r.Subagents = r.Subagents[:1]
	r.AllTokens = map[string]model.TokenUsage{
		"claude-opus-4-6": {Input: 999, Messages: 1},
	}
	if err := c.Put("-p", "s", "sig-2", r); err != nil {
		t.Fatal(err)
	}

	got, ok, err := c.Get("-p", "s", "sig-2")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected hit after re-put")
	}
	if len(got.Subagents) != 1 {
		t.Errorf("subagents = %d, want 1 after replace", len(got.Subagents))
	}
	if len(got.AllTokens) != 1 || got.AllTokens["claude-opus-4-6"].Input != 999 {
		t.Errorf("all tokens not replaced: %+v", got.AllTokens)
	}
}

func TestDeleteAndCount(t *testing.T) {
	c := openTestCache(t)
	if err := c.Put("-p", "s1", "sig", sampleResult()); err != nil {
		t.Fatal(err)
	}
	if err := c.Put("-p", "s2", "sig", sampleResult()); err != nil {
		t.Fatal(err)
	}

	n, err := c.SessionCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	if err := c.Delete("-p", "s1"); err != nil {
		t.Fatal(err)
	}
	n, err = c.SessionCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count after delete = %d, want 1", n)
	}

	_, ok, err := c.Get("-p", "s1", "sig")
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("deleted session still cached")
	}
}
