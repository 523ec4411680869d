// Package model defines domain types for wcost session analysis.
package model

import (
	"sort"
	"strings"
	"time"
)

// TokenUsage accumulates billable token counters for one model within a
// single session log. Counters only ever increase during a parse.
type TokenUsage struct {
	Input     int64
	Output    int64
	Cache5m   int64
	Cache1h   int64
	CacheRead int64
	Messages  int
}

// TaskCall records a sub-agent-spawning tool invocation found in an
// assistant message. Kept for reporting; not needed for cost.
type TaskCall struct {
	SubagentType string
	Description  string
	Model        string
}

// SessionLog is the parsed form of one JSONL session file: per-model token
// aggregates plus session metadata.
type SessionLog struct {
	Tokens map[string]TokenUsage

	FirstTS      string // raw log timestamp of the first stamped record
	LastTS       string // raw log timestamp of the last stamped record
	MsgCount     int    // assistant records seen
	FirstUserMsg string // first user text, truncated to 150 chars
	Workflow     string // detected workflow label, first match wins
	Story        string // detected story argument
	TaskCalls    []TaskCall
}

// SubagentResult holds the analyzed contribution of one sub-agent log.
type SubagentResult struct {
	File     string
	FirstMsg string
	Models   string // short-name label, e.g. "opus, sonnet"
	Tokens   map[string]TokenUsage
	Cost     float64
	MsgCount int
}

// SessionResult is the unit of record: one parent session merged with its
// sub-agents. Immutable once constructed.
type SessionResult struct {
	SessionID  string
	Parent     *SessionLog
	ParentCost float64
	Subagents  []SubagentResult
	AllTokens  map[string]TokenUsage
	TotalCost  float64
	Duration   string // "37min" or "?" when timestamps are unusable
}

// SubagentMsgs returns the total assistant message count across sub-agents.
func (r *SessionResult) SubagentMsgs() int {
	n := 0
	for _, sa := range r.Subagents {
		n += sa.MsgCount
	}
	return n
}

// SubagentCost returns the summed cost of all sub-agents.
func (r *SessionResult) SubagentCost() float64 {
	c := 0.0
	for _, sa := range r.Subagents {
		c += sa.Cost
	}
	return c
}

// StartTime parses the parent's first timestamp. ok is false when the
// session has no usable timestamp.
func (r *SessionResult) StartTime() (time.Time, bool) {
	if r.Parent == nil {
		return time.Time{}, false
	}
	return ParseLogTime(r.Parent.FirstTS)
}

// MergeTokens sums two per-model aggregates into a new map. The union of
// model keys is taken; counters absent on one side default to zero.
func MergeTokens(base, add map[string]TokenUsage) map[string]TokenUsage {
	merged := make(map[string]TokenUsage, len(base)+len(add))
	for name, u := range base {
		merged[name] = u
	}
	for name, u := range add {
		m := merged[name]
		m.Input += u.Input
		m.Output += u.Output
		m.Cache5m += u.Cache5m
		m.Cache1h += u.Cache1h
		m.CacheRead += u.CacheRead
		m.Messages += u.Messages
		merged[name] = m
	}
	return merged
}

// Totals holds token counts summed across all models of an aggregate.
type Totals struct {
	Input     int64
	Output    int64
	Cache5m   int64
	Cache1h   int64
	CacheRead int64
}

// CacheWrite returns the combined cache-write count across both tiers.
func (t Totals) CacheWrite() int64 { return t.Cache5m + t.Cache1h }

// All returns every billed token: input + output + cache write + cache read.
func (t Totals) All() int64 {
	return t.Input + t.Output + t.Cache5m + t.Cache1h + t.CacheRead
}

// SumTokens folds a per-model aggregate into cross-model totals.
func SumTokens(tokens map[string]TokenUsage) Totals {
	var t Totals
	for _, u := range tokens {
		t.Input += u.Input
		t.Output += u.Output
		t.Cache5m += u.Cache5m
		t.Cache1h += u.Cache1h
		t.CacheRead += u.CacheRead
	}
	return t
}

// ShortName reduces a full model identifier to its family name for display:
// "claude-opus-4-6" -> "opus". Unrecognized families keep their first 20
// characters.
func ShortName(model string) string {
	switch {
	case strings.Contains(model, "opus"):
		return "opus"
	case strings.Contains(model, "sonnet"):
		return "sonnet"
	case strings.Contains(model, "haiku"):
		return "haiku"
	}
	if len(model) > 20 {
		return model[:20]
	}
	return model
}

// ModelsLabel renders the sorted, deduplicated short names of an aggregate
// as a single display string, e.g. "opus, sonnet".
func ModelsLabel(tokens map[string]TokenUsage) string {
	seen := make(map[string]struct{}, len(tokens))
	names := make([]string, 0, len(tokens))
	for m := range tokens {
		short := ShortName(m)
		if _, ok := seen[short]; ok {
			continue
		}
		seen[short] = struct{}{}
		names = append(names, short)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// ParseLogTime parses a raw log timestamp (RFC 3339, trailing "Z" accepted,
// with or without fractional seconds).
func ParseLogTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
