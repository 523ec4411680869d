// Package pipeline turns raw transcripts into priced session results:
// single-session analysis, project-wide scans, and the cache signatures
// that make rescans cheap.
package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ecclabs/wcost/internal/config"
	"github.com/ecclabs/wcost/internal/model"
	"github.com/ecclabs/wcost/internal/source"
)

// SessionNotFoundError reports a missing parent transcript.
type SessionNotFoundError struct {
	Path string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session file not found: %s", e.Path)
}

// AnalyzeSession parses a session plus its subagent transcripts and
// prices everything. Subagent usage merges into the combined totals;
// the parent keeps its own cost line so the split stays visible.
func AnalyzeSession(projectDir, sessionID string, tracked map[string]struct{}) (*model.SessionResult, error) {
	parentPath := source.SessionPath(projectDir, sessionID)
	parent, err := source.ParseSession(parentPath, tracked)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &SessionNotFoundError{Path: parentPath}
		}
		return nil, fmt.Errorf("parsing session %s: %w", sessionID, err)
	}

	result := &model.SessionResult{
		SessionID:  sessionID,
		Parent:     parent,
		ParentCost: config.CalculateCost(parent.Tokens),
		AllTokens:  model.MergeTokens(parent.Tokens, nil),
	}

	for _, saPath := range source.SubagentFiles(projectDir, sessionID) {
		sa, err := source.ParseSession(saPath, tracked)
		if err != nil {
			return nil, fmt.Errorf("parsing subagent %s: %w", filepath.Base(saPath), err)
		}
		result.Subagents = append(result.Subagents, model.SubagentResult{
			File:     filepath.Base(saPath),
			FirstMsg: sa.FirstUserMsg,
			Models:   model.ModelsLabel(sa.Tokens),
			Tokens:   sa.Tokens,
			Cost:     config.CalculateCost(sa.Tokens),
			MsgCount: sa.MsgCount,
		})
		result.AllTokens = model.MergeTokens(result.AllTokens, sa.Tokens)
	}

	result.TotalCost = config.CalculateCost(result.AllTokens)
	result.Duration = durationLabel(parent.FirstTS, parent.LastTS)
	return result, nil
}

// durationLabel renders the wall-clock span between the first and last
// log timestamps, or "?" when either end is missing or unparsable.
func durationLabel(firstTS, lastTS string) string {
	if firstTS == "" || lastTS == "" {
		return "?"
	}
	t1, ok1 := model.ParseLogTime(firstTS)
	t2, ok2 := model.ParseLogTime(lastTS)
	if !ok1 || !ok2 {
		return "?"
	}
	return fmt.Sprintf("%.0fmin", t2.Sub(t1).Minutes())
}
