// Package store provides a SQLite-backed cache of analyzed sessions.
// Entries are keyed by (project_dir, session_id) and guarded by a
// signature over the transcript files; a signature mismatch is a cache
// miss and the session is reparsed.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ecclabs/wcost/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Token scopes stored in session_models.
const (
	scopeParent = "parent"
	scopeAll    = "all"
)

// Cache wraps the session cache database.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get loads a cached result. ok is false when the session is not cached
// or its signature no longer matches the transcripts on disk.
func (c *Cache) Get(projectDir, sessionID, signature string) (*model.SessionResult, bool, error) {
	var (
		storedSig, taskCallsJSON      string
		firstTS, lastTS, duration     sql.NullString
		workflow, story, firstUserMsg sql.NullString
		parentMsgs                    int
		parentCost, totalCost         float64
	)
	err := c.db.QueryRow(`SELECT
		signature, first_ts, last_ts, duration, workflow, story, first_user_msg,
		parent_msgs, parent_cost, total_cost, task_calls
		FROM sessions WHERE project_dir = ? AND session_id = ?`,
		projectDir, sessionID,
	).Scan(&storedSig, &firstTS, &lastTS, &duration, &workflow, &story, &firstUserMsg,
		&parentMsgs, &parentCost, &totalCost, &taskCallsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedSig != signature {
		return nil, false, nil
	}

	result := &model.SessionResult{
		SessionID: sessionID,
		Parent: &model.SessionLog{
			Tokens:       make(map[string]model.TokenUsage),
			FirstTS:      firstTS.String,
			LastTS:       lastTS.String,
			MsgCount:     parentMsgs,
			FirstUserMsg: firstUserMsg.String,
			Workflow:     workflow.String,
			Story:        story.String,
		},
		ParentCost: parentCost,
		AllTokens:  make(map[string]model.TokenUsage),
		TotalCost:  totalCost,
		Duration:   duration.String,
	}
	if taskCallsJSON != "" {
		if err := json.Unmarshal([]byte(taskCallsJSON), &result.Parent.TaskCalls); err != nil {
			return nil, false, nil
		}
	}

	rows, err := c.db.Query(`SELECT scope, model, input_tokens, output_tokens,
		cache_5m, cache_1h, cache_read, messages
		FROM session_models WHERE project_dir = ? AND session_id = ?`,
		projectDir, sessionID)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var scope, modelName string
		var u model.TokenUsage
		if err := rows.Scan(&scope, &modelName, &u.Input, &u.Output,
			&u.Cache5m, &u.Cache1h, &u.CacheRead, &u.Messages); err != nil {
			return nil, false, err
		}
		switch scope {
		case scopeParent:
			result.Parent.Tokens[modelName] = u
		case scopeAll:
			result.AllTokens[modelName] = u
		}
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	saRows, err := c.db.Query(`SELECT file, first_msg, models, msg_count, cost
		FROM session_subagents WHERE project_dir = ? AND session_id = ?
		ORDER BY ord`,
		projectDir, sessionID)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = saRows.Close() }()

	for saRows.Next() {
		var sa model.SubagentResult
		var firstMsg, models sql.NullString
		if err := saRows.Scan(&sa.File, &firstMsg, &models, &sa.MsgCount, &sa.Cost); err != nil {
			return nil, false, err
		}
		sa.FirstMsg = firstMsg.String
		sa.Models = models.String
		result.Subagents = append(result.Subagents, sa)
	}
	if err := saRows.Err(); err != nil {
		return nil, false, err
	}

	return result, true, nil
}

// Put stores an analyzed result under the given signature, replacing
// any previous entry for the session.
func (c *Cache) Put(projectDir, sessionID, signature string, r *model.SessionResult) error {
	taskCallsJSON, err := json.Marshal(r.Parent.TaskCalls)
	if err != nil {
		return err
	}

	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT OR REPLACE INTO sessions
		(project_dir, session_id, signature, first_ts, last_ts, duration,
		 workflow, story, first_user_msg, parent_msgs, parent_cost, total_cost,
		 task_calls, analyzed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		projectDir, sessionID, signature, r.Parent.FirstTS, r.Parent.LastTS, r.Duration,
		r.Parent.Workflow, r.Parent.Story, r.Parent.FirstUserMsg, r.Parent.MsgCount,
		r.ParentCost, r.TotalCost, string(taskCallsJSON), now,
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM session_models WHERE project_dir = ? AND session_id = ?",
		projectDir, sessionID); err != nil {
		return err
	}
	insertModels := func(scope string, tokens map[string]model.TokenUsage) error {
		for modelName, u := range tokens {
			_, err := tx.Exec(`INSERT INTO session_models
				(project_dir, session_id, scope, model, input_tokens, output_tokens,
				 cache_5m, cache_1h, cache_read, messages)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				projectDir, sessionID, scope, modelName,
				u.Input, u.Output, u.Cache5m, u.Cache1h, u.CacheRead, u.Messages)
			if err != nil {
				return err
			}
		}
		return nil
	}
	if err := insertModels(scopeParent, r.Parent.Tokens); err != nil {
		return err
	}
	if err := insertModels(scopeAll, r.AllTokens); err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM session_subagents WHERE project_dir = ? AND session_id = ?",
		projectDir, sessionID); err != nil {
		return err
	}
	for i, sa := range r.Subagents {
		_, err := tx.Exec(`INSERT INTO session_subagents
			(project_dir, session_id, ord, file, first_msg, models, msg_count, cost)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			projectDir, sessionID, i, sa.File, sa.FirstMsg, sa.Models, sa.MsgCount, sa.Cost)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes a cached session and its child rows.
func (c *Cache) Delete(projectDir, sessionID string) error {
	_, err := c.db.Exec("DELETE FROM sessions WHERE project_dir = ? AND session_id = ?",
		projectDir, sessionID)
	return err
}

// SessionCount returns the number of cached sessions.
func (c *Cache) SessionCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}
