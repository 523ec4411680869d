// Package source discovers and parses Claude Code JSONL session files.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"regexp"
	"strings"

	"github.com/ecclabs/wcost/internal/model"
)

// Slash-command markers that Claude Code injects into user messages.
var (
	reCommandName = regexp.MustCompile(`<command-name>/([\w-]+)</command-name>`)
	reCommandArgs = regexp.MustCompile(`<command-args>(.*?)</command-args>`)
)

// detectWorkflow extracts a slash-command name and its argument from a
// user message. ok is false when the text carries no command marker.
func detectWorkflow(text string) (name, story string, ok bool) {
	m := reCommandName.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	name = m[1]
	if a := reCommandArgs.FindStringSubmatch(text); a != nil {
		story = strings.TrimSpace(a[1])
	}
	return name, story, true
}

// ParseSession reads one JSONL transcript and aggregates token usage by
// model, the observed timestamp range, the first user message, Task tool
// invocations, and a detected workflow.
//
// Every line is decoded as standalone JSON; lines that fail to decode
// contribute nothing, not even a timestamp. Assistant entries are billed
// as-is with no deduplication. Workflow detection scans user text only
// until the first tracked match, which is then locked for the session.
func ParseSession(path string, tracked map[string]struct{}) (*model.SessionLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	log := &model.SessionLog{
		Tokens: make(map[string]model.TokenUsage),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 2*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry RawEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}

		if entry.Timestamp != "" {
			if log.FirstTS == "" {
				log.FirstTS = entry.Timestamp
			}
			log.LastTS = entry.Timestamp
		}

		switch entry.Type {
		case "user":
			texts := userTexts(entry.Message)
			for _, txt := range texts {
				if log.FirstUserMsg == "" {
					log.FirstUserMsg = truncateRunes(txt, 150)
				}
			}
			if log.Workflow == "" {
				for _, txt := range texts {
					wf, story, ok := detectWorkflow(txt)
					if !ok {
						continue
					}
					if _, want := tracked[wf]; want {
						log.Workflow = wf
						log.Story = story
						break
					}
				}
			}

		case "assistant":
			msg := entry.Message
			modelName := "unknown"
			var u RawUsage
			if msg != nil {
				if msg.Model != "" {
					modelName = msg.Model
				}
				if msg.Usage != nil {
					u = *msg.Usage
				}
			}

			t := log.Tokens[modelName]
			t.Input += u.InputTokens
			t.Output += u.OutputTokens
			t.CacheRead += u.CacheReadInputTokens
			if u.CacheCreation != nil {
				t.Cache5m += u.CacheCreation.Ephemeral5mInputTokens
				t.Cache1h += u.CacheCreation.Ephemeral1hInputTokens
			} else {
				// No TTL breakdown: Claude Code writes 1h cache entries by default.
				t.Cache1h += u.CacheCreationInputTokens
			}
			t.Messages++
			log.Tokens[modelName] = t
			log.MsgCount++

			log.TaskCalls = append(log.TaskCalls, taskCalls(msg)...)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return log, nil
}

// userTexts returns the text payloads of a user message. Only text
// blocks are read from block-style content.
func userTexts(msg *RawMessage) []string {
	if msg == nil || len(msg.Content) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(msg.Content, &s); err == nil {
		return []string{s}
	}
	var blocks []RawContentBlock
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return nil
	}
	var texts []string
	for _, b := range blocks {
		if b.Type == "text" {
			texts = append(texts, b.Text)
		}
	}
	return texts
}

// taskCalls extracts Task tool invocations from an assistant message.
// Sub-agent launches surface here before their transcripts exist.
func taskCalls(msg *RawMessage) []model.TaskCall {
	if msg == nil || len(msg.Content) == 0 {
		return nil
	}
	var blocks []RawContentBlock
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return nil
	}
	var calls []model.TaskCall
	for _, b := range blocks {
		if b.Type != "tool_use" || b.Name != "Task" {
			continue
		}
		call := model.TaskCall{SubagentType: "?", Description: "?", Model: "inherited"}
		var in RawTaskInput
		if err := json.Unmarshal(b.Input, &in); err == nil {
			if in.SubagentType != "" {
				call.SubagentType = in.SubagentType
			}
			if in.Description != "" {
				call.Description = in.Description
			}
			if in.Model != "" {
				call.Model = in.Model
			}
		}
		calls = append(calls, call)
	}
	return calls
}

// truncateRunes clips s to at most n runes.
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
