// Package history persists per-session cost records in the tracking
// CSV. Rows are append-only; the one sanctioned exception is Rebuild,
// which backfills the file from a full rescan.
package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ecclabs/wcost/internal/model"
)

// Header defines the tracking CSV columns. Order is the write contract;
// reads go through the header by name so older files stay readable.
var Header = []string{
	"date", "session_id", "workflow", "story", "duration",
	"parent_msgs", "subagent_count", "subagent_msgs", "models",
	"total_input", "total_output", "total_cache_write", "total_cache_read",
	"parent_cost", "subagent_cost", "total_cost",
}

// Record is one row of the cost history.
type Record struct {
	Date            string
	SessionID       string
	Workflow        string
	Story           string
	Duration        string
	ParentMsgs      int
	SubagentCount   int
	SubagentMsgs    int
	Models          string
	TotalInput      int64
	TotalOutput     int64
	TotalCacheWrite int64
	TotalCacheRead  int64
	ParentCost      float64
	SubagentCost    float64
	TotalCost       float64
}

// BuildRecord flattens a session result into a history row. Explicit
// workflow/story win over what was detected in the transcript.
func BuildRecord(r *model.SessionResult, workflow, story string) Record {
	wf := workflow
	if wf == "" {
		wf = r.Parent.Workflow
	}
	st := story
	if st == "" {
		st = r.Parent.Story
	}

	date := ""
	if t, ok := model.ParseLogTime(r.Parent.FirstTS); ok {
		date = t.Format("2006-01-02 15:04")
	}

	id := r.SessionID
	if len(id) > 12 {
		id = id[:12]
	}

	totals := model.SumTokens(r.AllTokens)
	return Record{
		Date:            date,
		SessionID:       id,
		Workflow:        wf,
		Story:           st,
		Duration:        r.Duration,
		ParentMsgs:      r.Parent.MsgCount,
		SubagentCount:   len(r.Subagents),
		SubagentMsgs:    r.SubagentMsgs(),
		Models:          model.ModelsLabel(r.AllTokens),
		TotalInput:      totals.Input,
		TotalOutput:     totals.Output,
		TotalCacheWrite: totals.CacheWrite(),
		TotalCacheRead:  totals.CacheRead,
		ParentCost:      r.ParentCost,
		SubagentCost:    r.SubagentCost(),
		TotalCost:       r.TotalCost,
	}
}

func (r Record) fields() []string {
	return []string{
		r.Date, r.SessionID, r.Workflow, r.Story, r.Duration,
		strconv.Itoa(r.ParentMsgs), strconv.Itoa(r.SubagentCount), strconv.Itoa(r.SubagentMsgs),
		r.Models,
		strconv.FormatInt(r.TotalInput, 10), strconv.FormatInt(r.TotalOutput, 10),
		strconv.FormatInt(r.TotalCacheWrite, 10), strconv.FormatInt(r.TotalCacheRead, 10),
		fmt.Sprintf("%.2f", r.ParentCost), fmt.Sprintf("%.2f", r.SubagentCost),
		fmt.Sprintf("%.2f", r.TotalCost),
	}
}

// Store reads and appends the tracking CSV at a fixed path.
type Store struct {
	Path string
}

func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Append writes one record, creating the file with its header first
// when it does not exist yet.
func (s *Store) Append(rec Record) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	_, statErr := os.Stat(s.Path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(Header); err != nil {
			_ = f.Close()
			return err
		}
	}
	if err := w.Write(rec.fields()); err != nil {
		_ = f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Rebuild rewrites the whole file from a freshly computed record set.
func (s *Store) Rebuild(recs []Record) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	f, err := os.Create(s.Path)
	if err != nil {
		return fmt.Errorf("rewriting history: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		_ = f.Close()
		return err
	}
	for _, rec := range recs {
		if err := w.Write(rec.fields()); err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadAll returns every stored record in file order. Columns are
// resolved through the header row; unparsable numbers read as zero.
func (s *Store) ReadAll() ([]Record, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	recs := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		recs = append(recs, Record{
			Date:            get(row, "date"),
			SessionID:       get(row, "session_id"),
			Workflow:        get(row, "workflow"),
			Story:           get(row, "story"),
			Duration:        get(row, "duration"),
			ParentMsgs:      parseInt(get(row, "parent_msgs")),
			SubagentCount:   parseInt(get(row, "subagent_count")),
			SubagentMsgs:    parseInt(get(row, "subagent_msgs")),
			Models:          get(row, "models"),
			TotalInput:      parseInt64(get(row, "total_input")),
			TotalOutput:     parseInt64(get(row, "total_output")),
			TotalCacheWrite: parseInt64(get(row, "total_cache_write")),
			TotalCacheRead:  parseInt64(get(row, "total_cache_read")),
			ParentCost:      parseFloat(get(row, "parent_cost")),
			SubagentCost:    parseFloat(get(row, "subagent_cost")),
			TotalCost:       parseFloat(get(row, "total_cost")),
		})
	}
	return recs, nil
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func parseInt64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
