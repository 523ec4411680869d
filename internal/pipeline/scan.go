package pipeline

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ecclabs/wcost/internal/config"
	"github.com/ecclabs/wcost/internal/model"
	"github.com/ecclabs/wcost/internal/source"
	"github.com/ecclabs/wcost/internal/store"
)

// ProgressFunc is called as sessions finish; current counts both cache
// hits and fresh parses, total is the session count.
type ProgressFunc func(current, total int)

// ScanOptions controls a project-wide scan.
type ScanOptions struct {
	Limit    int          // keep only the last N sessions after sorting
	Cache    *store.Cache // nil disables caching
	Progress ProgressFunc
}

// ScanResult holds every analyzed session of a project plus scan
// bookkeeping.
type ScanResult struct {
	Results    []*model.SessionResult
	Unreadable int
	CacheHits  int
	Reparsed   int
}

// ScanAll analyzes every session in a project directory, oldest first.
// Sessions whose cache signature still matches load from the cache; the
// rest parse on a bounded worker pool. Cache reads and writes stay on
// the calling goroutine.
func ScanAll(projectDir string, tracked map[string]struct{}, opts ScanOptions) (*ScanResult, error) {
	files, err := source.SessionFiles(projectDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, source.ErrNoSessions
	}

	scan := &ScanResult{}
	total := len(files)

	type job struct {
		sessionID string
		signature string
	}
	var jobs []job
	for _, f := range files {
		id := source.SessionID(f)
		var sig string
		if opts.Cache != nil {
			sig = SessionSignature(projectDir, id)
			if r, ok, err := opts.Cache.Get(projectDir, id, sig); err == nil && ok {
				scan.Results = append(scan.Results, r)
				scan.CacheHits++
				if opts.Progress != nil {
					opts.Progress(scan.CacheHits, total)
				}
				continue
			}
		}
		jobs = append(jobs, job{sessionID: id, signature: sig})
	}

	if len(jobs) > 0 {
		numWorkers := runtime.GOMAXPROCS(0)
		if numWorkers < 1 {
			numWorkers = 4
		}
		if numWorkers > len(jobs) {
			numWorkers = len(jobs)
		}

		work := make(chan int, len(jobs))
		results := make([]*model.SessionResult, len(jobs))
		errs := make([]error, len(jobs))
		var wg sync.WaitGroup
		var processed atomic.Int64

		for i := range jobs {
			work <- i
		}
		close(work)

		wg.Add(numWorkers)
		for w := 0; w < numWorkers; w++ {
			go func() {
				defer wg.Done()
				for idx := range work {
					results[idx], errs[idx] = AnalyzeSession(projectDir, jobs[idx].sessionID, tracked)
					n := processed.Add(1)
					if opts.Progress != nil {
						opts.Progress(int(n)+scan.CacheHits, total)
					}
				}
			}()
		}
		wg.Wait()

		for i := range jobs {
			if errs[i] != nil {
				scan.Unreadable++
				continue
			}
			scan.Reparsed++
			scan.Results = append(scan.Results, results[i])
			if opts.Cache != nil {
				_ = opts.Cache.Put(projectDir, jobs[i].sessionID, jobs[i].signature, results[i])
			}
		}
	}

	// RFC3339 strings sort chronologically; sessions without a
	// timestamp sort first.
	sort.SliceStable(scan.Results, func(i, j int) bool {
		return scan.Results[i].Parent.FirstTS < scan.Results[j].Parent.FirstTS
	})
	if opts.Limit > 0 && len(scan.Results) > opts.Limit {
		scan.Results = scan.Results[len(scan.Results)-opts.Limit:]
	}
	return scan, nil
}

// Summarize folds scan results into the totals the scan report shows.
func Summarize(scan *ScanResult) model.ScanSummary {
	s := model.ScanSummary{
		Sessions:   len(scan.Results),
		Unreadable: scan.Unreadable,
	}
	for _, r := range scan.Results {
		s.ParentMsgs += r.Parent.MsgCount
		s.SubagentMsgs += r.SubagentMsgs()
		s.TotalCost += r.TotalCost
	}
	s.ByModel = RollupByModel(scan.Results)
	return s
}

// RollupByModel aggregates scan results by short model name, most
// expensive first. A session using several models counts once under
// each.
func RollupByModel(results []*model.SessionResult) []model.ModelRollup {
	acc := make(map[string]*model.ModelRollup)
	for _, r := range results {
		for name, u := range r.AllTokens {
			short := model.ShortName(name)
			agg, ok := acc[short]
			if !ok {
				agg = &model.ModelRollup{Model: short}
				acc[short] = agg
			}
			agg.Cost += config.CalculateModelCost(name, u)
			agg.Sessions++
			agg.Msgs += u.Messages
		}
	}
	out := make([]model.ModelRollup, 0, len(acc))
	for _, a := range acc {
		out = append(out, *a)
	}
	model.SortRollups(out)
	return out
}

// CacheDir returns the platform-appropriate cache directory.
func CacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "wcost")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "wcost")
}

// CachePath returns the full path to the session cache database.
func CachePath() string {
	return filepath.Join(CacheDir(), "sessions.db")
}
