package pipeline

import (
	"fmt"
	"hash/fnv"
	"os"

	"github.com/ecclabs/wcost/internal/source"
)

// SessionSignature fingerprints the transcripts behind a session: the
// parent file plus every non-compact subagent file, folded by path,
// mtime, and size. Any change to the file set or the files themselves
// yields a new signature and so a cache miss.
func SessionSignature(projectDir, sessionID string) string {
	h := fnv.New64a()
	add := func(path string) {
		fi, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(h, "%s|missing\n", path)
			return
		}
		fmt.Fprintf(h, "%s|%d|%d\n", path, fi.ModTime().UnixNano(), fi.Size())
	}

	add(source.SessionPath(projectDir, sessionID))
	for _, p := range source.SubagentFiles(projectDir, sessionID) {
		add(p)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}
