package cleanup

import (
	"os"
	"path/filepath"
	"strings"

	"clip-relay/internal/logging"
	"clip-relay/internal/metrics"
)

// Sweeper removes every staged artifact belonging to a request id.
type Sweeper struct {
	root string
}

// New creates a Sweeper rooted at the cache directory.
func New(root string) *Sweeper {
	return &Sweeper{root: root}
}

// Sweep walks the cache tree and deletes every file whose base name
// starts with the request id, wherever it landed. Directories are only
// recursed into, never deleted, even if one were to match the prefix.
// Per-item errors are logged and do not stop the sweep; sweeping an id
// with no artifacts is a no-op. Returns the number of files removed.
func (s *Sweeper) Sweep(id string) int {
	if id == "" {
		logging.Warn("sweep called with empty request id, skipping")
		return 0
	}
	removed := s.sweepDir(id, s.root)
	if removed > 0 {
		metrics.SweeperFilesRemoved.Add(float64(removed))
		logging.Debug("swept %d artifact(s) for request %s", removed, id)
	}
	return removed
}

func (s *Sweeper) sweepDir(id, dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.Error("failed to read %s during sweep: %v", dir, err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			removed += s.sweepDir(id, fullPath)
			continue
		}

		if !strings.HasPrefix(entry.Name(), id) {
			continue
		}

		if err := os.Remove(fullPath); err != nil {
			logging.Error("failed to remove %s: %v", fullPath, err)
			continue
		}
		logging.Debug("removed %s", fullPath)
		removed++
	}
	return removed
}
