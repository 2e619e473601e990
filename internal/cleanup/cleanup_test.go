package cleanup

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestSweepRemovesPrefixedFilesEverywhere(t *testing.T) {
	root := t.TempDir()

	matching := []string{
		filepath.Join(root, "abc-123.mp4"),
		filepath.Join(root, "downloads", "abc-123.mp4"),
		filepath.Join(root, "videos", "abc-123.mp4"),
		filepath.Join(root, "videos", "deep", "abc-123.part"),
	}
	kept := []string{
		filepath.Join(root, "downloads", "def-456.mp4"),
		filepath.Join(root, "videos", "zzz-abc-123.mp4"), // prefix, not substring
		filepath.Join(root, "relay.log"),
	}

	for _, p := range append(append([]string{}, matching...), kept...) {
		writeFile(t, p)
	}

	s := New(root)
	removed := s.Sweep("abc-123")

	if removed != len(matching) {
		t.Errorf("Expected %d files removed, got %d", len(matching), removed)
	}

	for _, p := range matching {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("Expected %s to be removed, stat err = %v", p, err)
		}
	}
	for _, p := range kept {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Expected %s to survive the sweep: %v", p, err)
		}
	}
}

func TestSweepNeverDeletesDirectories(t *testing.T) {
	root := t.TempDir()

	// A directory whose name matches the prefix must be recursed into,
	// never removed itself.
	prefixedDir := filepath.Join(root, "abc-123-workdir")
	writeFile(t, filepath.Join(prefixedDir, "abc-123.tmp"))
	writeFile(t, filepath.Join(prefixedDir, "other.tmp"))

	s := New(root)
	removed := s.Sweep("abc-123")

	if removed != 1 {
		t.Errorf("Expected 1 file removed, got %d", removed)
	}

	info, err := os.Stat(prefixedDir)
	if err != nil {
		t.Fatalf("Expected prefixed directory to survive: %v", err)
	}
	if !info.IsDir() {
		t.Error("Expected prefixed path to still be a directory")
	}

	if _, err := os.Stat(filepath.Join(prefixedDir, "other.tmp")); err != nil {
		t.Errorf("Expected non-matching file inside prefixed dir to survive: %v", err)
	}
}

func TestSweepIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "downloads", "abc-123.mp4"))

	s := New(root)

	if removed := s.Sweep("abc-123"); removed != 1 {
		t.Errorf("Expected first sweep to remove 1 file, got %d", removed)
	}
	if removed := s.Sweep("abc-123"); removed != 0 {
		t.Errorf("Expected second sweep to remove nothing, got %d", removed)
	}
}

func TestSweepNoMatchesIsNoOp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "downloads", "def-456.mp4"))

	s := New(root)
	if removed := s.Sweep("abc-123"); removed != 0 {
		t.Errorf("Expected no files removed, got %d", removed)
	}
}

func TestSweepEmptyIDSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "downloads", "def-456.mp4"))

	s := New(root)
	if removed := s.Sweep(""); removed != 0 {
		t.Errorf("Expected empty id sweep to remove nothing, got %d", removed)
	}

	if _, err := os.Stat(filepath.Join(root, "downloads", "def-456.mp4")); err != nil {
		t.Errorf("Expected file to survive empty id sweep: %v", err)
	}
}
