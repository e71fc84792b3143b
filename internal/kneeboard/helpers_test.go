package kneeboard

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/kneeview/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// writePages creates empty files at the given paths relative to root.
func writePages(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// countingScanner wraps a Scanner and counts Scan calls.
type countingScanner struct {
	inner Scanner
	calls int
}

func (s *countingScanner) Scan(scenario ScenarioKey) []FileMetadata {
	s.calls++
	return s.inner.Scan(scenario)
}

// testEnv returns a kneeboard root, a counting scanner over it and a logger.
func testEnv(t *testing.T, rels ...string) (string, *countingScanner) {
	t.Helper()
	root := t.TempDir()
	writePages(t, root, rels...)
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return root, &countingScanner{inner: NewDirScanner(store, testLogger())}
}
