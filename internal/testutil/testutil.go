// Package testutil provides shared test helpers for kneeboard roots, catalogs
// and viewer services.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/kneeview/internal/index"
	"github.com/starford/kneeview/internal/kneeboard"
	"github.com/starford/kneeview/internal/storage"
	"github.com/starford/kneeview/internal/viewer"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite catalog that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "kneeview-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestRoot creates a temporary kneeboard root holding the given page files
// (slash-separated paths relative to the root) and a storage provider for it.
func TestRoot(t *testing.T, pages ...string) (string, *storage.FS) {
	t.Helper()
	root := t.TempDir()
	WritePages(t, root, pages...)
	store, err := storage.NewFS(root)
	if err != nil {
		t.Fatal(err)
	}
	return store.Root(), store
}

// WritePages creates small placeholder page files under root.
func WritePages(t *testing.T, root string, pages ...string) {
	t.Helper()
	for _, rel := range pages {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte("png:"+rel), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// TestViewer builds a viewer service over a fresh root and catalog.
// The service is closed on cleanup.
func TestViewer(t *testing.T, opts []viewer.Option, pages ...string) (*viewer.Service, string, *storage.FS, *index.DB) {
	t.Helper()
	root, store := TestRoot(t, pages...)
	db := TestDB(t)
	ctrl := kneeboard.NewController(kneeboard.NewDirScanner(store, Logger()), Logger())
	all := append([]viewer.Option{viewer.WithCatalog(db)}, opts...)
	svc := viewer.New(ctrl, Logger(), all...)
	t.Cleanup(svc.Close)
	return svc, root, store, db
}
