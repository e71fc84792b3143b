package index

import "github.com/starford/kneeview/internal/kneeboard"

// Catalog defines the persistence operations the viewer depends on.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type Catalog interface {
	ReplaceScenario(scenario string, pages []kneeboard.FileMetadata) error
	Search(scenario, query string, limit int) ([]SearchResult, error)
	CountPages(scenario string) (int, error)
	SaveState(s State) error
	LoadState() (State, bool, error)
	Close() error
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
