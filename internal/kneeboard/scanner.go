package kneeboard

import (
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/starford/kneeview/internal/storage"
)

const pageExt = ".png"

// Scanner produces the page metadata relevant to one scenario.
type Scanner interface {
	Scan(scenario ScenarioKey) []FileMetadata
}

// DirScanner scans the aircraft directory and the root directory of a
// storage provider, in that order.
//
// Entries are not de-duplicated: a page present in both directories yields
// two records.
type DirScanner struct {
	store  storage.Provider
	logger *slog.Logger
}

var _ Scanner = (*DirScanner)(nil)

// NewDirScanner creates a scanner over store.
func NewDirScanner(store storage.Provider, logger *slog.Logger) *DirScanner {
	return &DirScanner{store: store, logger: logger}
}

// Scan lists the candidate directories and parses every page file name.
// Missing directories and unreadable ones contribute nothing; the scan never
// fails as a whole.
func (s *DirScanner) Scan(scenario ScenarioKey) []FileMetadata {
	var out []FileMetadata
	for _, dir := range candidateDirs(scenario) {
		out = append(out, s.scanDir(dir)...)
	}
	s.logger.Debug("scanner: scanned",
		slog.String("scenario", scenario.CacheKey()),
		slog.Int("pages", len(out)))
	return out
}

// candidateDirs returns the aircraft directory then the root. An empty or
// path-like aircraft identifier only scans the root.
func candidateDirs(scenario ScenarioKey) []string {
	a := scenario.Aircraft
	if a == "" || a == "." || a == ".." || strings.ContainsAny(a, `/\`) {
		return []string{""}
	}
	return []string{a, ""}
}

func (s *DirScanner) scanDir(dir string) []FileMetadata {
	files, err := s.store.List(dir, pageExt)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("scanner: dir unreadable",
				slog.String("dir", dir),
				slog.String("error", err.Error()))
		}
		return nil
	}

	out := make([]FileMetadata, 0, len(files))
	for _, f := range files {
		stem := strings.TrimSuffix(f.Name, filepath.Ext(f.Name))
		info, ok := ParseFilename(stem)
		if !ok {
			s.logger.Warn("scanner: skipped unparsable name", slog.String("file", f.Path))
			continue
		}
		out = append(out, FileMetadata{
			Path:        f.AbsPath,
			FileName:    f.Name,
			Group:       info.Group,
			Subgroup:    info.Subgroup,
			IsNight:     info.IsNight,
			Page:        info.Page,
			DisplayName: pageDisplayName(info),
		})
	}
	return out
}

// pageDisplayName is "Group Subgroup" with underscores spaced out.
func pageDisplayName(info PageInfo) string {
	if info.Subgroup.Valid {
		return displayName(info.Group + " " + info.Subgroup.Name)
	}
	return displayName(info.Group)
}
