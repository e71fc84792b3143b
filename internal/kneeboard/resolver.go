package kneeboard

import (
	"fmt"
	"sort"
	"strings"
)

// pageKey identifies one cached page selection. It is a comparable struct so
// that distinct selections never collide.
type pageKey struct {
	scenario ScenarioKey
	group    string
	subgroup Subgroup
	night    bool
}

type pageEntry struct {
	pages []KneeboardPage
	night bool
}

// PageResolver filters and orders metadata into page sequences and caches
// them per selection.
type PageResolver struct {
	metadata *MetadataCache
	entries  map[pageKey]pageEntry
}

// NewPageResolver creates an empty resolver over metadata.
func NewPageResolver(metadata *MetadataCache) *PageResolver {
	return &PageResolver{
		metadata: metadata,
		entries:  make(map[pageKey]pageEntry),
	}
}

// Resolve returns the ordered pages of group/subgroup for the given night
// mode. An empty result is valid. The returned slice is shared with the cache
// and must not be modified.
func (r *PageResolver) Resolve(scenario ScenarioKey, group string, subgroup Subgroup, night bool) []KneeboardPage {
	key := pageKey{scenario: scenario, group: group, subgroup: subgroup, night: night}
	if e, ok := r.entries[key]; ok && e.night == night {
		return e.pages
	}

	var matches []FileMetadata
	for _, m := range r.metadata.GetOrScan(scenario) {
		if !strings.EqualFold(m.Group, group) {
			continue
		}
		if !subgroup.Matches(m.Subgroup) {
			continue
		}
		if m.IsNight != night {
			continue
		}
		matches = append(matches, m)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Page < matches[j].Page
	})

	pages := make([]KneeboardPage, len(matches))
	for i, m := range matches {
		pages[i] = KneeboardPage{
			Path:        m.Path,
			Group:       m.Group,
			Subgroup:    m.Subgroup.Name,
			Number:      fmt.Sprintf("%03d", m.Page),
			DisplayName: m.DisplayName,
		}
	}
	r.entries[key] = pageEntry{pages: pages, night: night}
	return pages
}

// Cached reports whether the selection currently has a cache entry.
func (r *PageResolver) Cached(scenario ScenarioKey, group string, subgroup Subgroup, night bool) bool {
	_, ok := r.entries[pageKey{scenario: scenario, group: group, subgroup: subgroup, night: night}]
	return ok
}

// Clear drops every cached selection.
func (r *PageResolver) Clear() {
	clear(r.entries)
}

// NextIndex advances i by one, wrapping at count. Returns i unchanged when
// count is zero.
func NextIndex(i, count int) int {
	if count <= 0 {
		return i
	}
	return (i + 1) % count
}

// PreviousIndex moves i back by one, wrapping at zero. Returns i unchanged
// when count is zero.
func PreviousIndex(i, count int) int {
	if count <= 0 {
		return i
	}
	return (i - 1 + count) % count
}
