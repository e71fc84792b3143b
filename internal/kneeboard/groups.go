package kneeboard

import (
	"sort"
	"strings"
)

// BuildGroups derives the display hierarchy from a metadata list.
// Group names compare case-insensitively; the first encountered spelling
// wins. The result is sorted by display name.
func BuildGroups(metadata []FileMetadata) []PageGroup {
	index := make(map[string]int)
	var groups []PageGroup

	for _, m := range metadata {
		key := strings.ToLower(m.Group)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, PageGroup{
				Name:        m.Group,
				DisplayName: displayName(m.Group),
				Subgroups:   []string{},
				FilePath:    m.Path,
			})
		}
		g := &groups[i]
		if m.IsNight {
			g.HasNightVersion = true
		} else {
			g.HasDayVersion = true
		}
		if m.Subgroup.Valid && !g.HasSubgroup(m.Subgroup.Name) {
			g.Subgroups = append(g.Subgroups, m.Subgroup.Name)
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].DisplayName < groups[j].DisplayName
	})
	if groups == nil {
		groups = []PageGroup{}
	}
	return groups
}

// GroupIndex memoises BuildGroups per scenario on top of a MetadataCache.
type GroupIndex struct {
	metadata *MetadataCache
	entries  map[ScenarioKey][]PageGroup
}

// NewGroupIndex creates an empty index over metadata.
func NewGroupIndex(metadata *MetadataCache) *GroupIndex {
	return &GroupIndex{
		metadata: metadata,
		entries:  make(map[ScenarioKey][]PageGroup),
	}
}

// Groups returns the memoised groups for scenario, building them when absent.
func (x *GroupIndex) Groups(scenario ScenarioKey) []PageGroup {
	if groups, ok := x.entries[scenario]; ok {
		return groups
	}
	groups := BuildGroups(x.metadata.GetOrScan(scenario))
	x.entries[scenario] = groups
	return groups
}

// Clear drops every memoised entry.
func (x *GroupIndex) Clear() {
	clear(x.entries)
}
