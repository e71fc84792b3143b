package kneeboard

// MetadataCache holds one scanned metadata list per scenario. Entries are
// stored and dropped wholesale; callers must treat returned slices as
// read-only.
type MetadataCache struct {
	scanner Scanner
	entries map[ScenarioKey][]FileMetadata
}

// NewMetadataCache creates an empty cache populated from scanner on miss.
func NewMetadataCache(scanner Scanner) *MetadataCache {
	return &MetadataCache{
		scanner: scanner,
		entries: make(map[ScenarioKey][]FileMetadata),
	}
}

// GetOrScan returns the cached list for scenario, scanning on a miss.
func (c *MetadataCache) GetOrScan(scenario ScenarioKey) []FileMetadata {
	if list, ok := c.entries[scenario]; ok {
		return list
	}
	list := c.scanner.Scan(scenario)
	if list == nil {
		list = []FileMetadata{}
	}
	c.entries[scenario] = list
	return list
}

// Cached reports whether scenario has an entry.
func (c *MetadataCache) Cached(scenario ScenarioKey) bool {
	_, ok := c.entries[scenario]
	return ok
}

// Clear drops every entry.
func (c *MetadataCache) Clear() {
	clear(c.entries)
}

// Len returns the number of cached scenarios.
func (c *MetadataCache) Len() int {
	return len(c.entries)
}
