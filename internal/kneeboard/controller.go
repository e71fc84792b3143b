package kneeboard

import "log/slog"

// Event is a change notification emitted by the Controller.
type Event int

// Events.
const (
	GroupsChanged Event = iota + 1
	PageChanged
	NightModeChanged
)

func (e Event) String() string {
	switch e {
	case GroupsChanged:
		return "groups.changed"
	case PageChanged:
		return "page.changed"
	case NightModeChanged:
		return "night_mode.changed"
	default:
		return "unknown"
	}
}

// Listener receives controller events. Listeners run synchronously inside
// the operation that fired them.
type Listener func(Event)

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	Scenario  ScenarioKey    `json:"scenario"`
	NightMode bool           `json:"night_mode"`
	Group     string         `json:"group,omitempty"`
	Subgroup  string         `json:"subgroup,omitempty"`
	PageIndex int            `json:"page_index"`
	PageCount int            `json:"page_count"`
	Page      *KneeboardPage `json:"page,omitempty"`
}

// Controller owns the active scenario, the night-mode flag, the current
// selection and the three caches. It is not safe for concurrent use; see
// package viewer for a goroutine-owned wrapper.
type Controller struct {
	logger *slog.Logger

	metadata *MetadataCache
	groups   *GroupIndex
	pages    *PageResolver

	scenario     ScenarioKey
	lastScenario ScenarioKey
	nightMode    bool

	group     string
	subgroup  Subgroup
	selected  bool
	current   []KneeboardPage
	pageIndex int

	listeners []Listener
}

// NewController creates a controller whose metadata comes from scanner.
func NewController(scanner Scanner, logger *slog.Logger) *Controller {
	metadata := NewMetadataCache(scanner)
	return &Controller{
		logger:   logger,
		metadata: metadata,
		groups:   NewGroupIndex(metadata),
		pages:    NewPageResolver(metadata),
	}
}

// Subscribe registers l for every subsequent event.
func (c *Controller) Subscribe(l Listener) {
	c.listeners = append(c.listeners, l)
}

func (c *Controller) notify(e Event) {
	for _, l := range c.listeners {
		l(e)
	}
}

// UpdateScenario applies a scenario feed snapshot. A change of aircraft,
// theater or derived era clears every cache and rebuilds the group index.
// Reports whether the scenario changed.
func (c *Controller) UpdateScenario(aircraft, theater string) bool {
	next := NewScenarioKey(aircraft, theater)
	changed := next != c.lastScenario
	c.lastScenario = next
	if !changed {
		return false
	}

	c.logger.Info("controller: scenario changed",
		slog.String("from", c.scenario.CacheKey()),
		slog.String("to", next.CacheKey()))

	c.scenario = next
	c.clearAll()
	c.rebuild()
	return true
}

// Refresh drops every cache and rebuilds from disk without changing the
// scenario. Used after the kneeboard directory changed out-of-band.
func (c *Controller) Refresh() {
	c.logger.Info("controller: refresh", slog.String("scenario", c.scenario.CacheKey()))
	c.clearAll()
	c.rebuild()
}

func (c *Controller) clearAll() {
	c.metadata.Clear()
	c.groups.Clear()
	c.pages.Clear()
}

// rebuild repopulates the group index and re-resolves the current selection.
func (c *Controller) rebuild() {
	groups := c.groups.Groups(c.scenario)
	c.logger.Debug("controller: groups rebuilt", slog.Int("groups", len(groups)))
	c.notify(GroupsChanged)

	if c.selected && c.reselect() {
		c.notify(PageChanged)
	}
}

// reselect resolves the current selection again under the same rule as
// LoadGroup: a non-empty result replaces the pages and rewinds to the first
// one, an empty result leaves the previous pages and index in place.
func (c *Controller) reselect() bool {
	pages := c.pages.Resolve(c.scenario, c.group, c.subgroup, c.nightMode)
	if len(pages) == 0 {
		c.logNoPages(c.group, c.subgroup)
		return false
	}
	c.current = pages
	c.pageIndex = 0
	return true
}

func (c *Controller) logNoPages(group string, subgroup Subgroup) {
	c.logger.Info("controller: no pages for selection",
		slog.String("group", group),
		slog.String("subgroup", subgroup.OrMain()),
		slog.Bool("night_mode", c.nightMode))
}

// ToggleNightMode flips night mode. Only the page cache is invalidated;
// metadata and groups do not depend on day/night.
func (c *Controller) ToggleNightMode() bool {
	c.nightMode = !c.nightMode
	c.pages.Clear()
	c.logger.Info("controller: night mode toggled", slog.Bool("night_mode", c.nightMode))
	c.notify(NightModeChanged)

	if c.selected && c.reselect() {
		c.notify(PageChanged)
	}
	return c.nightMode
}

// SetNightMode sets night mode to on, toggling only when it differs.
func (c *Controller) SetNightMode(on bool) {
	if c.nightMode != on {
		c.ToggleNightMode()
	}
}

// LoadGroup selects group/subgroup and moves to its first page. When no
// pages match, the previous selection is kept and the empty result returned.
func (c *Controller) LoadGroup(group string, subgroup Subgroup) []KneeboardPage {
	pages := c.pages.Resolve(c.scenario, group, subgroup, c.nightMode)
	if len(pages) == 0 {
		c.logNoPages(group, subgroup)
		return pages
	}

	c.group = group
	c.subgroup = subgroup
	c.selected = true
	c.current = pages
	c.pageIndex = 0
	c.notify(PageChanged)
	return pages
}

// NextPage advances with wraparound. No-op without pages.
func (c *Controller) NextPage() {
	c.moveTo(NextIndex(c.pageIndex, len(c.current)))
}

// PreviousPage moves back with wraparound. No-op without pages.
func (c *Controller) PreviousPage() {
	c.moveTo(PreviousIndex(c.pageIndex, len(c.current)))
}

// FirstPage jumps to the first page. No-op without pages.
func (c *Controller) FirstPage() {
	c.moveTo(0)
}

// LastPage jumps to the last page. No-op without pages.
func (c *Controller) LastPage() {
	c.moveTo(len(c.current) - 1)
}

func (c *Controller) moveTo(i int) {
	if len(c.current) == 0 {
		return
	}
	c.pageIndex = i
	c.notify(PageChanged)
}

// Scenario returns the active scenario.
func (c *Controller) Scenario() ScenarioKey { return c.scenario }

// NightMode reports whether night mode is on.
func (c *Controller) NightMode() bool { return c.nightMode }

// CurrentGroup returns the selected group, empty when none.
func (c *Controller) CurrentGroup() string { return c.group }

// CurrentSubgroup returns the selected subgroup.
func (c *Controller) CurrentSubgroup() Subgroup { return c.subgroup }

// PageIndex returns the zero-based index of the current page.
func (c *Controller) PageIndex() int { return c.pageIndex }

// PageCount returns the number of pages in the current selection.
func (c *Controller) PageCount() int { return len(c.current) }

// CurrentPage returns the current page, if any.
func (c *Controller) CurrentPage() (KneeboardPage, bool) {
	if c.pageIndex < 0 || c.pageIndex >= len(c.current) {
		return KneeboardPage{}, false
	}
	return c.current[c.pageIndex], true
}

// Pages returns the pages of the current selection.
func (c *Controller) Pages() []KneeboardPage { return c.current }

// Groups returns the groups available in the active scenario.
func (c *Controller) Groups() []PageGroup {
	return c.groups.Groups(c.scenario)
}

// Metadata returns the scanned metadata of the active scenario.
func (c *Controller) Metadata() []FileMetadata {
	return c.metadata.GetOrScan(c.scenario)
}

// Snapshot copies the observable state.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Scenario:  c.scenario,
		NightMode: c.nightMode,
		Group:     c.group,
		Subgroup:  c.subgroup.Name,
		PageIndex: c.pageIndex,
		PageCount: len(c.current),
	}
	if p, ok := c.CurrentPage(); ok {
		s.Page = &p
	}
	return s
}
