package api

import (
	"github.com/starford/kneeview/internal/index"
	"github.com/starford/kneeview/internal/kneeboard"
)

// ScenarioRequest is one scenario feed snapshot.
type ScenarioRequest struct {
	Aircraft  string `json:"aircraft" example:"FA-18C_hornet" validate:"required"`
	Theater   string `json:"theater" example:"Syria"`
	Coalition string `json:"coalition,omitempty" example:"blue"`
	Mission   string `json:"mission,omitempty" example:"CAS training"`
}

// ScenarioResponse reports whether the scenario changed.
type ScenarioResponse struct {
	Changed bool               `json:"changed"`
	State   kneeboard.Snapshot `json:"state"`
}

// LoadGroupRequest selects a group. An empty subgroup selects the pages
// without subgroup.
type LoadGroupRequest struct {
	Group    string `json:"group" example:"CheckList" validate:"required"`
	Subgroup string `json:"subgroup,omitempty" example:"Quick"`
}

// LoadGroupResponse lists the pages resolved for the selection. Pages is
// empty when nothing matched; the state is then unchanged.
type LoadGroupResponse struct {
	Pages []kneeboard.KneeboardPage `json:"pages" validate:"required"`
	State kneeboard.Snapshot        `json:"state"`
}

// GroupsResponse wraps the group list of the active scenario.
type GroupsResponse struct {
	Scenario kneeboard.ScenarioKey `json:"scenario"`
	Groups   []kneeboard.PageGroup `json:"groups" validate:"required"`
}

// PagesResponse wraps the pages of the current selection.
type PagesResponse struct {
	Pages []kneeboard.KneeboardPage `json:"pages" validate:"required"`
}

// CommandsResponse lists the command names accepted by /commands/{name}.
type CommandsResponse struct {
	Commands []string `json:"commands" validate:"required"`
}

// SearchResponse wraps catalog search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// UploadResponse is returned after a page file is stored.
type UploadResponse struct {
	Path string `json:"path" example:"FA-18C_hornet/01-Brevity-1.png" validate:"required"`
	Size int64  `json:"size" example:"12345" validate:"required"`
}
