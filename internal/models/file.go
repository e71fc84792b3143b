// Package models defines the shared value types for kneeview.
package models

import "time"

// FileEntry is a lightweight description of one file under the kneeboard root,
// returned by storage list operations.
type FileEntry struct {
	Path      string    `json:"path"` // relative to the kneeboard root
	AbsPath   string    `json:"abs_path"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScenarioUpdate is one snapshot from the scenario feed. Only Aircraft and
// Theater drive the kneeboard; the rest is informational.
type ScenarioUpdate struct {
	Aircraft  string `json:"aircraft"`
	Theater   string `json:"theater"`
	Coalition string `json:"coalition,omitempty"`
	Mission   string `json:"mission,omitempty"`
}
