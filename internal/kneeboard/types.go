// Package kneeboard turns a directory of kneeboard page images into a
// navigable hierarchy of groups, subgroups and ordered pages, and keeps that
// hierarchy consistent with the active scenario and night mode.
package kneeboard

import (
	"fmt"
	"strings"
)

// ScenarioKey identifies the active (aircraft, theater, era) triple.
// Keys compare component-wise and case-sensitively.
type ScenarioKey struct {
	Aircraft string `json:"aircraft"`
	Theater  string `json:"theater"`
	Era      string `json:"era"`
}

// NewScenarioKey derives the era from the aircraft and returns the key.
func NewScenarioKey(aircraft, theater string) ScenarioKey {
	return ScenarioKey{
		Aircraft: aircraft,
		Theater:  theater,
		Era:      EraFor(aircraft),
	}
}

// CacheKey renders the key as "{aircraft}_{theater}_{era}".
// In-memory caches key on the struct; this form is for logs and persistence.
func (k ScenarioKey) CacheKey() string {
	return fmt.Sprintf("%s_%s_%s", k.Aircraft, k.Theater, k.Era)
}

func (k ScenarioKey) String() string { return k.CacheKey() }

// Subgroup is an optional subgroup name. The zero value means "no subgroup".
type Subgroup struct {
	Name  string
	Valid bool
}

// NoSubgroup is the absent subgroup.
var NoSubgroup = Subgroup{}

// SomeSubgroup wraps a subgroup name. An empty name yields NoSubgroup.
func SomeSubgroup(name string) Subgroup {
	if name == "" {
		return NoSubgroup
	}
	return Subgroup{Name: name, Valid: true}
}

// OrMain returns the name, or "MAIN" when absent.
func (s Subgroup) OrMain() string {
	if !s.Valid {
		return "MAIN"
	}
	return s.Name
}

// Matches reports whether a record's subgroup satisfies the requested one:
// an absent request only matches absent records, a named request matches
// case-insensitively.
func (s Subgroup) Matches(record Subgroup) bool {
	if !s.Valid {
		return !record.Valid
	}
	return record.Valid && strings.EqualFold(s.Name, record.Name)
}

// FileMetadata describes one page file on disk.
type FileMetadata struct {
	Path        string
	FileName    string
	Group       string
	Subgroup    Subgroup
	IsNight     bool
	Page        uint32
	DisplayName string
}

// PageGroup aggregates every page sharing a group name within a scenario.
type PageGroup struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	HasDayVersion   bool     `json:"has_day_version"`
	HasNightVersion bool     `json:"has_night_version"`
	Subgroups       []string `json:"subgroups"`
	FilePath        string   `json:"file_path"`
}

// HasSubgroup reports whether name is one of the group's subgroups.
func (g PageGroup) HasSubgroup(name string) bool {
	for _, s := range g.Subgroups {
		if s == name {
			return true
		}
	}
	return false
}

// KneeboardPage is one navigable page.
type KneeboardPage struct {
	Path        string `json:"path"`
	Group       string `json:"group"`
	Subgroup    string `json:"subgroup,omitempty"`
	Number      string `json:"number"`
	DisplayName string `json:"display_name"`
}
