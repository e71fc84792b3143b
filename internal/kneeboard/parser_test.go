package kneeboard

import (
	"fmt"
	"testing"
)

func TestParseFilename_Grammars(t *testing.T) {
	cases := []struct {
		name     string
		group    string
		subgroup Subgroup
		night    bool
		page     uint32
		fullName string
	}{
		{"007-CheckList_Quick-001", "CheckList", SomeSubgroup("Quick"), false, 1, "CheckList_Quick"},
		{"CheckList_Quick-012", "CheckList", SomeSubgroup("Quick"), false, 12, "CheckList_Quick"},
		{"002-CheckList_Quick_Night-001", "CheckList", SomeSubgroup("Quick"), true, 1, "CheckList_Quick_Night"},
		{"001-Brevity-003", "Brevity", NoSubgroup, false, 3, "Brevity"},
		{"001-Radio_Freqs_2-004", "Radio_Freqs", SomeSubgroup("2"), false, 4, "Radio_Freqs_2"},
		{"001-Map_Caucasus;abc123-001", "Map", SomeSubgroup("Caucasus"), false, 1, "Map_Caucasus;abc123"},
		{"001-Map;id_x_Night-002", "Map", NoSubgroup, true, 2, "Map;id_x_Night"},
		{"001-_Hidden-001", "_Hidden", NoSubgroup, false, 1, "_Hidden"},
		{"Strike-Plan-005", "Strike-Plan", NoSubgroup, false, 5, "Strike-Plan"},
		{"001-Group_-001", "Group", NoSubgroup, false, 1, "Group_"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			info, ok := ParseFilename(tc.name)
			if !ok {
				t.Fatalf("ParseFilename(%q) failed", tc.name)
			}
			if info.Group != tc.group {
				t.Errorf("group = %q, want %q", info.Group, tc.group)
			}
			if info.Subgroup != tc.subgroup {
				t.Errorf("subgroup = %+v, want %+v", info.Subgroup, tc.subgroup)
			}
			if info.IsNight != tc.night || info.IsDay == tc.night {
				t.Errorf("night = %v day = %v, want night %v", info.IsNight, info.IsDay, tc.night)
			}
			if info.Page != tc.page {
				t.Errorf("page = %d, want %d", info.Page, tc.page)
			}
			if info.FullName != tc.fullName {
				t.Errorf("full name = %q, want %q", info.FullName, tc.fullName)
			}
		})
	}
}

func TestParseFilename_Rejects(t *testing.T) {
	for _, name := range []string{
		"",
		"readme",
		"CheckList_Quick",
		"001-CheckList Quick-001",
		"001-CheckList-abc",
		"CheckList-99999999999",
		"001-Check.List-001",
	} {
		if info, ok := ParseFilename(name); ok {
			t.Errorf("ParseFilename(%q) = %+v, want failure", name, info)
		}
	}
}

func TestParseFilename_RoundTrip(t *testing.T) {
	groups := []string{"CheckList", "Emergency", "Radio", "A2A"}
	subs := []string{"Quick", "Startup", "Fuel", "7"}
	for i, g := range groups {
		for j, s := range subs {
			page := uint32(i*10 + j + 1)
			name := fmt.Sprintf("%03d-%s_%s-%03d", i+j, g, s, page)
			info, ok := ParseFilename(name)
			if !ok {
				t.Fatalf("ParseFilename(%q) failed", name)
			}
			if info.Group != g || info.Subgroup != SomeSubgroup(s) || info.Page != page || info.IsNight {
				t.Errorf("%q parsed as %+v", name, info)
			}
		}
	}
}

func TestParseFilename_NightSuffixIdempotent(t *testing.T) {
	for _, body := range []string{"CheckList_Quick", "Brevity", "Radio_Freqs_2", "Map_Caucasus;x"} {
		day, ok := ParseFilename("001-" + body + "-001")
		if !ok {
			t.Fatalf("day %q failed", body)
		}
		night, ok := ParseFilename("001-" + body + "_Night-001")
		if !ok {
			t.Fatalf("night %q failed", body)
		}
		if !night.IsNight || day.IsNight {
			t.Errorf("%q: night flags day=%v night=%v", body, day.IsNight, night.IsNight)
		}
		if night.Group != day.Group || night.Subgroup != day.Subgroup {
			t.Errorf("%q: night %+v differs from day %+v", body, night, day)
		}
	}
}
