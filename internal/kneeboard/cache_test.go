package kneeboard

import (
	"reflect"
	"testing"
)

func TestMetadataCache_HitDoesNotRescan(t *testing.T) {
	_, sc := testEnv(t, "001-Brevity-001.png")
	c := NewMetadataCache(sc)
	key := NewScenarioKey("FA-18C_hornet", "Caucasus")

	first := c.GetOrScan(key)
	second := c.GetOrScan(key)
	if sc.calls != 1 {
		t.Errorf("scan calls = %d, want 1", sc.calls)
	}
	if len(first) != 1 || &first[0] != &second[0] {
		t.Error("expected the same cached slice on hit")
	}
}

func TestMetadataCache_KeysAreScenarioSpecific(t *testing.T) {
	_, sc := testEnv(t, "FA-18C_hornet/001-Brevity-001.png")
	c := NewMetadataCache(sc)

	hornet := c.GetOrScan(NewScenarioKey("FA-18C_hornet", "Caucasus"))
	viper := c.GetOrScan(NewScenarioKey("F-16C_50", "Caucasus"))
	if len(hornet) != 1 || len(viper) != 0 {
		t.Errorf("hornet=%d viper=%d", len(hornet), len(viper))
	}
	if c.Len() != 2 || sc.calls != 2 {
		t.Errorf("len=%d calls=%d", c.Len(), sc.calls)
	}
}

func TestMetadataCache_EmptyResultIsCached(t *testing.T) {
	_, sc := testEnv(t)
	c := NewMetadataCache(sc)
	key := NewScenarioKey("Su-25T", "Caucasus")
	if got := c.GetOrScan(key); got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil", got)
	}
	c.GetOrScan(key)
	if sc.calls != 1 {
		t.Errorf("scan calls = %d, want 1", sc.calls)
	}
}

func TestMetadataCache_ClearForcesRescan(t *testing.T) {
	root, sc := testEnv(t, "001-Brevity-001.png")
	c := NewMetadataCache(sc)
	key := NewScenarioKey("FA-18C_hornet", "Caucasus")
	c.GetOrScan(key)

	writePages(t, root, "001-Brevity-002.png")
	if got := c.GetOrScan(key); len(got) != 1 {
		t.Errorf("cached entry changed in place: %d", len(got))
	}

	c.Clear()
	if c.Cached(key) {
		t.Error("entry survived Clear")
	}
	if got := c.GetOrScan(key); len(got) != 2 {
		t.Errorf("after clear len = %d, want 2", len(got))
	}
	if sc.calls != 2 {
		t.Errorf("scan calls = %d, want 2", sc.calls)
	}
}

func TestBuildGroups(t *testing.T) {
	md := []FileMetadata{
		{Path: "/k/zulu-1", Group: "Zulu_Time", IsNight: false, Page: 1},
		{Path: "/k/cl-1", Group: "CheckList", Subgroup: SomeSubgroup("Quick"), Page: 1},
		{Path: "/k/cl-2", Group: "checklist", Subgroup: SomeSubgroup("Startup"), IsNight: true, Page: 1},
		{Path: "/k/cl-3", Group: "CheckList", Subgroup: SomeSubgroup("Quick"), IsNight: true, Page: 2},
		{Path: "/k/cl-4", Group: "CheckList", Page: 3},
		{Path: "/k/br-1", Group: "Brevity", IsNight: true, Page: 1},
	}
	got := BuildGroups(md)
	want := []PageGroup{
		{Name: "Brevity", DisplayName: "Brevity", HasNightVersion: true, Subgroups: []string{}, FilePath: "/k/br-1"},
		{Name: "CheckList", DisplayName: "CheckList", HasDayVersion: true, HasNightVersion: true, Subgroups: []string{"Quick", "Startup"}, FilePath: "/k/cl-1"},
		{Name: "Zulu_Time", DisplayName: "Zulu Time", HasDayVersion: true, Subgroups: []string{}, FilePath: "/k/zulu-1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildGroups =\n%+v\nwant\n%+v", got, want)
	}
}

func TestBuildGroups_Empty(t *testing.T) {
	got := BuildGroups(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty non-nil", got)
	}
}

func TestGroupIndex_Memoised(t *testing.T) {
	_, sc := testEnv(t, "001-Brevity-001.png")
	md := NewMetadataCache(sc)
	x := NewGroupIndex(md)
	key := NewScenarioKey("FA-18C_hornet", "Caucasus")

	first := x.Groups(key)
	md.Clear()
	second := x.Groups(key)
	if sc.calls != 1 {
		t.Errorf("memoised groups should not rescan; calls = %d", sc.calls)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("memoised groups differ")
	}

	x.Clear()
	x.Groups(key)
	if sc.calls != 2 {
		t.Errorf("calls after clear = %d, want 2", sc.calls)
	}
}
