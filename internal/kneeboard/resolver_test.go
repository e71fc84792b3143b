package kneeboard

import (
	"testing"
)

func staticScanner(md []FileMetadata) *countingScanner {
	return &countingScanner{inner: scannerFunc(func(ScenarioKey) []FileMetadata { return md })}
}

type scannerFunc func(ScenarioKey) []FileMetadata

func (f scannerFunc) Scan(k ScenarioKey) []FileMetadata { return f(k) }

var hornet = NewScenarioKey("FA-18C_hornet", "PersianGulf")

func TestResolve_OrdersByPageNumber(t *testing.T) {
	md := []FileMetadata{
		{Path: "c", Group: "CheckList", Subgroup: SomeSubgroup("Quick"), Page: 3},
		{Path: "a", Group: "CheckList", Subgroup: SomeSubgroup("Quick"), Page: 1},
		{Path: "b", Group: "CheckList", Subgroup: SomeSubgroup("Quick"), Page: 2},
	}
	r := NewPageResolver(NewMetadataCache(staticScanner(md)))
	pages := r.Resolve(hornet, "CheckList", SomeSubgroup("Quick"), false)
	if len(pages) != 3 {
		t.Fatalf("len = %d", len(pages))
	}
	for i, want := range []string{"001", "002", "003"} {
		if pages[i].Number != want {
			t.Errorf("pages[%d].Number = %q, want %q", i, pages[i].Number, want)
		}
	}
	if pages[0].Path != "a" || pages[2].Path != "c" {
		t.Errorf("paths = %q..%q", pages[0].Path, pages[2].Path)
	}
}

func TestResolve_StableOnTies(t *testing.T) {
	md := []FileMetadata{
		{Path: "aircraft", Group: "Brevity", Page: 1},
		{Path: "root", Group: "Brevity", Page: 1},
		{Path: "zero", Group: "Brevity", Page: 0},
	}
	r := NewPageResolver(NewMetadataCache(staticScanner(md)))
	pages := r.Resolve(hornet, "brevity", NoSubgroup, false)
	if len(pages) != 3 || pages[0].Path != "zero" || pages[1].Path != "aircraft" || pages[2].Path != "root" {
		t.Errorf("pages = %+v", pages)
	}
	if pages[0].Number != "000" {
		t.Errorf("number = %q", pages[0].Number)
	}
}

func TestResolve_SelectorExactness(t *testing.T) {
	md := []FileMetadata{
		{Path: "quick", Group: "CheckList", Subgroup: SomeSubgroup("Quick"), Page: 1},
		{Path: "main", Group: "CheckList", Page: 1},
		{Path: "night", Group: "CheckList", IsNight: true, Page: 1},
	}
	r := NewPageResolver(NewMetadataCache(staticScanner(md)))

	main := r.Resolve(hornet, "CheckList", NoSubgroup, false)
	if len(main) != 1 || main[0].Path != "main" {
		t.Errorf("no-subgroup selection = %+v", main)
	}
	quick := r.Resolve(hornet, "CHECKLIST", SomeSubgroup("quick"), false)
	if len(quick) != 1 || quick[0].Path != "quick" || quick[0].Subgroup != "Quick" {
		t.Errorf("subgroup selection = %+v", quick)
	}
	night := r.Resolve(hornet, "CheckList", NoSubgroup, true)
	if len(night) != 1 || night[0].Path != "night" {
		t.Errorf("night selection = %+v", night)
	}
	none := r.Resolve(hornet, "CheckList", SomeSubgroup("Startup"), false)
	if none == nil || len(none) != 0 {
		t.Errorf("unknown subgroup = %#v, want empty", none)
	}
}

func TestResolve_CachesPerSelection(t *testing.T) {
	md := []FileMetadata{
		{Path: "d", Group: "Brevity", Page: 1},
		{Path: "n", Group: "Brevity", IsNight: true, Page: 1},
	}
	sc := staticScanner(md)
	r := NewPageResolver(NewMetadataCache(sc))

	day := r.Resolve(hornet, "Brevity", NoSubgroup, false)
	night := r.Resolve(hornet, "Brevity", NoSubgroup, true)
	again := r.Resolve(hornet, "Brevity", NoSubgroup, false)
	if day[0].Path != "d" || night[0].Path != "n" {
		t.Errorf("day=%+v night=%+v", day, night)
	}
	if &day[0] != &again[0] {
		t.Error("expected cached slice on repeated selection")
	}
	if !r.Cached(hornet, "Brevity", NoSubgroup, true) {
		t.Error("night selection not cached")
	}
	if r.Cached(hornet, "Brevity", SomeSubgroup("MAIN"), false) {
		t.Error("explicit MAIN subgroup must not alias the absent subgroup")
	}
	if sc.calls != 1 {
		t.Errorf("scan calls = %d, want 1", sc.calls)
	}

	r.Clear()
	if r.Cached(hornet, "Brevity", NoSubgroup, false) {
		t.Error("entry survived Clear")
	}
}

func TestNavigationIndexes(t *testing.T) {
	cases := []struct {
		i, count, next, prev int
	}{
		{0, 3, 1, 2},
		{2, 3, 0, 1},
		{0, 1, 0, 0},
		{0, 0, 0, 0},
		{4, 0, 4, 4},
	}
	for _, tc := range cases {
		if got := NextIndex(tc.i, tc.count); got != tc.next {
			t.Errorf("NextIndex(%d,%d) = %d, want %d", tc.i, tc.count, got, tc.next)
		}
		if got := PreviousIndex(tc.i, tc.count); got != tc.prev {
			t.Errorf("PreviousIndex(%d,%d) = %d, want %d", tc.i, tc.count, got, tc.prev)
		}
	}
}
