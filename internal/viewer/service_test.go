package viewer_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/starford/kneeview/internal/apperr"
	"github.com/starford/kneeview/internal/index"
	"github.com/starford/kneeview/internal/kneeboard"
	"github.com/starford/kneeview/internal/models"
	"github.com/starford/kneeview/internal/testutil"
	"github.com/starford/kneeview/internal/viewer"
)

var hornetPages = []string{
	"FA-18C_hornet/001-CheckList_Quick-001.png",
	"FA-18C_hornet/001-CheckList_Quick-002.png",
	"FA-18C_hornet/002-CheckList_Quick_Night-001.png",
	"001-Brevity-001.png",
}

func TestService_ScenarioAndNavigation(t *testing.T) {
	svc, root, _, _ := testutil.TestViewer(t, nil, hornetPages...)
	ctx := context.Background()

	changed, err := svc.UpdateScenario(ctx, models.ScenarioUpdate{Aircraft: "FA-18C_hornet", Theater: "PersianGulf", Coalition: "blue"})
	if err != nil || !changed {
		t.Fatalf("UpdateScenario: changed=%v err=%v", changed, err)
	}
	groups, err := svc.Groups(ctx)
	if err != nil || len(groups) != 2 {
		t.Fatalf("groups = %+v err=%v", groups, err)
	}

	pages, snap, err := svc.LoadGroup(ctx, "CheckList", "Quick")
	if err != nil || len(pages) != 2 {
		t.Fatalf("pages = %+v err=%v", pages, err)
	}
	if snap.PageCount != 2 || snap.Page == nil || snap.Page.Number != "001" {
		t.Errorf("snapshot = %+v", snap)
	}

	snap, err = svc.Execute(ctx, string(kneeboard.CmdNextPage))
	if err != nil || snap.PageIndex != 1 {
		t.Errorf("next: %+v err=%v", snap, err)
	}

	snap, err = svc.ToggleNightMode(ctx)
	if err != nil || !snap.NightMode || snap.PageCount != 1 {
		t.Errorf("toggle: %+v err=%v", snap, err)
	}
	page, err := svc.CurrentPage(ctx)
	if err != nil || page.Path != filepath.Join(root, "FA-18C_hornet", "002-CheckList_Quick_Night-001.png") {
		t.Errorf("current page = %+v err=%v", page, err)
	}
}

func TestService_UnknownCommand(t *testing.T) {
	svc, _, _, _ := testutil.TestViewer(t, nil)
	if _, err := svc.Execute(context.Background(), "eject"); !errors.Is(err, apperr.ErrUnknownCommand) {
		t.Errorf("err = %v", err)
	}
}

func TestService_CurrentPageNotFound(t *testing.T) {
	svc, _, _, _ := testutil.TestViewer(t, nil)
	if _, err := svc.CurrentPage(context.Background()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	pages, err := svc.Pages(context.Background())
	if err != nil || pages == nil || len(pages) != 0 {
		t.Errorf("pages = %#v err = %v", pages, err)
	}
}

func TestService_PersistsAndRestoresState(t *testing.T) {
	svc, _, store, db := testutil.TestViewer(t, nil, hornetPages...)
	ctx := context.Background()

	_, _ = svc.UpdateScenario(ctx, models.ScenarioUpdate{Aircraft: "FA-18C_hornet", Theater: "Syria"})
	_, _ = svc.ToggleNightMode(ctx)

	st, ok, err := db.LoadState()
	if err != nil || !ok {
		t.Fatalf("LoadState ok=%v err=%v", ok, err)
	}
	want := index.State{Aircraft: "FA-18C_hornet", Theater: "Syria", NightMode: true}
	if st != want {
		t.Errorf("state = %+v, want %+v", st, want)
	}

	n, _ := db.CountPages("FA-18C_hornet_Syria_Modern")
	if n != 4 {
		t.Errorf("catalog pages = %d, want 4", n)
	}

	// A second service over the same catalog picks the state up.
	ctrl := kneeboard.NewController(kneeboard.NewDirScanner(store, testutil.Logger()), testutil.Logger())
	restored := viewer.New(ctrl, testutil.Logger(), viewer.WithCatalog(db))
	defer restored.Close()
	if err := restored.Restore(ctx, index.State{Aircraft: "P-51D", Theater: "Normandy"}); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	snap, _ := restored.State(ctx)
	if snap.Scenario.Aircraft != "FA-18C_hornet" || snap.Scenario.Theater != "Syria" || !snap.NightMode {
		t.Errorf("restored = %+v", snap)
	}
}

func TestService_RestoreFallback(t *testing.T) {
	svc, _, _, _ := testutil.TestViewer(t, nil)
	ctx := context.Background()
	if err := svc.Restore(ctx, index.State{Aircraft: "P-51D", Theater: "Normandy"}); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	snap, _ := svc.State(ctx)
	if snap.Scenario.Era != kneeboard.EraWWII || snap.NightMode {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestService_Search(t *testing.T) {
	svc, _, _, _ := testutil.TestViewer(t, nil, hornetPages...)
	ctx := context.Background()
	_, _ = svc.UpdateScenario(ctx, models.ScenarioUpdate{Aircraft: "FA-18C_hornet", Theater: "Caucasus"})

	results, err := svc.Search(ctx, "brevity", 10)
	if err != nil || len(results) != 1 || results[0].Group != "Brevity" {
		t.Errorf("results = %+v err = %v", results, err)
	}
}

func TestService_PublishesEvents(t *testing.T) {
	var mu sync.Mutex
	var got []string
	pub := viewer.WithPublisher(func(e kneeboard.Event, _ kneeboard.Snapshot) {
		mu.Lock()
		got = append(got, e.String())
		mu.Unlock()
	})
	svc, _, _, _ := testutil.TestViewer(t, []viewer.Option{pub}, hornetPages...)
	ctx := context.Background()

	_, _ = svc.UpdateScenario(ctx, models.ScenarioUpdate{Aircraft: "FA-18C_hornet", Theater: "Caucasus"})
	_, _, _ = svc.LoadGroup(ctx, "CheckList", "Quick")
	_, _ = svc.ToggleNightMode(ctx)

	mu.Lock()
	defer mu.Unlock()
	want := []string{"groups.changed", "page.changed", "night_mode.changed", "page.changed"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestService_ConcurrentCallers(t *testing.T) {
	svc, _, _, _ := testutil.TestViewer(t, nil, hornetPages...)
	ctx := context.Background()
	_, _ = svc.UpdateScenario(ctx, models.ScenarioUpdate{Aircraft: "FA-18C_hornet", Theater: "Caucasus"})
	_, _, _ = svc.LoadGroup(ctx, "CheckList", "Quick")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			switch i % 4 {
			case 0:
				_, _ = svc.Execute(ctx, "next_page")
			case 1:
				_ = svc.Refresh(ctx)
			case 2:
				_, _ = svc.Groups(ctx)
			case 3:
				_, _ = svc.State(ctx)
			}
		}(i)
	}
	wg.Wait()

	snap, err := svc.State(ctx)
	if err != nil || snap.PageCount != 2 {
		t.Errorf("snapshot = %+v err = %v", snap, err)
	}
}

func TestService_Closed(t *testing.T) {
	svc, _, _, _ := testutil.TestViewer(t, nil)
	svc.Close()
	if _, err := svc.State(context.Background()); !errors.Is(err, apperr.ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestService_CancelledContext(t *testing.T) {
	svc, _, _, _ := testutil.TestViewer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// The request may still be accepted; either outcome is valid, but a
	// cancelled context must never block.
	_, _ = svc.State(ctx)
}
