// Package viewer serialises access to a kneeboard.Controller.
//
// Concurrency model: a single goroutine owns the controller. HTTP handlers,
// the MCP server, the directory watcher and the file receiver submit
// requests through a channel and wait for them to complete, so the
// controller and its caches need no locks.
package viewer

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/starford/kneeview/internal/apperr"
	"github.com/starford/kneeview/internal/index"
	"github.com/starford/kneeview/internal/kneeboard"
	"github.com/starford/kneeview/internal/models"
)

// Publisher receives controller events together with the state right after
// the event. It runs on the owning goroutine and must not block.
type Publisher func(e kneeboard.Event, snap kneeboard.Snapshot)

// Option configures a Service.
type Option func(*Service)

// WithCatalog persists state and page metadata to catalog.
func WithCatalog(catalog index.Catalog) Option {
	return func(s *Service) {
		s.catalog = catalog
	}
}

// WithPublisher forwards controller events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publish = p
	}
}

// Service is the goroutine-owned front of a kneeboard.Controller.
type Service struct {
	ctrl    *kneeboard.Controller
	catalog index.Catalog
	publish Publisher
	logger  *slog.Logger

	reqCh   chan func()
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// New takes ownership of ctrl and starts the owning goroutine. ctrl must not
// be used directly afterwards.
func New(ctrl *kneeboard.Controller, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		ctrl:    ctrl,
		logger:  logger,
		reqCh:   make(chan func()),
		stopCh:  make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	ctrl.Subscribe(s.onEvent)

	go s.run()
	return s
}

func (s *Service) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.stopCh:
			return
		case req := <-s.reqCh:
			req()
		}
	}
}

// Close stops the owning goroutine. Pending and later calls fail with
// apperr.ErrClosed.
func (s *Service) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	<-s.stopped
}

// do runs fn on the owning goroutine and waits for it. Once accepted, fn runs
// to completion regardless of ctx.
func (s *Service) do(ctx context.Context, fn func(c *kneeboard.Controller)) error {
	if s.closed.Load() {
		return apperr.ErrClosed
	}
	done := make(chan struct{})
	req := func() {
		defer close(done)
		fn(s.ctrl)
	}

	select {
	case s.reqCh <- req:
	case <-s.stopped:
		return apperr.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// onEvent runs inside controller operations, on the owning goroutine.
func (s *Service) onEvent(e kneeboard.Event) {
	switch e {
	case kneeboard.GroupsChanged:
		s.saveCatalog()
		s.saveState()
	case kneeboard.NightModeChanged:
		s.saveState()
	}
	if s.publish != nil {
		s.publish(e, s.ctrl.Snapshot())
	}
}

func (s *Service) saveCatalog() {
	if s.catalog == nil {
		return
	}
	key := s.ctrl.Scenario().CacheKey()
	if err := s.catalog.ReplaceScenario(key, s.ctrl.Metadata()); err != nil {
		s.logger.Warn("viewer: catalog update failed",
			slog.String("scenario", key),
			slog.String("error", err.Error()))
	}
}

func (s *Service) saveState() {
	if s.catalog == nil {
		return
	}
	sc := s.ctrl.Scenario()
	st := index.State{Aircraft: sc.Aircraft, Theater: sc.Theater, NightMode: s.ctrl.NightMode()}
	if err := s.catalog.SaveState(st); err != nil {
		s.logger.Warn("viewer: save state failed", slog.String("error", err.Error()))
	}
}

// Restore applies the persisted state, or fallback when nothing was saved.
func (s *Service) Restore(ctx context.Context, fallback index.State) error {
	st := fallback
	if s.catalog != nil {
		saved, ok, err := s.catalog.LoadState()
		if err != nil {
			s.logger.Warn("viewer: load state failed", slog.String("error", err.Error()))
		} else if ok {
			st = saved
		}
	}
	s.logger.Info("viewer: restoring state",
		slog.String("aircraft", st.Aircraft),
		slog.String("theater", st.Theater),
		slog.Bool("night_mode", st.NightMode))

	return s.do(ctx, func(c *kneeboard.Controller) {
		c.SetNightMode(st.NightMode)
		c.UpdateScenario(st.Aircraft, st.Theater)
	})
}

// State returns a snapshot of the controller state.
func (s *Service) State(ctx context.Context) (kneeboard.Snapshot, error) {
	var snap kneeboard.Snapshot
	err := s.do(ctx, func(c *kneeboard.Controller) {
		snap = c.Snapshot()
	})
	return snap, err
}

// Groups returns the groups of the active scenario.
func (s *Service) Groups(ctx context.Context) ([]kneeboard.PageGroup, error) {
	var groups []kneeboard.PageGroup
	err := s.do(ctx, func(c *kneeboard.Controller) {
		groups = c.Groups()
	})
	return groups, err
}

// UpdateScenario applies one scenario feed snapshot. Only aircraft and
// theater are used.
func (s *Service) UpdateScenario(ctx context.Context, u models.ScenarioUpdate) (bool, error) {
	var changed bool
	err := s.do(ctx, func(c *kneeboard.Controller) {
		changed = c.UpdateScenario(u.Aircraft, u.Theater)
	})
	return changed, err
}

// ToggleNightMode flips night mode and returns the new state.
func (s *Service) ToggleNightMode(ctx context.Context) (kneeboard.Snapshot, error) {
	var snap kneeboard.Snapshot
	err := s.do(ctx, func(c *kneeboard.Controller) {
		c.ToggleNightMode()
		snap = c.Snapshot()
	})
	return snap, err
}

// LoadGroup selects group/subgroup. An empty subgroup selects the pages
// without subgroup. The returned pages may be empty; the state is then
// unchanged.
func (s *Service) LoadGroup(ctx context.Context, group, subgroup string) ([]kneeboard.KneeboardPage, kneeboard.Snapshot, error) {
	var pages []kneeboard.KneeboardPage
	var snap kneeboard.Snapshot
	err := s.do(ctx, func(c *kneeboard.Controller) {
		pages = c.LoadGroup(group, kneeboard.SomeSubgroup(subgroup))
		snap = c.Snapshot()
	})
	return pages, snap, err
}

// Pages returns the pages of the current selection.
func (s *Service) Pages(ctx context.Context) ([]kneeboard.KneeboardPage, error) {
	var pages []kneeboard.KneeboardPage
	err := s.do(ctx, func(c *kneeboard.Controller) {
		pages = c.Pages()
	})
	if pages == nil {
		pages = []kneeboard.KneeboardPage{}
	}
	return pages, err
}

// Execute runs a named command and returns the resulting state.
func (s *Service) Execute(ctx context.Context, name string) (kneeboard.Snapshot, error) {
	var snap kneeboard.Snapshot
	var ok bool
	err := s.do(ctx, func(c *kneeboard.Controller) {
		ok = c.Execute(kneeboard.Command(name))
		snap = c.Snapshot()
	})
	if err != nil {
		return snap, err
	}
	if !ok {
		return snap, apperr.ErrUnknownCommand
	}
	return snap, nil
}

// Refresh clears every cache and rescans the kneeboard directory.
func (s *Service) Refresh(ctx context.Context) error {
	return s.do(ctx, func(c *kneeboard.Controller) {
		c.Refresh()
	})
}

// CurrentPage returns the current page or apperr.ErrNotFound.
func (s *Service) CurrentPage(ctx context.Context) (kneeboard.KneeboardPage, error) {
	var page kneeboard.KneeboardPage
	var ok bool
	err := s.do(ctx, func(c *kneeboard.Controller) {
		page, ok = c.CurrentPage()
	})
	if err != nil {
		return page, err
	}
	if !ok {
		return page, apperr.ErrNotFound
	}
	return page, nil
}

// Search looks up catalog pages of the active scenario by name fragment.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	if s.catalog == nil {
		return nil, errors.New("viewer: search needs a catalog")
	}
	snap, err := s.State(ctx)
	if err != nil {
		return nil, err
	}
	return s.catalog.Search(snap.Scenario.CacheKey(), query, limit)
}
