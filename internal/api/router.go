package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/kneeview/internal/storage"
	"github.com/starford/kneeview/internal/viewer"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// store serves page images and accepts uploads.
func NewRouter(svc *viewer.Service, store storage.Provider, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, store)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Viewer state.
	r.Get("/state", h.State)
	r.Post("/scenario", h.UpdateScenario)
	r.Post("/night-mode/toggle", h.ToggleNightMode)

	// Groups and pages.
	r.Get("/groups", h.Groups)
	r.Post("/groups/load", h.LoadGroup)
	r.Get("/pages", h.Pages)
	r.Post("/pages", h.UploadPage)
	r.Post("/pages/next", h.NextPage)
	r.Post("/pages/previous", h.PreviousPage)
	r.Get("/pages/current", h.CurrentPage)
	r.Get("/pages/current/image", h.CurrentPageImage)

	// Commands.
	r.Get("/commands", h.ListCommands)
	r.Post("/commands/{name}", h.RunCommand)
	r.Post("/cache/clear", h.ClearCache)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
