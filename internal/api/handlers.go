package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/kneeview/internal/checksum"
	"github.com/starford/kneeview/internal/kneeboard"
	"github.com/starford/kneeview/internal/models"
	"github.com/starford/kneeview/internal/storage"
	"github.com/starford/kneeview/internal/viewer"
)

// Handler holds API route handlers.
type Handler struct {
	svc   *viewer.Service
	store storage.Provider
}

// NewHandler creates a new Handler.
func NewHandler(svc *viewer.Service, store storage.Provider) *Handler {
	return &Handler{svc: svc, store: store}
}

// State handles GET /api/state.
//
//	@Summary		Current viewer state
//	@Tags			viewer
//	@Produce		json
//	@Success		200	{object}	kneeboard.Snapshot
//	@Security		BearerAuth
//	@Router			/state [get]
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.State(r.Context())
	if err != nil {
		writeError(w, "state", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// UpdateScenario handles POST /api/scenario.
//
//	@Summary		Apply a scenario feed snapshot
//	@Tags			viewer
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ScenarioRequest	true	"Scenario snapshot"
//	@Success		200		{object}	ScenarioResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/scenario [post]
func (h *Handler) UpdateScenario(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if strings.TrimSpace(req.Aircraft) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("aircraft is required"))
		return
	}
	changed, err := h.svc.UpdateScenario(r.Context(), models.ScenarioUpdate{
		Aircraft:  req.Aircraft,
		Theater:   req.Theater,
		Coalition: req.Coalition,
		Mission:   req.Mission,
	})
	if err != nil {
		writeError(w, "update scenario", err)
		return
	}
	snap, err := h.svc.State(r.Context())
	if err != nil {
		writeError(w, "state", err)
		return
	}
	writeJSON(w, http.StatusOK, ScenarioResponse{Changed: changed, State: snap})
}

// ToggleNightMode handles POST /api/night-mode/toggle.
func (h *Handler) ToggleNightMode(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.ToggleNightMode(r.Context())
	if err != nil {
		writeError(w, "toggle night mode", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Groups handles GET /api/groups.
//
//	@Summary		Groups of the active scenario
//	@Tags			pages
//	@Produce		json
//	@Success		200	{object}	GroupsResponse
//	@Security		BearerAuth
//	@Router			/groups [get]
func (h *Handler) Groups(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.State(r.Context())
	if err != nil {
		writeError(w, "state", err)
		return
	}
	groups, err := h.svc.Groups(r.Context())
	if err != nil {
		writeError(w, "list groups", err)
		return
	}
	writeJSON(w, http.StatusOK, GroupsResponse{Scenario: snap.Scenario, Groups: groups})
}

// LoadGroup handles POST /api/groups/load.
//
//	@Summary		Select a group and optional subgroup
//	@Tags			pages
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LoadGroupRequest	true	"Selection"
//	@Success		200		{object}	LoadGroupResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups/load [post]
func (h *Handler) LoadGroup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req LoadGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Group == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("group is required"))
		return
	}
	pages, snap, err := h.svc.LoadGroup(r.Context(), req.Group, req.Subgroup)
	if err != nil {
		writeError(w, "load group", err)
		return
	}
	writeJSON(w, http.StatusOK, LoadGroupResponse{Pages: pages, State: snap})
}

// Pages handles GET /api/pages.
func (h *Handler) Pages(w http.ResponseWriter, r *http.Request) {
	pages, err := h.svc.Pages(r.Context())
	if err != nil {
		writeError(w, "list pages", err)
		return
	}
	writeJSON(w, http.StatusOK, PagesResponse{Pages: pages})
}

// NextPage handles POST /api/pages/next.
func (h *Handler) NextPage(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, string(kneeboard.CmdNextPage))
}

// PreviousPage handles POST /api/pages/previous.
func (h *Handler) PreviousPage(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, string(kneeboard.CmdPreviousPage))
}

// RunCommand handles POST /api/commands/{name}.
//
//	@Summary		Run a named viewer command
//	@Tags			commands
//	@Produce		json
//	@Param			name	path		string	true	"Command name"
//	@Success		200		{object}	kneeboard.Snapshot
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/commands/{name} [post]
func (h *Handler) RunCommand(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, chi.URLParam(r, "name"))
}

func (h *Handler) execute(w http.ResponseWriter, r *http.Request, name string) {
	snap, err := h.svc.Execute(r.Context(), name)
	if err != nil {
		writeError(w, "command "+name, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ListCommands handles GET /api/commands.
func (h *Handler) ListCommands(w http.ResponseWriter, r *http.Request) {
	cmds := kneeboard.Commands()
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = string(c)
	}
	writeJSON(w, http.StatusOK, CommandsResponse{Commands: names})
}

// ClearCache handles POST /api/cache/clear.
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Refresh(r.Context()); err != nil {
		writeError(w, "clear cache", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CurrentPage handles GET /api/pages/current.
func (h *Handler) CurrentPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.CurrentPage(r.Context())
	if err != nil {
		writeError(w, "current page", err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// CurrentPageImage handles GET /api/pages/current/image. The ETag is the
// SHA-256 of the file; a matching If-None-Match yields 304.
//
//	@Summary		Image bytes of the current page
//	@Tags			pages
//	@Produce		png
//	@Success		200	{file}		binary
//	@Success		304	"Not modified"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/current/image [get]
func (h *Handler) CurrentPageImage(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.CurrentPage(r.Context())
	if err != nil {
		writeError(w, "current page", err)
		return
	}
	rel, err := filepath.Rel(h.store.Root(), page.Path)
	if err != nil {
		writeError(w, "current page image", err)
		return
	}
	data, err := h.store.Read(rel)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody("page file missing"))
			return
		}
		writeError(w, "current page image", err)
		return
	}

	etag := checksum.ETag(data)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if checksum.Match(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Warn("write page image failed", slog.String("path", page.Path), slog.String("error", err.Error()))
	}
}

// Search handles GET /api/search.
//
//	@Summary		Search the page catalog of the active scenario
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Name fragment"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
