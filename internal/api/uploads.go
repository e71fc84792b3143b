package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/starford/kneeview/internal/storage"
)

const maxUploadBytes = 50 << 20 // 50 MB

// UploadPage handles POST /api/pages (multipart/form-data, field "file").
// The optional form field "name" overrides the uploaded file name and may
// carry one aircraft directory. The kneeboard is refreshed afterwards.
func (h *Handler) UploadPage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	rel, err := storage.PageName(name)
	if err != nil {
		writeError(w, "upload page", err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	if err := h.store.Write(rel, data); err != nil {
		writeError(w, "upload page", err)
		return
	}
	slog.Info("api: page uploaded",
		slog.String("path", rel),
		slog.String("size", humanize.Bytes(uint64(len(data)))))

	if err := h.svc.Refresh(r.Context()); err != nil {
		writeError(w, "refresh", err)
		return
	}
	writeJSON(w, http.StatusCreated, UploadResponse{Path: rel, Size: int64(len(data))})
}
