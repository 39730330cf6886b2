package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/msomdec/photo-gallery/internal/capture"
	"github.com/msomdec/photo-gallery/internal/domain"
	"github.com/msomdec/photo-gallery/internal/repository/localfs"
)

// FileHandler serves temporary blob URLs and converted native file URIs.
type FileHandler struct {
	blobs *capture.Blobs
	files *localfs.FS // nil in the web context
}

// NewFileHandler creates a new FileHandler. files may be nil.
func NewFileHandler(blobs *capture.Blobs, files *localfs.FS) *FileHandler {
	return &FileHandler{blobs: blobs, files: files}
}

// HandleBlob serves a temporary capture. Expired blobs are 404.
// GET /blobs/{id}
func (h *FileHandler) HandleBlob(w http.ResponseWriter, r *http.Request) {
	blob, err := h.blobs.Get(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", blob.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(len(blob.Data)))
	w.Write(blob.Data)
}

// HandleAppFile serves a file from the data directory.
// GET /_app_file_/{path...}
func (h *FileHandler) HandleAppFile(w http.ResponseWriter, r *http.Request) {
	if h.files == nil {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	f, err := h.files.Open("/" + r.PathValue("path"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidInput) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		slog.Error("open app file", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", domain.PhotoContentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
