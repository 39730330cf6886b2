package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/starfederation/datastar-go/datastar"

	"github.com/msomdec/photo-gallery/internal/capture"
	"github.com/msomdec/photo-gallery/internal/domain"
	"github.com/msomdec/photo-gallery/internal/service"
	"github.com/msomdec/photo-gallery/internal/view"
)

const maxUploadSize = 25 << 20 // 25MB

// GalleryHandler serves the gallery and runs captures from uploaded shots.
type GalleryHandler struct {
	gallery *service.GalleryService
	cameras *capture.Adapter
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(gallery *service.GalleryService, cameras *capture.Adapter) *GalleryHandler {
	return &GalleryHandler{gallery: gallery, cameras: cameras}
}

// HandleHome renders the gallery page.
// GET /
func (h *GalleryHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	photos, _ := h.gallery.Photos()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.GalleryPage(photos).Render(r.Context(), w); err != nil {
		slog.Error("render gallery", "error", err)
	}
}

// HandleList returns the collection in its persisted JSON shape.
// GET /photos
func (h *GalleryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	photos, version := h.gallery.Photos()
	w.Header().Set("X-Collection-Version", strconv.FormatUint(version, 10))
	writeJSON(w, http.StatusOK, photos)
}

// HandleCapture saves the uploaded "image" as a new photo. With ?wait=1 the
// response waits for the index write and reports its failure.
// POST /photos
func (h *GalleryHandler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	photo, write, err := h.capture(w, r)
	if err != nil {
		status, msg := captureStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("capture photo", "error", err)
		}
		writeError(w, status, msg)
		return
	}

	resp := CaptureResponse{Photo: photo, Version: write.Version()}
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		if err := write.Wait(r.Context()); err != nil {
			slog.Error("photo index write", "error", err)
			writeError(w, http.StatusInternalServerError, "photo saved but index write failed")
			return
		}
		resp.IndexSynced = true
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleCapturePage runs a capture from the gallery page and patches the
// photo grid over SSE.
// POST /gallery/capture
func (h *GalleryHandler) HandleCapturePage(w http.ResponseWriter, r *http.Request) {
	_, _, err := h.capture(w, r)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		status, msg := captureStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("capture photo", "error", err)
		}
		sse.PatchElementTempl(view.CaptureError(msg),
			datastar.WithSelectorID("capture-error"),
			datastar.WithModeInner(),
		)
		return
	}

	photos, _ := h.gallery.Photos()
	sse.PatchElementTempl(view.CaptureError(""),
		datastar.WithSelectorID("capture-error"),
		datastar.WithModeInner(),
	)
	sse.PatchElementTempl(view.PhotoGrid(photos),
		datastar.WithSelectorID("photo-grid"),
		datastar.WithModeInner(),
	)
}

func (h *GalleryHandler) capture(w http.ResponseWriter, r *http.Request) (domain.Photo, *service.IndexWrite, error) {
	shot, err := readShot(w, r)
	if err != nil {
		return domain.Photo{}, nil, err
	}
	return h.gallery.AddNewToGallery(r.Context(), h.cameras.Camera(shot))
}

// readShot pulls the uploaded image. No file means the user dismissed the
// camera.
func readShot(w http.ResponseWriter, r *http.Request) (capture.Shot, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.Join(domain.ErrInvalidInput, errors.New("image exceeds 25MB"))
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, domain.ErrCaptureCancelled
		}
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, domain.ErrCaptureCancelled
		}
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.Join(domain.ErrInvalidInput, err)
	}
	return capture.Shot(data), nil
}

func captureStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrCaptureCancelled):
		return http.StatusBadRequest, "capture cancelled"
	case errors.Is(err, domain.ErrCaptureDenied):
		return http.StatusForbidden, "camera unavailable"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid image"
	case errors.Is(err, domain.ErrFetchFailed):
		return http.StatusBadGateway, "could not fetch captured image"
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout, "request cancelled"
	}
	return http.StatusInternalServerError, "could not save photo"
}
