package handler

import (
	"net/http"

	"github.com/msomdec/photo-gallery/internal/capture"
	"github.com/msomdec/photo-gallery/internal/platform"
	"github.com/msomdec/photo-gallery/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, p platform.Platform, gallery *GalleryHandler, files *FileHandler, limiter *service.TokenBucket) {
	mux.HandleFunc("GET /healthz", HandleHealthz(p))
	mux.HandleFunc("GET /{$}", gallery.HandleHome)
	mux.HandleFunc("GET /photos", gallery.HandleList)
	mux.Handle("POST /photos", RateLimit(limiter, http.HandlerFunc(gallery.HandleCapture)))
	mux.Handle("POST /gallery/capture", RateLimit(limiter, http.HandlerFunc(gallery.HandleCapturePage)))

	mux.HandleFunc("GET "+capture.BlobPrefix+"{id}", files.HandleBlob)
	mux.HandleFunc("GET "+platform.FilePrefix+"/{path...}", files.HandleAppFile)
}
