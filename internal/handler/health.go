package handler

import (
	"net/http"

	"github.com/msomdec/photo-gallery/internal/platform"
)

// HandleHealthz reports that the server is up and which context it runs in.
func HandleHealthz(p platform.Platform) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "platform": string(p)})
	}
}
