package handler

import "github.com/msomdec/photo-gallery/internal/domain"

// CaptureResponse is the JSON body returned after a capture.
type CaptureResponse struct {
	Photo   domain.Photo `json:"photo"`
	Version uint64       `json:"version"`
	// IndexSynced is true only when the caller asked to wait for the index write.
	IndexSynced bool `json:"indexSynced"`
}
