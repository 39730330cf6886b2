package domain

import "context"

// PhotoContentType is the only image encoding the gallery stores.
const PhotoContentType = "image/jpeg"

// PhotoExtension is appended to every durable photo filename.
const PhotoExtension = ".jpeg"

// Photo is one saved photo. The JSON shape is the persisted index layout
// and must not change.
type Photo struct {
	Filepath    string `json:"filepath"`    // Durable storage key, URI or filename
	WebviewPath string `json:"webviewPath"` // URL or data URI a display surface can load
}

// TransientCapture references a just-captured image before it is saved.
// Exactly one of Path (hybrid) or WebPath (web) is meaningful for
// persistence; cameras may fill both.
type TransientCapture struct {
	Path    string // Native file path
	WebPath string // Temporary URL, may expire
	Format  string // Content type hint, always PhotoContentType
}

// Blob is a fetched binary payload.
type Blob struct {
	ContentType string
	Data        []byte
}

// PhotoPersistence turns captures into durable records and prepares saved
// records for display. One variant exists per runtime context.
type PhotoPersistence interface {
	Save(ctx context.Context, capture *TransientCapture) (Photo, error)
	// Restore re-derives a displayable WebviewPath for a record read back
	// from the index.
	Restore(ctx context.Context, photo Photo) (Photo, error)
}
