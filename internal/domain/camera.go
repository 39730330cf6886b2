package domain

import "context"

// ResultType selects how the camera hands back the captured image.
type ResultType string

const (
	ResultURI     ResultType = "uri"
	ResultBase64  ResultType = "base64"
	ResultDataURL ResultType = "dataUrl"
)

// CameraSource selects where the image comes from.
type CameraSource string

const (
	SourcePrompt CameraSource = "prompt"
	SourceCamera CameraSource = "camera"
	SourcePhotos CameraSource = "photos"
)

// CameraOptions configures a capture request.
type CameraOptions struct {
	ResultType ResultType
	Source     CameraSource
	Quality    int // 1..100
}

// DefaultCameraOptions is the configuration every gallery capture uses.
func DefaultCameraOptions() CameraOptions {
	return CameraOptions{ResultType: ResultURI, Source: SourceCamera, Quality: 100}
}

// Camera is the platform capture capability.
type Camera interface {
	GetPhoto(ctx context.Context, opts CameraOptions) (*TransientCapture, error)
}
