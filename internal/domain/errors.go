package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")

	ErrCaptureDenied          = errors.New("capture denied")
	ErrCaptureCancelled       = errors.New("capture cancelled")
	ErrPersistenceWriteFailed = errors.New("persistence write failed")
	ErrFetchFailed            = errors.New("fetch failed")
	ErrDurableReadFailed      = errors.New("durable read failed")
	ErrIndexParseFailed       = errors.New("index parse failed")
)
