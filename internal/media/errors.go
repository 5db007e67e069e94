package media

import "errors"

var (
	// ErrInvalidFileType indicates an upload whose type does not match the field.
	ErrInvalidFileType = errors.New("invalid file type")
	// ErrStorageUnavailable indicates no object store is configured.
	ErrStorageUnavailable = errors.New("media storage unavailable")
	// ErrReaperClosed is returned when scheduling after Shutdown.
	ErrReaperClosed = errors.New("asset reaper closed")
	// ErrReaperBusy is returned when the reaper queue is full.
	ErrReaperBusy = errors.New("asset reaper queue full")
)
