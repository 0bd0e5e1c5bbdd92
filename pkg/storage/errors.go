package storage

import "errors"

// Sentinel errors for storage operations.
var (
	ErrNotFound     = errors.New("blob not found")
	ErrUploadFailed = errors.New("blob upload failed")
)
