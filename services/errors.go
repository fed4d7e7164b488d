package services

import "errors"

// Failure classes the handlers branch on. Provider and storage errors wrap
// the underlying cause; validation and stale-session are plain sentinels.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrStaleSession = errors.New("stale session")
	ErrProvider     = errors.New("provider failure")
)
