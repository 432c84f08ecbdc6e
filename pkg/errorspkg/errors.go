// Package errorspkg provides common app errors.
package errorspkg

import "errors"

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrStoreUnavailable indicates that the storage failed and nothing was committed.
	// The whole request is safe to retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
