package storage

import "errors"

// ErrTargetNotFound is returned by a backend constructor when the configured
// storage target does not exist.
var ErrTargetNotFound = errors.New("storage target does not exist")

// Store persists named byte blobs. Both artifacts of a receipt go through
// the same store.
type Store interface {
	Write(name string, data []byte) error
}
