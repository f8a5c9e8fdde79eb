package store

import "errors"

// ErrNotFound is returned when a referenced entity does not exist.
// Callers must surface it explicitly, never fabricate a default.
var ErrNotFound = errors.New("not found")
