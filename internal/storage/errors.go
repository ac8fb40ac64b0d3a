package storage

import "errors"

// ErrNotFound is returned when a requested key does not exist.
var ErrNotFound = errors.New("not found")

// ErrCorrupt is returned when a stored value is not valid JSON for the
// requested type.
var ErrCorrupt = errors.New("corrupt value")
