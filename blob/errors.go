package blob

import "errors"

var (
	// ErrNotFound is returned when no blob exists at the requested path.
	ErrNotFound = errors.New("blob not found")

	// ErrInvalidPath is returned for empty paths or paths escaping the
	// store root.
	ErrInvalidPath = errors.New("invalid blob path")
)
