package archive

import "errors"

var (
	// ErrUnsupported is returned when a capability method is called on a
	// platform that doesn't support it (spec §4.1.1).
	ErrUnsupported = errors.New("archive: capability not supported for this platform")

	// ErrNotFound is returned by CachedOnly reads that find no prior
	// fetch — distinct from a network error (spec §4.1.3).
	ErrNotFound = errors.New("archive: no cached record for this source/content type")
)
