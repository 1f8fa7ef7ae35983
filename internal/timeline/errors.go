package timeline

import "errors"

// Sentinel errors for reference misses. Callers that tolerate async races
// (an operation arriving after its target was removed) match these with
// errors.Is and downgrade them to logged no-ops; they are never surfaced
// to interactive callers.
var (
	ErrClipNotFound  = errors.New("clip not found")
	ErrTrackNotFound = errors.New("track not found")
	ErrClipExists    = errors.New("clip id already present")
	ErrTrackExists   = errors.New("track id already present")
)

// IsMissingRef reports whether err is one of the reference-miss sentinels.
func IsMissingRef(err error) bool {
	return errors.Is(err, ErrClipNotFound) || errors.Is(err, ErrTrackNotFound)
}
