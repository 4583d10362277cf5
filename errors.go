package coursetex

import (
	"errors"

	"github.com/texforge/coursetex/internal/imaging"
)

// Sentinel errors for library operations. The image pipeline errors are
// re-exported so callers can match them with errors.Is without importing
// internal packages.
var (
	ErrNotSection   = errors.New("payload is not a section component list")
	ErrNoImageRef   = errors.New("component carries no image reference")
	ErrImageFetch   = imaging.ErrImageFetch
	ErrEmptyBody    = imaging.ErrEmptyBody
	ErrBadStatus    = imaging.ErrBadStatus
	ErrNoImagesRoot = imaging.ErrNoOutputRoot
)
