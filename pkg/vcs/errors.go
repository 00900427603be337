package vcs

import "github.com/bft-labs/vcshare/internal/domain"

// Errors returned by this package. Check them with errors.Is.
var (
	ErrInvalidImage      = domain.ErrInvalidImage
	ErrShapeMismatch     = domain.ErrShapeMismatch
	ErrMissingInput      = domain.ErrMissingInput
	ErrIOFailure         = domain.ErrIOFailure
	ErrInvalidShareCount = domain.ErrInvalidShareCount
)

// Grid is the binary ink/background raster produced by Binarize.
type Grid = domain.Grid

// Pattern is the 2-bit micro-block of one source pixel in one share.
type Pattern = domain.Pattern
