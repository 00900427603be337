package receiver

import "github.com/bft-labs/vcshare/internal/domain"

// Errors returned by this package. Check them with errors.Is.
var (
	ErrIOFailure         = domain.ErrIOFailure
	ErrConnectionFailure = domain.ErrConnectionFailure
	ErrProtocolViolation = domain.ErrProtocolViolation
	ErrInvalidConfig     = domain.ErrInvalidConfig
	ErrNotRunning        = domain.ErrNotRunning
	ErrShutdownTimeout   = domain.ErrShutdownTimeout
)
