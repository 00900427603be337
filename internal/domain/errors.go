package domain

import "errors"

// Domain errors represent error conditions in the vcshare domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidImage is returned when a source image cannot be decoded or has zero area.
	ErrInvalidImage = errors.New("vcshare: invalid image")

	// ErrShapeMismatch is returned when shares to be stacked differ in size.
	ErrShapeMismatch = errors.New("vcshare: share shapes differ")

	// ErrMissingInput is returned when a share path is unreadable or no shares were given.
	ErrMissingInput = errors.New("vcshare: missing input")

	// ErrIOFailure is returned when a filesystem read or write fails.
	ErrIOFailure = errors.New("vcshare: io failure")

	// ErrConnectionFailure is returned for socket-level errors on either side.
	ErrConnectionFailure = errors.New("vcshare: connection failure")

	// ErrProtocolViolation is returned when a peer closes before the declared length is read.
	ErrProtocolViolation = errors.New("vcshare: protocol violation")

	// ErrInvalidShareCount is returned when fewer than two shares are requested.
	ErrInvalidShareCount = errors.New("vcshare: share count must be at least 2")

	// ErrNoTargets is returned when a distribution has no usable target.
	ErrNoTargets = errors.New("vcshare: no valid targets")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("vcshare: invalid configuration")

	// ErrAlreadyRunning is returned when Start is called on a running receiver.
	ErrAlreadyRunning = errors.New("vcshare: already running")

	// ErrNotRunning is returned when Stop is called on a stopped receiver.
	ErrNotRunning = errors.New("vcshare: not running")

	// ErrShutdownTimeout is returned when listeners do not exit in time.
	ErrShutdownTimeout = errors.New("vcshare: shutdown timeout")
)
