// Package wire implements the single-file framing used between senders and
// listeners.
//
// One frame per connection, big-endian:
//
//	uint32 nameLen | name (nameLen bytes, UTF-8) | uint64 size | payload (size bytes)
//
// There is no version field, checksum, compression or acknowledgement.
// A stream that ends before a declared length is fully read is reported as
// ErrProtocolViolation.
package wire
