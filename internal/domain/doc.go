// Package domain contains the core entities and error taxonomy of vcshare.
//
// It has no dependencies on infrastructure concerns (network, file system,
// logging) and contains only pure data and invariants.
//
// # Entities
//
//   - [Grid]: a binary ink/no-ink raster, row-major
//   - [Pattern]: the 2-bit micro-block assigned to one source pixel in one share
//   - [Header]: the name/length prefix of one transferred file
//
// # Errors
//
// Every failure surfaced by the public packages wraps one of the sentinel
// errors in errors.go, so callers classify failures with errors.Is.
package domain
