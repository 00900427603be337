//go:build !unix

package receiver

import "syscall"

// On Windows SO_REUSEADDR allows port hijacking, so the default is kept.
func reuseAddr(network, address string, c syscall.RawConn) error {
	return nil
}
