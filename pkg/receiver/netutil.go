package receiver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

func hostPort(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}

// listen binds addr with address reuse. Port 0 asks the OS for a free port.
func listen(ctx context.Context, addr string) (*net.TCPListener, error) {
	lc := net.ListenConfig{Control: reuseAddr}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: bind %s: %w", ErrConnectionFailure, addr, err)
	}
	tcp, ok := ln.(*net.TCPListener)
	if !ok {
		_ = ln.Close()
		return nil, fmt.Errorf("%w: bind %s: not a TCP listener", ErrConnectionFailure, addr)
	}
	return tcp, nil
}

func boundPort(ln net.Listener) uint16 {
	if a, ok := ln.Addr().(*net.TCPAddr); ok {
		return uint16(a.Port)
	}
	return 0
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// acceptWithin waits at most timeout for one connection. It returns a nil
// conn and nil error when the wait timed out.
func acceptWithin(ln *net.TCPListener, timeout time.Duration) (net.Conn, error) {
	if timeout > 0 {
		if err := ln.SetDeadline(time.Now().Add(timeout)); err != nil {
			return nil, err
		}
	}
	conn, err := ln.Accept()
	if err != nil {
		if isTimeout(err) {
			return nil, nil
		}
		return nil, err
	}
	return conn, nil
}

// patientReader reads from a connection with a per-read deadline and retries
// on timeout. Reads are never cut short by the deadline itself; idle bounds
// the total time without progress when positive.
type patientReader struct {
	conn    net.Conn
	timeout time.Duration
	idle    time.Duration
	last    time.Time
}

func newPatientReader(conn net.Conn, timeout, idle time.Duration) *patientReader {
	return &patientReader{conn: conn, timeout: timeout, idle: idle, last: time.Now()}
}

func (p *patientReader) Read(b []byte) (int, error) {
	for {
		if p.timeout > 0 {
			if err := p.conn.SetReadDeadline(time.Now().Add(p.timeout)); err != nil {
				return 0, err
			}
		}
		n, err := p.conn.Read(b)
		if n > 0 {
			p.last = time.Now()
		}
		if err != nil && isTimeout(err) {
			if n > 0 {
				return n, nil
			}
			if p.idle > 0 && time.Since(p.last) >= p.idle {
				return 0, fmt.Errorf("%w: no data for %s", ErrConnectionFailure, p.idle)
			}
			continue
		}
		return n, err
	}
}
