package sender

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/bft-labs/vcshare/internal/domain"
	"github.com/bft-labs/vcshare/pkg/log"
	"github.com/bft-labs/vcshare/pkg/wire"
)

// DefaultTimeout bounds dialing and each write.
const DefaultTimeout = 5 * time.Second

// Errors returned by this package. Check them with errors.Is.
var (
	ErrIOFailure         = domain.ErrIOFailure
	ErrConnectionFailure = domain.ErrConnectionFailure
	ErrNoTargets         = domain.ErrNoTargets
)

// Dialer opens stream connections. *net.Dialer satisfies this interface.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Option configures a Sender.
type Option func(*Sender)

// WithTimeout sets the dial and per-write timeout. Default: 5 seconds.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDialer replaces the network dialer.
func WithDialer(d Dialer) Option {
	return func(s *Sender) { s.dialer = d }
}

// WithLogger sets the logger for per-file outcomes.
func WithLogger(l log.Logger) Option {
	return func(s *Sender) { s.logger = log.OrNoop(l) }
}

// Sender writes framed files to listeners.
type Sender struct {
	dialer  Dialer
	timeout time.Duration
	logger  log.Logger
}

// New creates a Sender.
func New(opts ...Option) *Sender {
	s := &Sender{timeout: DefaultTimeout, logger: log.NewNoopLogger()}
	for _, opt := range opts {
		opt(s)
	}
	if s.dialer == nil {
		s.dialer = &net.Dialer{Timeout: s.timeout}
	}
	return s
}

// SendFile sends the file at path to addr with a default Sender.
func SendFile(ctx context.Context, path, addr string, timeout time.Duration) error {
	return New(WithTimeout(timeout)).SendFile(ctx, path, addr)
}

// SendFile opens one connection to addr, writes the file at path as a single
// frame named after its base name, and closes the connection.
func (s *Sender) SendFile(ctx context.Context, path, addr string) error {
	err := s.sendFile(ctx, path, addr)
	if err != nil {
		s.logger.Error("send failed", log.String("file", path), log.String("addr", addr), log.Err(err))
		return err
	}
	s.logger.Info("sent", log.String("file", path), log.String("addr", addr))
	return nil
}

func (s *Sender) sendFile(ctx context.Context, path, addr string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrIOFailure, path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrIOFailure, path, err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	conn, err := s.dialer.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", ErrConnectionFailure, addr, err)
	}
	defer conn.Close()

	w := &deadlineWriter{conn: conn, timeout: s.timeout}
	h := wire.Header{Name: filepath.Base(path), Size: uint64(info.Size())}
	if err := wire.WriteHeader(w, h); err != nil {
		return fmt.Errorf("%w: write header to %s: %w", ErrConnectionFailure, addr, err)
	}
	if _, err := wire.CopyPayload(w, f, h.Size); err != nil {
		return fmt.Errorf("%w: write payload to %s: %w", ErrConnectionFailure, addr, err)
	}
	if err := conn.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrConnectionFailure, addr, err)
	}
	return nil
}

// deadlineWriter refreshes the write deadline before every chunk so a
// stalled peer fails the send instead of hanging it.
type deadlineWriter struct {
	conn    net.Conn
	timeout time.Duration
}

func (d *deadlineWriter) Write(p []byte) (int, error) {
	if err := d.conn.SetWriteDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, err
	}
	return d.conn.Write(p)
}
