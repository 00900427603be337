package receiver

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/bft-labs/vcshare/pkg/log"
	"github.com/bft-labs/vcshare/pkg/wire"
)

// Listener defaults.
const (
	DefaultAcceptTimeout  = time.Second
	DefaultReadTimeout    = time.Second
	DefaultReconstructOut = "reconstruction.png"
)

// ListenerConfig configures one Listener.
type ListenerConfig struct {
	Host string
	// Port 0 binds an OS-assigned port.
	Port    uint16
	DestDir string
	// ReconstructOut is the reconstruction file name, relative to DestDir
	// unless absolute.
	ReconstructOut string
	// StopFile stops the group when it exists. Empty disables the check.
	StopFile      string
	AcceptTimeout time.Duration
	ReadTimeout   time.Duration
	// IdleTimeout drops a connection that sends nothing for this long.
	// Zero waits forever.
	IdleTimeout time.Duration
	// Exclude names further files in DestDir that reconstruction skips.
	Exclude []string
}

func (c *ListenerConfig) applyDefaults() {
	if c.AcceptTimeout <= 0 {
		c.AcceptTimeout = DefaultAcceptTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.ReconstructOut == "" {
		c.ReconstructOut = DefaultReconstructOut
	}
}

// Listener accepts framed files on one port and stores them in DestDir.
// Connections are served one at a time.
type Listener struct {
	cfg         ListenerConfig
	coord       *Coordinator
	store       store
	logger      log.Logger
	events      emitter
	reconstruct ReconstructFunc
	stats       listenerStats
	ln          *net.TCPListener
}

// NewListener creates a Listener reporting to coord. A nil coord gives the
// listener a private Coordinator without limits.
func NewListener(cfg ListenerConfig, coord *Coordinator, opts ...Option) *Listener {
	cfg.applyDefaults()
	if coord == nil {
		coord = NewCoordinator(CoordinatorConfig{})
	}
	o := buildOptions(opts)
	return &Listener{
		cfg:         cfg,
		coord:       coord,
		store:       store{dir: cfg.DestDir},
		logger:      o.logger,
		events:      emitter{id: o.receiverID, handler: o.eventHandler},
		reconstruct: o.reconstruct,
	}
}

// Bind opens the listening socket and publishes the bound port.
func (l *Listener) Bind(ctx context.Context) error {
	ln, err := listen(ctx, hostPort(l.cfg.Host, l.cfg.Port))
	if err != nil {
		l.logger.Error("bind failed", log.String("host", l.cfg.Host), log.Uint16("port", l.cfg.Port), log.Err(err))
		return err
	}
	l.ln = ln
	port := boundPort(ln)
	l.stats.port.Store(uint32(port))
	l.logger = l.logger.With(log.Uint16("port", port))
	l.coord.PublishPort(port)
	l.logger.Info("listening", log.String("host", l.cfg.Host), log.String("dest", l.cfg.DestDir))
	return nil
}

// Run binds and serves until a stop condition holds.
func (l *Listener) Run(ctx context.Context) error {
	if err := l.Bind(ctx); err != nil {
		return err
	}
	return l.Serve(ctx)
}

// Serve runs the accept loop on a bound Listener and closes the socket on
// return. Stop conditions are checked before every accept and after every
// connection.
func (l *Listener) Serve(ctx context.Context) error {
	if l.ln == nil {
		return fmt.Errorf("%w: listener not bound", ErrNotRunning)
	}
	defer l.ln.Close()

	for {
		if reason, stop := l.shouldExit(ctx); stop {
			l.logger.Info("listener exiting", log.String("reason", reason), log.Uint("count", l.coord.Received()))
			return nil
		}

		conn, err := acceptWithin(l.ln, l.cfg.AcceptTimeout)
		if err != nil {
			if reason, stop := l.shouldExit(ctx); stop {
				l.logger.Info("listener exiting", log.String("reason", reason))
				return nil
			}
			l.logger.Error("accept failed", log.Err(err))
			return fmt.Errorf("%w: accept on port %d: %w", ErrConnectionFailure, l.Port(), err)
		}
		if conn == nil {
			continue
		}
		l.handle(conn)
	}
}

// Close releases the socket of a bound Listener that will not be served.
func (l *Listener) Close() error {
	if l.ln == nil {
		return nil
	}
	return l.ln.Close()
}

// Port returns the bound port, or 0 before Bind.
func (l *Listener) Port() uint16 {
	return uint16(l.stats.port.Load())
}

// Stats returns the listener counters.
func (l *Listener) Stats() Stats {
	return l.stats.snapshot()
}

func (l *Listener) shouldExit(ctx context.Context) (string, bool) {
	if ctx.Err() != nil {
		return "context cancelled", true
	}
	if l.cfg.StopFile != "" && fileExists(l.cfg.StopFile) {
		l.coord.RequestStop()
		return "stop file present", true
	}
	return l.coord.ShouldExit()
}

func (l *Listener) handle(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	if !l.coord.Reserve() {
		l.stats.rejected.Inc()
		l.logger.Warn("connection rejected, group full or stopping", log.String("remote", remote))
		return
	}

	path, size, err := l.receive(conn)
	if err != nil {
		l.coord.Abort()
		l.stats.failures.Inc()
		l.logger.Error("receive failed", log.String("remote", remote), log.Err(err))
		return
	}

	count, claimed := l.coord.Commit()
	l.stats.files.Inc()
	l.stats.bytes.Add(size)
	l.logger.Info("file received",
		log.String("file", path),
		log.Uint64("bytes", size),
		log.Uint("count", count),
		log.String("remote", remote),
	)
	l.events.fileReceived(FileReceivedEvent{
		Port:   l.Port(),
		Path:   path,
		Bytes:  size,
		Count:  count,
		Remote: remote,
	})

	if claimed {
		l.reconstructShares()
	}
}

// receive decodes one frame into a temp file and moves it to its final name.
// Nothing is left in DestDir on failure.
func (l *Listener) receive(conn net.Conn) (string, uint64, error) {
	r := newPatientReader(conn, l.cfg.ReadTimeout, l.cfg.IdleTimeout)
	h, err := wire.ReadHeader(r)
	if err != nil {
		return "", 0, err
	}

	tmp, err := l.store.createTemp()
	if err != nil {
		return "", 0, err
	}
	_, err = wire.CopyPayload(fileWriter{f: tmp}, r, h.Size)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: close %s: %w", ErrIOFailure, tmp.Name(), cerr)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, err
	}

	path, err := l.store.commit(tmp.Name(), sanitizeName(h.Name))
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", 0, err
	}
	return path, h.Size, nil
}

func (l *Listener) reconstructOutput() string {
	if filepath.IsAbs(l.cfg.ReconstructOut) {
		return l.cfg.ReconstructOut
	}
	return filepath.Join(l.cfg.DestDir, l.cfg.ReconstructOut)
}

func (l *Listener) reconstructShares() {
	out := l.reconstructOutput()
	start := time.Now()
	exclude := append([]string{l.cfg.ReconstructOut}, l.cfg.Exclude...)
	inputs, err := l.store.shareFiles(exclude...)
	if err == nil {
		err = l.reconstruct(inputs, out)
	}
	elapsed := time.Since(start)

	if err != nil {
		l.logger.Error("reconstruction failed", log.String("output", out), log.Err(err))
	} else {
		l.logger.Info("reconstruction written",
			log.String("output", out),
			log.Int("shares", len(inputs)),
			log.Duration("duration", elapsed),
		)
	}
	l.events.reconstruction(ReconstructionEvent{
		Output:   out,
		Inputs:   inputs,
		Duration: elapsed,
		Err:      err,
	})
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
