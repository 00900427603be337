package receiver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/vcshare/pkg/lifecycle"
	"github.com/bft-labs/vcshare/pkg/log"
	"github.com/bft-labs/vcshare/pkg/state"
)

// DefaultPortWait bounds WaitForPorts.
const DefaultPortWait = 5 * time.Second

// Config configures a receive group.
type Config struct {
	Host string
	// Ports are bound one listener each. Ignored when Scramble > 0.
	Ports []uint16
	// Scramble binds this many OS-assigned ports instead of Ports.
	Scramble int
	DestDir  string

	// MaxFiles stops the group after this many stored files. Zero is
	// unlimited.
	MaxFiles uint
	// ReconstructAfter triggers one reconstruction when the group count
	// reaches it. Zero disables reconstruction.
	ReconstructAfter uint
	ReconstructOut   string

	// StopFile stops the group when it exists.
	StopFile string
	// ControlAddr is the host:port of the control channel. Empty disables it.
	ControlAddr string
	// StatusFile receives a JSON status snapshot after every change.
	StatusFile string

	AcceptTimeout time.Duration
	ReadTimeout   time.Duration
	IdleTimeout   time.Duration
	PortWait      time.Duration
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.DestDir == "" {
		return fmt.Errorf("%w: destination directory is required", ErrInvalidConfig)
	}
	if c.Scramble < 0 {
		return fmt.Errorf("%w: scramble count %d is negative", ErrInvalidConfig, c.Scramble)
	}
	if c.Scramble == 0 && len(c.Ports) == 0 {
		return fmt.Errorf("%w: no ports to listen on", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.AcceptTimeout <= 0 {
		c.AcceptTimeout = DefaultAcceptTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeout
	}
	if c.PortWait <= 0 {
		c.PortWait = DefaultPortWait
	}
	if c.ReconstructOut == "" {
		c.ReconstructOut = DefaultReconstructOut
	}
}

func (c Config) listenPorts() []uint16 {
	if c.Scramble > 0 {
		return make([]uint16, c.Scramble)
	}
	return c.Ports
}

// Receiver is a running receive group.
type Receiver struct {
	id              string
	cfg             Config
	coord           *Coordinator
	lifecycle       *lifecycle.Manager
	listeners       []*Listener
	control         *control
	logger          log.Logger
	status          state.Repository
	shutdownTimeout time.Duration
	cancel          context.CancelFunc
	done            chan struct{}

	errMu sync.Mutex
	errs  []error
}

// StartReceiver creates the destination directory, binds every listener
// and the optional control channel, and starts serving. Any bind failure
// closes what was bound and is returned.
func StartReceiver(ctx context.Context, cfg Config, opts ...Option) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	o := buildOptions(opts)

	if err := os.MkdirAll(cfg.DestDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrIOFailure, cfg.DestDir, err)
	}

	if o.receiverID == "" {
		o.receiverID = uuid.NewString()[:8]
	}
	coord := o.coordinator
	if coord == nil {
		coord = NewCoordinator(CoordinatorConfig{
			MaxFiles:         cfg.MaxFiles,
			ReconstructAfter: cfg.ReconstructAfter,
		})
	}
	status := o.status
	if status == nil && cfg.StatusFile != "" {
		status = state.NewFileRepository(cfg.StatusFile)
	}
	logger := o.logger.With(log.String("receiver", o.receiverID))

	r := &Receiver{
		id:              o.receiverID,
		cfg:             cfg,
		coord:           coord,
		logger:          logger,
		status:          status,
		shutdownTimeout: o.shutdownTimeout,
		done:            make(chan struct{}),
	}
	r.lifecycle = lifecycle.NewManager(logger, emitter{id: r.id, handler: o.eventHandler})
	if err := r.lifecycle.TransitionTo(lifecycle.StateStarting, "StartReceiver() called"); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	lopts := []Option{
		WithLogger(logger),
		WithEventHandler(o.eventHandler),
		WithReconstructFunc(o.reconstruct),
		WithReceiverID(r.id),
	}
	exclude := r.statusNames()
	for _, port := range cfg.listenPorts() {
		l := NewListener(ListenerConfig{
			Host:           cfg.Host,
			Port:           port,
			DestDir:        cfg.DestDir,
			ReconstructOut: cfg.ReconstructOut,
			StopFile:       cfg.StopFile,
			AcceptTimeout:  cfg.AcceptTimeout,
			ReadTimeout:    cfg.ReadTimeout,
			IdleTimeout:    cfg.IdleTimeout,
			Exclude:        exclude,
		}, coord, lopts...)
		if err := l.Bind(runCtx); err != nil {
			r.abortStart(err)
			return nil, err
		}
		r.listeners = append(r.listeners, l)
	}
	if cfg.ControlAddr != "" {
		c, err := bindControl(runCtx, cfg.ControlAddr, coord, logger, cfg.AcceptTimeout)
		if err != nil {
			r.abortStart(err)
			return nil, err
		}
		r.control = c
	}

	var serving sync.WaitGroup
	for _, l := range r.listeners {
		serving.Add(1)
		r.lifecycle.Go(fmt.Sprintf("listener-%d", l.Port()), func() {
			defer serving.Done()
			if err := l.Serve(runCtx); err != nil {
				r.recordErr(err)
			}
		})
	}
	if r.control != nil {
		r.lifecycle.Go("control", func() {
			if err := r.control.serve(runCtx); err != nil {
				r.recordErr(err)
			}
		})
	}
	if cfg.StopFile != "" {
		r.lifecycle.Go("stop-file-watcher", func() {
			watchStopFile(runCtx, cfg.StopFile, coord, logger)
		})
	}
	if r.status != nil {
		r.lifecycle.Go("status", func() {
			r.persistStatus(runCtx)
		})
	}

	if err := r.lifecycle.TransitionTo(lifecycle.StateRunning, "listeners bound"); err != nil {
		r.logger.Warn("unexpected state transition failure", log.Err(err))
	}
	go r.supervise(&serving)
	return r, nil
}

// statusNames lists the status file and its temp file when they live in the
// destination directory, so reconstruction never reads them as shares.
func (r *Receiver) statusNames() []string {
	if r.cfg.StatusFile == "" {
		return nil
	}
	dest, err1 := filepath.Abs(r.cfg.DestDir)
	status, err2 := filepath.Abs(r.cfg.StatusFile)
	if err1 != nil || err2 != nil || filepath.Dir(status) != dest {
		return nil
	}
	base := filepath.Base(status)
	return []string{base, base + ".tmp"}
}

func (r *Receiver) abortStart(err error) {
	for _, l := range r.listeners {
		_ = l.Close()
	}
	r.cancel()
	_ = r.lifecycle.TransitionTo(lifecycle.StateCrashed, err.Error())
	close(r.done)
}

// supervise finishes the group once every listener has returned.
func (r *Receiver) supervise(serving *sync.WaitGroup) {
	serving.Wait()
	r.cancel()
	r.lifecycle.Wait()

	r.saveStatus(context.Background(), true)

	_ = r.lifecycle.TransitionTo(lifecycle.StateStopping, "listeners exited")
	final := lifecycle.StateStopped
	if r.err() != nil {
		final = lifecycle.StateCrashed
	}
	_ = r.lifecycle.TransitionTo(final, "receive group finished")
	r.logger.Info("receive group finished", log.Uint("count", r.coord.Received()))
	close(r.done)
}

func (r *Receiver) persistStatus(ctx context.Context) {
	for {
		changed := r.coord.Changed()
		r.saveStatus(ctx, false)
		select {
		case <-ctx.Done():
			return
		case <-changed:
		}
	}
}

func (r *Receiver) saveStatus(ctx context.Context, finished bool) {
	if r.status == nil {
		return
	}
	snap := r.coord.Snapshot()
	st := state.Status{
		ReceiverID:       r.id,
		DestDir:          r.cfg.DestDir,
		Ports:            snap.Ports,
		Received:         snap.Received,
		MaxFiles:         snap.MaxFiles,
		ReconstructAfter: snap.ReconstructAfter,
		Reconstructed:    snap.Reconstructed,
		Stopped:          snap.Stopped || finished,
		UpdatedAt:        time.Now().UTC(),
	}
	if err := r.status.Save(ctx, st); err != nil {
		r.logger.Warn("failed to save status", log.Err(err))
	}
}

func (r *Receiver) recordErr(err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *Receiver) err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return errors.Join(r.errs...)
}

// Stop requests a coordinated stop and waits for the group to finish.
// A Coordinator shared through WithCoordinator is stopped as well.
func (r *Receiver) Stop() error {
	select {
	case <-r.done:
		return ErrNotRunning
	default:
	}

	r.coord.RequestStop()
	r.cancel()

	timer := time.NewTimer(r.shutdownTimeout)
	defer timer.Stop()
	select {
	case <-r.done:
		return nil
	case <-timer.C:
		r.logger.Warn("shutdown timeout, workers still running",
			log.Duration("timeout", r.shutdownTimeout),
			log.Strings("workers", r.lifecycle.Workers()),
		)
		return ErrShutdownTimeout
	}
}

// Wait blocks until the group finishes and returns the accept or control
// errors that ended any listener.
func (r *Receiver) Wait() error {
	<-r.done
	return r.err()
}

// Done returns a channel closed when the group has finished.
func (r *Receiver) Done() <-chan struct{} {
	return r.done
}

// WaitForPorts returns the bound ports once every listener has published,
// or whatever is bound after Config.PortWait.
func (r *Receiver) WaitForPorts(ctx context.Context) []uint16 {
	return r.coord.WaitForPorts(ctx, len(r.listeners), r.cfg.PortWait)
}

// Ports returns the ports bound by this group's listeners.
func (r *Receiver) Ports() []uint16 {
	ports := make([]uint16, 0, len(r.listeners))
	for _, l := range r.listeners {
		ports = append(ports, l.Port())
	}
	return ports
}

// ControlPort returns the control channel port, or 0 if it is disabled.
func (r *Receiver) ControlPort() uint16 {
	if r.control == nil {
		return 0
	}
	return r.control.port()
}

// Stats returns the counters of every listener.
func (r *Receiver) Stats() []Stats {
	stats := make([]Stats, 0, len(r.listeners))
	for _, l := range r.listeners {
		stats = append(stats, l.Stats())
	}
	return stats
}

// ID returns the receiver ID.
func (r *Receiver) ID() string {
	return r.id
}

// Coordinator returns the shared state of the group.
func (r *Receiver) Coordinator() *Coordinator {
	return r.coord
}

// State returns the lifecycle state.
func (r *Receiver) State() lifecycle.State {
	return r.lifecycle.State()
}
