package receiver

import (
	"time"

	"github.com/bft-labs/vcshare/pkg/lifecycle"
	"github.com/bft-labs/vcshare/pkg/log"
	"github.com/bft-labs/vcshare/pkg/state"
	"github.com/bft-labs/vcshare/pkg/vcs"
)

// ReconstructFunc stacks the share files in paths into out.
type ReconstructFunc func(paths []string, out string) error

// Option configures optional behavior of a Listener or receive group.
type Option func(*options)

type options struct {
	logger          log.Logger
	eventHandler    EventHandler
	coordinator     *Coordinator
	reconstruct     ReconstructFunc
	status          state.Repository
	shutdownTimeout time.Duration
	receiverID      string
}

func defaultOptions() options {
	return options{
		logger:          log.NewNoopLogger(),
		reconstruct:     vcs.Reconstruct,
		shutdownTimeout: lifecycle.ShutdownTimeout,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = log.OrNoop(o.logger)
	if o.reconstruct == nil {
		o.reconstruct = vcs.Reconstruct
	}
	return o
}

// WithLogger sets the logger. If not provided, nothing is logged.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for receive events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithCoordinator shares an existing Coordinator instead of creating one.
// The Coordinator's limits take precedence over Config.MaxFiles and
// Config.ReconstructAfter.
func WithCoordinator(c *Coordinator) Option {
	return func(o *options) {
		o.coordinator = c
	}
}

// WithReconstructFunc replaces the reconstruction step, mainly for tests.
func WithReconstructFunc(fn ReconstructFunc) Option {
	return func(o *options) {
		o.reconstruct = fn
	}
}

// WithStatusRepository persists the group status after every change.
// Config.StatusFile installs a file repository when this is not set.
func WithStatusRepository(repo state.Repository) Option {
	return func(o *options) {
		o.status = repo
	}
}

// WithShutdownTimeout bounds how long Stop waits for listeners.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) {
		o.shutdownTimeout = d
	}
}

// WithReceiverID overrides the generated receiver ID.
func WithReceiverID(id string) Option {
	return func(o *options) {
		o.receiverID = id
	}
}
