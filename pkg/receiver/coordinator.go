package receiver

import (
	"context"
	"sync"
	"time"
)

// CoordinatorConfig sets the group-wide limits. Zero disables a limit.
type CoordinatorConfig struct {
	MaxFiles         uint
	ReconstructAfter uint
}

// Snapshot is a consistent copy of the Coordinator state.
type Snapshot struct {
	Received         uint
	InFlight         uint
	MaxFiles         uint
	ReconstructAfter uint
	Ports            []uint16
	Reconstructed    bool
	Stopped          bool
}

// Coordinator is the state shared by every listener of one receive group.
// A single mutex guards all fields.
type Coordinator struct {
	mu            sync.Mutex
	cfg           CoordinatorConfig
	received      uint
	inFlight      uint
	ports         []uint16
	reconstructed bool
	stopped       bool
	done          chan struct{}
	// changed is closed and replaced on every mutation.
	changed chan struct{}
}

// NewCoordinator creates a Coordinator with the given limits.
func NewCoordinator(cfg CoordinatorConfig) *Coordinator {
	return &Coordinator{
		cfg:     cfg,
		done:    make(chan struct{}),
		changed: make(chan struct{}),
	}
}

func (c *Coordinator) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// Changed returns a channel closed at the next state change.
func (c *Coordinator) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

func (c *Coordinator) limitReachedLocked() bool {
	return c.cfg.MaxFiles > 0 && c.received >= c.cfg.MaxFiles
}

// ShouldExit reports whether listeners must stop accepting, and why.
func (c *Coordinator) ShouldExit() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.stopped:
		return "stop requested", true
	case c.limitReachedLocked():
		return "max files reached", true
	}
	return "", false
}

// Reserve claims a slot for one incoming file. It fails when the group is
// stopped or when received plus in-flight files already reach MaxFiles.
// A successful Reserve must be followed by exactly one Commit or Abort.
func (c *Coordinator) Reserve() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return false
	}
	if c.cfg.MaxFiles > 0 && c.received+c.inFlight >= c.cfg.MaxFiles {
		return false
	}
	c.inFlight++
	return true
}

// Commit records a stored file and returns the new group count. claimed is
// true for exactly one caller: the first whose commit brings the count to
// ReconstructAfter.
func (c *Coordinator) Commit() (count uint, claimed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight > 0 {
		c.inFlight--
	}
	c.received++
	claimed = c.claimLocked()
	c.notifyLocked()
	return c.received, claimed
}

// Abort releases a reserved slot without counting a file.
func (c *Coordinator) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight > 0 {
		c.inFlight--
	}
	c.notifyLocked()
}

// claimLocked takes the one-shot reconstruction latch if the threshold is
// configured and reached.
func (c *Coordinator) claimLocked() bool {
	if c.cfg.ReconstructAfter == 0 || c.reconstructed || c.received < c.cfg.ReconstructAfter {
		return false
	}
	c.reconstructed = true
	return true
}

// RequestStop sets the stop flag. Safe to call repeatedly.
func (c *Coordinator) RequestStop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.done)
	c.notifyLocked()
}

// Stopped reports whether a stop was requested.
func (c *Coordinator) Stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopped
}

// Done returns a channel closed when a stop is requested.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Received returns the group-wide count of stored files.
func (c *Coordinator) Received() uint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.received
}

// PublishPort records a bound port.
func (c *Coordinator) PublishPort(port uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ports = append(c.ports, port)
	c.notifyLocked()
}

// Ports returns the bound ports in publication order.
func (c *Coordinator) Ports() []uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]uint16(nil), c.ports...)
}

// WaitForPorts blocks until at least n ports are published, the timeout
// elapses or ctx is done, and returns the ports bound so far.
func (c *Coordinator) WaitForPorts(ctx context.Context, n int, timeout time.Duration) []uint16 {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		c.mu.Lock()
		if len(c.ports) >= n {
			ports := append([]uint16(nil), c.ports...)
			c.mu.Unlock()
			return ports
		}
		changed := c.changed
		c.mu.Unlock()

		select {
		case <-changed:
		case <-timer.C:
			return c.Ports()
		case <-ctx.Done():
			return c.Ports()
		}
	}
}

// Snapshot returns a copy of the state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Received:         c.received,
		InFlight:         c.inFlight,
		MaxFiles:         c.cfg.MaxFiles,
		ReconstructAfter: c.cfg.ReconstructAfter,
		Ports:            append([]uint16(nil), c.ports...),
		Reconstructed:    c.reconstructed,
		Stopped:          c.stopped,
	}
}
