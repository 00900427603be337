package lifecycle

import (
	"sort"
	"sync"
	"time"

	"github.com/bft-labs/vcshare/internal/domain"
	"github.com/bft-labs/vcshare/pkg/log"
)

// ShutdownTimeout is the default maximum time to wait for listeners to exit.
const ShutdownTimeout = 30 * time.Second

// Manager implements the lifecycle state machine and worker accounting.
type Manager struct {
	mu      sync.RWMutex
	state   State
	workers map[string]int
	wg      sync.WaitGroup
	logger  log.Logger
	emitter EventEmitter
}

// NewManager creates a manager in StateStopped.
func NewManager(logger log.Logger, emitter EventEmitter) *Manager {
	return &Manager{
		state:   StateStopped,
		workers: make(map[string]int),
		logger:  log.OrNoop(logger),
		emitter: emitter,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// TransitionTo moves to newState. Invalid transitions leave the state
// unchanged and return ErrNotRunning (from an idle state) or
// ErrAlreadyRunning (from an active one).
func (m *Manager) TransitionTo(newState State, reason string) error {
	m.mu.Lock()
	oldState := m.state
	if !canTransition(oldState, newState) {
		m.mu.Unlock()
		if oldState.Active() {
			return domain.ErrAlreadyRunning
		}
		return domain.ErrNotRunning
	}
	m.state = newState
	m.mu.Unlock()

	// Emit outside the lock so handlers may query the manager.
	if m.emitter != nil {
		m.emitter.OnStateChange(oldState, newState, reason)
	}
	m.logger.Info("state transition",
		log.String("from", oldState.String()),
		log.String("to", newState.String()),
		log.String("reason", reason),
	)
	return nil
}

// CanStart returns true if the group may be started.
func (m *Manager) CanStart() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateStopped || m.state == StateCrashed
}

// CanStop returns true if the group may be stopped.
func (m *Manager) CanStop() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateRunning || m.state == StateStarting
}

// Go runs fn in a goroutine tracked under name.
func (m *Manager) Go(name string, fn func()) {
	m.mu.Lock()
	m.workers[name]++
	m.mu.Unlock()
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		defer func() {
			m.mu.Lock()
			if m.workers[name]--; m.workers[name] <= 0 {
				delete(m.workers, name)
			}
			m.mu.Unlock()
		}()
		fn()
	}()
}

// Workers returns the names of workers still running, sorted.
func (m *Manager) Workers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.workers))
	for n := range m.workers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Wait blocks until every worker has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// WaitWithTimeout waits for all workers with a deadline and returns
// ErrShutdownTimeout if some are still running when it expires.
func (m *Manager) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		m.logger.Warn("shutdown timeout, workers still running",
			log.Duration("timeout", timeout),
			log.Strings("workers", m.Workers()),
		)
		return domain.ErrShutdownTimeout
	}
}
