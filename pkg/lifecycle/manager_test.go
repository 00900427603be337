package lifecycle

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/vcshare/internal/domain"
	"github.com/bft-labs/vcshare/pkg/log"
)

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	previous State
	current  State
	reason   string
}

func (m *mockEmitter) OnStateChange(previous, current State, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

func TestNewManager(t *testing.T) {
	m := NewManager(log.NewNoopLogger(), nil)
	assert.Equal(t, StateStopped, m.State())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStopped, "Stopped"},
		{StateStarting, "Starting"},
		{StateRunning, "Running"},
		{StateStopping, "Stopping"},
		{StateCrashed, "Crashed"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String(), "State(%d)", tt.state)
	}
}

func TestManager_TransitionTo_Valid(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
	}{
		{"stopped to starting", StateStopped, StateStarting},
		{"starting to running", StateStarting, StateRunning},
		{"starting to stopping", StateStarting, StateStopping},
		{"starting to crashed", StateStarting, StateCrashed},
		{"running to stopping", StateRunning, StateStopping},
		{"running to crashed", StateRunning, StateCrashed},
		{"stopping to stopped", StateStopping, StateStopped},
		{"stopping to crashed", StateStopping, StateCrashed},
		{"crashed to starting", StateCrashed, StateStarting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(nil, nil)
			m.state = tt.from

			require.NoError(t, m.TransitionTo(tt.to, "test"))
			assert.Equal(t, tt.to, m.State())
		})
	}
}

func TestManager_TransitionTo_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		wantErr error
	}{
		{"stopped to running", StateStopped, StateRunning, domain.ErrNotRunning},
		{"stopped to stopping", StateStopped, StateStopping, domain.ErrNotRunning},
		{"starting to stopped", StateStarting, StateStopped, domain.ErrAlreadyRunning},
		{"running to starting", StateRunning, StateStarting, domain.ErrAlreadyRunning},
		{"running to stopped", StateRunning, StateStopped, domain.ErrAlreadyRunning},
		{"stopping to running", StateStopping, StateRunning, domain.ErrAlreadyRunning},
		{"crashed to running", StateCrashed, StateRunning, domain.ErrNotRunning},
		{"crashed to stopped", StateCrashed, StateStopped, domain.ErrNotRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(nil, nil)
			m.state = tt.from

			require.ErrorIs(t, m.TransitionTo(tt.to, "test"), tt.wantErr)
			assert.Equal(t, tt.from, m.State(), "invalid transition must not change state")
		})
	}
}

func TestManager_TransitionTo_EmitsEvents(t *testing.T) {
	emitter := &mockEmitter{}
	m := NewManager(nil, emitter)

	require.NoError(t, m.TransitionTo(StateStarting, "start"))
	require.NoError(t, m.TransitionTo(StateRunning, "listeners bound"))

	events := emitter.Events()
	require.Len(t, events, 2)
	assert.Equal(t, StateStopped, events[0].previous)
	assert.Equal(t, StateStarting, events[0].current)
	assert.Equal(t, "listeners bound", events[1].reason)
}

func TestManager_CanStartCanStop(t *testing.T) {
	tests := []struct {
		state     State
		wantStart bool
		wantStop  bool
	}{
		{StateStopped, true, false},
		{StateStarting, false, true},
		{StateRunning, false, true},
		{StateStopping, false, false},
		{StateCrashed, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			m := NewManager(nil, nil)
			m.state = tt.state
			assert.Equal(t, tt.wantStart, m.CanStart(), "CanStart")
			assert.Equal(t, tt.wantStop, m.CanStop(), "CanStop")
		})
	}
}

func TestManager_GoAndWorkers(t *testing.T) {
	m := NewManager(nil, nil)
	release := make(chan struct{})

	m.Go("listener:8001", func() { <-release })
	m.Go("listener:8000", func() { <-release })
	m.Go("control", func() {})

	require.Eventually(t, func() bool { return len(m.Workers()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"listener:8000", "listener:8001"}, m.Workers())

	close(release)
	require.NoError(t, m.WaitWithTimeout(time.Second))
	assert.Empty(t, m.Workers())
}

func TestManager_WaitWithTimeout_Timeout(t *testing.T) {
	m := NewManager(nil, nil)
	release := make(chan struct{})
	m.Go("stuck", func() { <-release })

	require.ErrorIs(t, m.WaitWithTimeout(10*time.Millisecond), domain.ErrShutdownTimeout)
	close(release)
	m.Wait()
}

func TestManager_Concurrency(t *testing.T) {
	m := NewManager(nil, nil)
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.State()
				_ = m.CanStart()
				_ = m.CanStop()
			}
		}()
	}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.TransitionTo(StateStarting, "test")
			_ = m.TransitionTo(StateRunning, "test")
		}()
	}
	wg.Wait()

	assert.Equal(t, StateRunning, m.State())
}
