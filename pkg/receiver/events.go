package receiver

import (
	"time"

	"github.com/bft-labs/vcshare/pkg/lifecycle"
)

// EventHandler receives notifications from a receive group.
// Methods are called synchronously from the listener goroutine that caused
// the event and must not block.
type EventHandler interface {
	// OnFileReceived is called after a file is stored and counted.
	OnFileReceived(event FileReceivedEvent)

	// OnReconstruction is called after the one-shot reconstruction ran.
	OnReconstruction(event ReconstructionEvent)

	// OnStateChange is called when the group changes lifecycle state.
	OnStateChange(event StateChangeEvent)
}

// FileReceivedEvent describes one stored file.
type FileReceivedEvent struct {
	ReceiverID string
	Port       uint16
	Path       string
	Bytes      uint64
	Count      uint
	Remote     string
}

// ReconstructionEvent describes a reconstruction attempt. Err is nil on
// success.
type ReconstructionEvent struct {
	ReceiverID string
	Output     string
	Inputs     []string
	Duration   time.Duration
	Err        error
}

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	ReceiverID string
	Previous   lifecycle.State
	Current    lifecycle.State
	Reason     string
}

// emitter adapts an EventHandler to lifecycle.EventEmitter and tolerates a
// nil handler.
type emitter struct {
	id      string
	handler EventHandler
}

func (e emitter) OnStateChange(previous, current lifecycle.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		ReceiverID: e.id,
		Previous:   previous,
		Current:    current,
		Reason:     reason,
	})
}

func (e emitter) fileReceived(ev FileReceivedEvent) {
	if e.handler != nil {
		ev.ReceiverID = e.id
		e.handler.OnFileReceived(ev)
	}
}

func (e emitter) reconstruction(ev ReconstructionEvent) {
	if e.handler != nil {
		ev.ReceiverID = e.id
		e.handler.OnReconstruction(ev)
	}
}
