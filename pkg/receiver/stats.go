package receiver

import "go.uber.org/atomic"

// Stats are counters of one listener.
type Stats struct {
	Port     uint16
	Files    uint64
	Bytes    uint64
	Failures uint64
	Rejected uint64
}

type listenerStats struct {
	port     atomic.Uint32
	files    atomic.Uint64
	bytes    atomic.Uint64
	failures atomic.Uint64
	rejected atomic.Uint64
}

func (s *listenerStats) snapshot() Stats {
	return Stats{
		Port:     uint16(s.port.Load()),
		Files:    s.files.Load(),
		Bytes:    s.bytes.Load(),
		Failures: s.failures.Load(),
		Rejected: s.rejected.Load(),
	}
}
