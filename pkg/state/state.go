package state

import "time"

// Status is the persisted view of one receive group.
type Status struct {
	ReceiverID       string    `json:"receiver_id"`
	DestDir          string    `json:"dest_dir"`
	Ports            []uint16  `json:"ports"`
	Received         uint      `json:"received"`
	MaxFiles         uint      `json:"max_files,omitempty"`
	ReconstructAfter uint      `json:"reconstruct_after,omitempty"`
	Reconstructed    bool      `json:"reconstructed"`
	Stopped          bool      `json:"stopped"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsEmpty returns true if no status has been recorded.
func (s Status) IsEmpty() bool {
	return s.ReceiverID == ""
}
