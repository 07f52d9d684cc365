package state

import (
	"time"

	"github.com/five82/crown/internal/crown"
)

// Phase is the lifecycle stage of the view as the UI observes it.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Phase               Phase
	Mirror              crown.State // zero unless Known
	Known               bool        // false until a fetch has succeeded
	Pending             bool        // a claim is being submitted
	LastUpdated         time.Time   // time of the last applied completion
	LastError           error       // most recent read failure, nil after a success
	ConsecutiveFailures int         // Number of consecutive read failures
}

// IsOffline returns true when the node has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}
