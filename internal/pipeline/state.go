package pipeline

import (
	"time"

	"github.com/Vovarama1992/speech_coach/internal/feedback"
)

type State int

const (
	Idle State = iota
	Recording
	Processing
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Processing:
		return "processing"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a copy of the session for presentation; mutating it has no
// effect on the orchestrator.
type Snapshot struct {
	RunID      string           `json:"runId,omitempty"`
	State      State            `json:"state"`
	Source     string           `json:"source,omitempty"`
	Transcript string           `json:"transcript"`
	Feedback   *feedback.Report `json:"feedback,omitempty"`
	Error      string           `json:"error,omitempty"`
	AudioURL   string           `json:"audioUrl,omitempty"`
	AudioMIME  string           `json:"audioMime,omitempty"`
	AudioSize  int              `json:"audioSize,omitempty"`
	StartedAt  time.Time        `json:"startedAt"`
	FinishedAt time.Time        `json:"finishedAt"`
}

func (s Snapshot) clone() Snapshot {
	s.Feedback = s.Feedback.Clone()
	return s
}

// Busy reports whether a new recording or upload would be rejected.
func (s Snapshot) Busy() bool {
	return s.State == Recording || s.State == Processing
}
