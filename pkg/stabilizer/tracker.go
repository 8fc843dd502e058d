package stabilizer

import (
	"time"

	"github.com/chenBenjamin97/money-lockon/pkg/nn"
)

//Status is a read-only view of a Stabilizer, for overlays and the status API
type Status struct {
	Label         string    `json:"label"`
	Confidence    float64   `json:"confidence"` //confidence of the last observed frame
	Locked        bool      `json:"locked"`
	Since         time.Time `json:"since"`
	LockCount     int       `json:"lockCount"`
	LastLockLabel string    `json:"lastLockLabel"`
	LastLock      time.Time `json:"lastLock"`
}

//Stabilizer owns the State of one live loop and keeps a few counters next to it.
//It is not safe for concurrent use, the loop is its only owner.
type Stabilizer struct {
	params         Params
	state          State
	lastConfidence float64
	lockCount      int
	lastLockLabel  string
	lastLock       time.Time
}

func New(params Params) *Stabilizer {
	return &Stabilizer{params: params}
}

//Observe feeds one classification into the state machine
func (s *Stabilizer) Observe(r nn.Result, now time.Time) Transition {
	var t Transition
	s.state, t = Step(s.params, s.state, r, now)
	s.lastConfidence = r.Confidence
	if t == LockOn {
		s.lockCount++
		s.lastLockLabel = s.state.CurrentLabel
		s.lastLock = now
	}
	return t
}

func (s *Stabilizer) State() State {
	return s.state
}

func (s *Stabilizer) Params() Params {
	return s.params
}

func (s *Stabilizer) Status() Status {
	return Status{
		Label:         s.state.CurrentLabel,
		Confidence:    s.lastConfidence,
		Locked:        s.state.Locked,
		Since:         s.state.Since,
		LockCount:     s.lockCount,
		LastLockLabel: s.lastLockLabel,
		LastLock:      s.lastLock,
	}
}
