package stabilizer

import (
	"time"

	"github.com/chenBenjamin97/money-lockon/pkg/nn"
	"github.com/chenBenjamin97/money-lockon/pkg/utils"
)

//Transition is what happened to the tracked detection after observing one frame
type Transition int

const (
	NoChange Transition = iota
	TrackingStarted
	LockOn
	TrackingLost
)

func (t Transition) String() string {
	switch t {
	case NoChange:
		return "NoChange"
	case TrackingStarted:
		return "TrackingStarted"
	case LockOn:
		return "LockOn"
	case TrackingLost:
		return "TrackingLost"
	}
	return "Unknown"
}

//Params are the thresholds a detection has to satisfy
type Params struct {
	ConfidenceThreshold float64       //confidence has to be strictly greater than this
	DurationThreshold   time.Duration //lock on once a label was held at least this long
	ExcludedLabel       string        //background class, never tracked
}

//DefaultParams returns the thresholds the demo ships with
func DefaultParams() Params {
	return Params{
		ConfidenceThreshold: utils.DefaultConfidenceThreshold,
		DurationThreshold:   utils.DefaultDurationThreshold,
		ExcludedLabel:       utils.ExcludedLabel,
	}
}

//State is the tracked detection. The zero value means nothing is tracked.
type State struct {
	CurrentLabel string
	Since        time.Time
	Locked       bool
}

//Tracking returns true while a label is being tracked
func (s State) Tracking() bool {
	return s.CurrentLabel != ""
}

//IsPositive returns true if given result counts as a detection under p
func (p Params) IsPositive(r nn.Result) bool {
	return r.Label != "" && r.Label != p.ExcludedLabel && r.Confidence > p.ConfidenceThreshold
}

//Step is the pure transition function: it returns the state after observing r at time now.
//Lock on happens once per streak, when elapsed time reaches (inclusive) the duration threshold.
func Step(p Params, s State, r nn.Result, now time.Time) (State, Transition) {
	if !p.IsPositive(r) {
		if s.Tracking() {
			return State{}, TrackingLost
		}
		return State{}, NoChange
	}

	if r.Label != s.CurrentLabel {
		return State{CurrentLabel: r.Label, Since: now}, TrackingStarted
	}

	if !s.Locked && now.Sub(s.Since) >= p.DurationThreshold {
		s.Locked = true
		return s, LockOn
	}

	return s, NoChange
}
