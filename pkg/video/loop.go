package video

import (
	"context"
	"fmt"
	"time"

	"github.com/chenBenjamin97/money-lockon/pkg/nn"
	"github.com/chenBenjamin97/money-lockon/pkg/stabilizer"
	"github.com/cyclopcam/logs"
	"gocv.io/x/gocv"
)

//Loop is the live pipeline: frame -> classify -> stabilize -> (lock-on) export + notify -> overlay -> display.
//Everything runs on the calling goroutine. The stabilizer belongs to the loop alone.
type Loop struct {
	Log        logs.Log
	Source     FrameSource
	Classifier Classifier
	Stabilizer *stabilizer.Stabilizer
	Exporter   Exporter
	Notifier   Notifier
	Display    Display
	Reporter   Reporter         //optional
	Now        func() time.Time //optional, defaults to time.Now
	FailFast   bool             //return classification errors instead of skipping the frame
}

//Stats counts what happened during Run
type Stats struct {
	Frames  int
	Skipped int //frames whose classification failed
	Locks   int
}

//Run loops until the source ends, the user quits or ctx is cancelled.
//Only a classification error with FailFast set is returned as an error.
func (l *Loop) Run(ctx context.Context) (Stats, error) {
	now := l.Now
	if now == nil {
		now = time.Now
	}

	frame := gocv.NewMat()
	defer frame.Close()

	stats := Stats{}
	l.Log.Infof("Live: Running, point the camera at currency...")

	for {
		select {
		case <-ctx.Done():
			l.Log.Infof("Live: Stopped")
			return stats, nil
		default:
		}

		if !l.Source.Read(&frame) {
			l.Log.Infof("Live: Frame source ended")
			return stats, nil
		}
		if frame.Empty() {
			//nothing to draw, the quit key still has to work while the camera warms up
			if l.Display.Poll() {
				l.Log.Infof("Live: Quit requested")
				return stats, nil
			}
			continue
		}
		stats.Frames++

		result, activations, err := l.Classifier.Classify(frame)
		if err != nil {
			if l.FailFast {
				return stats, fmt.Errorf("Live: Classification failed on frame %d, got '%w'", stats.Frames, err)
			}
			stats.Skipped++
			l.Log.Errorf("Live: Classification failed on frame %d, skipping it, got '%v'", stats.Frames, err)
		} else {
			switch l.Stabilizer.Observe(result, now()) {
			case stabilizer.TrackingStarted:
				l.Log.Debugf("Live: Tracking '%s' (%.2f)", result.Label, result.Confidence)
			case stabilizer.LockOn:
				stats.Locks++
				l.lockOn(frame, result.Label, activations)
			case stabilizer.TrackingLost:
				l.Log.Infof("Live: ...Lost track, resetting.")
			}
		}

		status := l.Stabilizer.Status()
		if l.Reporter != nil {
			l.Reporter.Publish(status)
		}

		plotStatus(&frame, status)
		if l.Display.Show(frame) {
			l.Log.Infof("Live: Quit requested")
			return stats, nil
		}
	}
}

//lockOn exports the artifacts and then sends the trigger. Both are best effort: failures are logged, never retried,
//and the lock stays held.
func (l *Loop) lockOn(frame gocv.Mat, label string, activations nn.Activations) {
	l.Log.Infof("Live: --- LOCK-ON: %s ---", label)

	if _, err := l.Exporter.Export(frame, activations); err != nil {
		l.Log.Errorf("Live: Could not export capture for '%s', got '%v'", label, err)
		return
	}

	if err := l.Notifier.Notify(label); err != nil {
		l.Log.Errorf("Live: Could not send trigger for '%s', got '%v'", label, err)
		return
	}

	l.Log.Infof("Live: Data saved and trigger sent for %s.", label)
}
