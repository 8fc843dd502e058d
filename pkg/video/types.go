package video

import (
	"github.com/chenBenjamin97/money-lockon/pkg/capture"
	"github.com/chenBenjamin97/money-lockon/pkg/nn"
	"github.com/chenBenjamin97/money-lockon/pkg/stabilizer"
	"gocv.io/x/gocv"
)

//FrameSource supplies frames in order. Read blocks until the next frame and returns false once the source is done.
//*gocv.VideoCapture satisfies it.
type FrameSource interface {
	Read(m *gocv.Mat) bool
	Close() error
}

//Classifier maps a frame to a label and returns the activations it computed on the way
type Classifier interface {
	Classify(frame gocv.Mat) (nn.Result, nn.Activations, error)
	Close() error
}

//Exporter persists the artifacts of a lock-on
type Exporter interface {
	Export(frame gocv.Mat, activations nn.Activations) (*capture.Artifact, error)
}

//Notifier tells the downstream consumer about a lock-on
type Notifier interface {
	Notify(label string) error
}

//Display shows a frame and reports whether the user asked to quit
type Display interface {
	Show(frame gocv.Mat) (quit bool)
	Poll() (quit bool)
	Close() error
}

//Reporter receives the stabilizer status after every frame
type Reporter interface {
	Publish(status stabilizer.Status)
}
