package video

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chenBenjamin97/money-lockon/pkg/stabilizer"
	"gocv.io/x/gocv"
)

var overlayColor = color.RGBA{0, 255, 0, 0}

//statusText is the debug line drawn on every frame
func statusText(status stabilizer.Status) string {
	if status.Label == "" {
		return "Scanning..."
	}
	if status.Locked {
		return fmt.Sprintf("LOCKED: %s", status.Label)
	}
	return fmt.Sprintf("Detecting: %s (%.2f)", status.Label, status.Confidence)
}

//plotStatus writes given status on the top left corner of frame
func plotStatus(frame *gocv.Mat, status stabilizer.Status) {
	gocv.PutText(frame, statusText(status), image.Pt(10, 30), gocv.FontHersheySimplex, 1, overlayColor, 2)
}
