package video

import "gocv.io/x/gocv"

const quitKey = 'q'

//WindowDisplay shows frames in a desktop window and polls the keyboard for the quit key
type WindowDisplay struct {
	window *gocv.Window
}

func NewWindowDisplay(title string) *WindowDisplay {
	return &WindowDisplay{window: gocv.NewWindow(title)}
}

func (d *WindowDisplay) Show(frame gocv.Mat) bool {
	d.window.IMShow(frame)
	return d.Poll()
}

//Poll services the window for 1ms without drawing, reporting whether the quit key was pressed
func (d *WindowDisplay) Poll() bool {
	return d.window.WaitKey(1)&0xFF == quitKey
}

func (d *WindowDisplay) Close() error {
	return d.window.Close()
}

//HeadlessDisplay drops frames, for machines without a screen. Quit with a signal instead.
type HeadlessDisplay struct{}

func (HeadlessDisplay) Show(gocv.Mat) bool { return false }

func (HeadlessDisplay) Poll() bool { return false }

func (HeadlessDisplay) Close() error { return nil }
