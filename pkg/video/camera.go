package video

import (
	"fmt"
	"strconv"

	"gocv.io/x/gocv"
)

//OpenCamera opens a capture device. A numeric device is a camera index, anything else a file or stream url.
func OpenCamera(device string) (*gocv.VideoCapture, error) {
	var src interface{} = device
	if idx, err := strconv.Atoi(device); err == nil {
		src = idx
	}

	capture, err := gocv.OpenVideoCapture(src)
	if err != nil {
		return nil, fmt.Errorf("OpenCamera: Could not open '%s', got '%w'", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("OpenCamera: '%s' is not opened", device)
	}
	return capture, nil
}
