package capture

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/chenBenjamin97/money-lockon/pkg/nn"
	"github.com/chenBenjamin97/money-lockon/pkg/utils"
	"github.com/cyclopcam/logs"
	"gocv.io/x/gocv"
)

var ErrEmptyFrame = errors.New("frame is empty")

//Artifact describes the files written for one lock-on. Paths are fixed, every export overwrites the previous one.
type Artifact struct {
	ImagePath string
	MapPaths  map[string]string //activation name -> csv path
	Maps      map[string]Matrix //activation name -> flattened feature maps
}

//Exporter writes the grayscale snapshot and the feature maps of a locked detection into one directory
type Exporter struct {
	log       logs.Log
	dir       string
	numMaps   int
	imageSize int
}

//NewExporter returns an exporter writing into dir. The directory must already exist, see EnsureDir.
func NewExporter(log logs.Log, dir string, numMaps, imageSize int) *Exporter {
	if numMaps <= 0 {
		numMaps = utils.NumMapsToSave
	}
	if imageSize <= 0 {
		imageSize = utils.InputSize
	}
	return &Exporter{
		log:       log,
		dir:       dir,
		numMaps:   numMaps,
		imageSize: imageSize,
	}
}

//EnsureDir creates the output directory if it is missing. It is meant to run once at startup.
func EnsureDir(dir string) (created bool, err error) {
	if _, err := os.Stat(dir); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("EnsureDir: Could not stat '%s', got '%w'", dir, err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("EnsureDir: Could not create '%s', got '%w'", dir, err)
	}
	return true, nil
}

func (e *Exporter) Dir() string {
	return e.dir
}

//ImagePath returns the fixed path of the grayscale snapshot
func (e *Exporter) ImagePath() string {
	return filepath.Join(e.dir, utils.SnapshotFileName)
}

//MapPath returns the fixed path of the feature maps file of given activation
func (e *Exporter) MapPath(name string) string {
	return filepath.Join(e.dir, name+utils.MapsFileExt)
}

//Export writes frame as a grayscale snapshot and every activation as a csv file.
//The first error aborts the export, files written before it are left in place.
func (e *Exporter) Export(frame gocv.Mat, activations nn.Activations) (*Artifact, error) {
	art := &Artifact{
		ImagePath: e.ImagePath(),
		MapPaths:  make(map[string]string),
		Maps:      make(map[string]Matrix),
	}

	if err := SaveGray(frame, art.ImagePath, e.imageSize); err != nil {
		return nil, err
	}

	for _, name := range activations.Names() {
		m := Flatten(activations[name], e.numMaps)
		path := e.MapPath(name)
		if err := writeMatrixFile(path, m); err != nil {
			return nil, err
		}
		art.MapPaths[name] = path
		art.Maps[name] = m
		e.log.Debugf("Export: wrote '%s' (%dx%d)", path, m.Rows, m.Cols)
	}

	return art, nil
}

func writeMatrixFile(path string, m Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("Export: Could not create '%s', got '%w'", path, err)
	}
	if err := WriteCSV(f, m); err != nil {
		f.Close()
		return fmt.Errorf("Export: Could not write '%s', got '%w'", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("Export: Could not close '%s', got '%w'", path, err)
	}
	return nil
}

//SaveGray converts frame to a single intensity channel, resizes it to size x size and writes it to path
func SaveGray(frame gocv.Mat, path string, size int) error {
	if frame.Empty() {
		return ErrEmptyFrame
	}

	gray := gocv.NewMat()
	defer gray.Close()

	switch frame.Channels() {
	case 1:
		frame.CopyTo(&gray)
	case 4:
		gocv.CvtColor(frame, &gray, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	}

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(gray, &resized, image.Pt(size, size), 0, 0, gocv.InterpolationLinear)

	if !gocv.IMWrite(path, resized) {
		return fmt.Errorf("SaveGray: Could not write '%s'", path)
	}
	return nil
}
