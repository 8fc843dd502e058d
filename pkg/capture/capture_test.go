package capture

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chenBenjamin97/money-lockon/pkg/nn"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func makeTensor(t *testing.T, c, h, w int) nn.Tensor {
	data := make([]float32, c*h*w)
	for i := range data {
		data[i] = float32(i)
	}
	tn, err := nn.NewTensor(c, h, w, data)
	require.NoError(t, err)
	return tn
}

func TestFlattenTruncatesChannels(t *testing.T) {
	tn := makeTensor(t, 16, 4, 4)
	m := Flatten(tn, 8)
	require.Equal(t, 32, m.Rows)
	require.Equal(t, 4, m.Cols)
	require.Len(t, m.Data, 32*4)

	//Row 4 is the first row of channel 1, the last row is channel 7 row 3
	require.Equal(t, tn.Channel(1)[:4], m.Row(4))
	require.Equal(t, tn.Channel(7)[12:16], m.Row(31))

	//Flatten must not alias the tensor
	m.Data[0] = -1
	require.Equal(t, float32(0), tn.Data[0])
}

func TestFlattenKeepsFewChannels(t *testing.T) {
	tn := makeTensor(t, 3, 4, 5)
	m := Flatten(tn, 8)
	require.Equal(t, 12, m.Rows)
	require.Equal(t, 5, m.Cols)
	require.Equal(t, tn.Data, m.Data)
}

func TestWriteCSV(t *testing.T) {
	m := Matrix{Rows: 2, Cols: 2, Data: []float32{1, 0.5, -2, 0}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, m))
	require.Equal(t,
		"1.000000000000000000e+00,5.000000000000000000e-01\n"+
			"-2.000000000000000000e+00,0.000000000000000000e+00\n",
		buf.String())
}

func TestWriteCSVNonFinite(t *testing.T) {
	//spelled the way numpy.loadtxt reads them back
	m := Matrix{Rows: 1, Cols: 4, Data: []float32{float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1)), 1}}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, m))
	require.Equal(t, "nan,inf,-inf,1.000000000000000000e+00\n", buf.String())
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data", "nested")
	created, err := EnsureDir(dir)
	require.NoError(t, err)
	require.True(t, created)

	created, err = EnsureDir(dir)
	require.NoError(t, err)
	require.False(t, created)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(logs.NewTestingLog(t), dir, 8, 224)

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	acts := nn.Activations{
		"low_level":  makeTensor(t, 16, 4, 4),
		"high_level": makeTensor(t, 3, 2, 6),
	}

	art, err := e.Export(frame, acts)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "input.png"), art.ImagePath)

	img := gocv.IMRead(art.ImagePath, gocv.IMReadUnchanged)
	defer img.Close()
	require.False(t, img.Empty())
	require.Equal(t, 224, img.Rows())
	require.Equal(t, 224, img.Cols())
	require.Equal(t, 1, img.Channels())

	raw, err := os.ReadFile(filepath.Join(dir, "low_level.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	require.Len(t, lines, 32)
	require.Len(t, strings.Split(lines[0], ","), 4)

	raw, err = os.ReadFile(art.MapPaths["high_level"])
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	require.Len(t, lines, 6)
	require.Len(t, strings.Split(lines[0], ","), 6)

	//A second export overwrites the same files
	art2, err := e.Export(frame, nn.Activations{"low_level": makeTensor(t, 1, 1, 2)})
	require.NoError(t, err)
	require.Equal(t, art.MapPaths["low_level"], art2.MapPaths["low_level"])
	raw, err = os.ReadFile(art2.MapPaths["low_level"])
	require.NoError(t, err)
	require.Equal(t, "0.000000000000000000e+00,1.000000000000000000e+00\n", string(raw))
}

func TestExportEmptyFrame(t *testing.T) {
	e := NewExporter(logs.NewTestingLog(t), t.TempDir(), 0, 0)
	frame := gocv.NewMat()
	defer frame.Close()
	_, err := e.Export(frame, nil)
	require.ErrorIs(t, err, ErrEmptyFrame)
}
