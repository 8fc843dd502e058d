package capture

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/chenBenjamin97/money-lockon/pkg/nn"
)

//Matrix is a row-major 2D array of feature map values
type Matrix struct {
	Rows int
	Cols int
	Data []float32
}

//Row returns row r of the matrix (shares memory)
func (m Matrix) Row(r int) []float32 {
	return m.Data[r*m.Cols : (r+1)*m.Cols]
}

//Flatten keeps the first min(numMaps, channels) channels of t, in the network's order, and stacks them
//vertically into a (kept*height) x width matrix. No padding is added when the tensor has fewer channels.
func Flatten(t nn.Tensor, numMaps int) Matrix {
	kept := t.Channels
	if numMaps < kept {
		kept = numMaps
	}
	if kept < 0 {
		kept = 0
	}

	//channel major layout means the stacked channels are just a prefix of the data
	n := kept * t.Height * t.Width
	data := make([]float32, n)
	copy(data, t.Data[:n])

	return Matrix{Rows: kept * t.Height, Cols: t.Width, Data: data}
}

//formatValue writes a value the way numpy's savetxt does by default ('%.18e'), non-finite values included
func formatValue(v float32) string {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'e', 18, 64)
}

//WriteCSV writes m as comma separated values, one line per matrix row
func WriteCSV(w io.Writer, m Matrix) error {
	cw := csv.NewWriter(w)
	record := make([]string, m.Cols)
	for r := 0; r < m.Rows; r++ {
		for c, v := range m.Row(r) {
			record[c] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCSV: Could not write row %d, got '%w'", r, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
