package train

import (
	"bytes"
	"regexp"
	"strconv"
)

//maxLineSize bounds a single line of script output. Longer lines stop the parsing, not the script.
const maxLineSize = 1 << 20

//scanOutputLines is bufio.ScanLines that also ends a line on '\r', so progress bars redrawing one
//terminal line arrive as separate short lines
func scanOutputLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

//EpochStats is the summary the fine-tuning process prints after every epoch
type EpochStats struct {
	Epoch       int
	Epochs      int
	TrainLoss   float64
	ValAccuracy float64 //percent
}

var epochLine = regexp.MustCompile(`Epoch \[(\d+)/(\d+)\], Train Loss: ([0-9.eE+-]+|nan|inf), Val Accuracy: ([0-9.]+)%`)

//ParseEpochLine extracts epoch stats from a line like
//"Epoch [3/15], Train Loss: 0.4210, Val Accuracy: 91.25%"
func ParseEpochLine(line string) (EpochStats, bool) {
	m := epochLine.FindStringSubmatch(line)
	if m == nil {
		return EpochStats{}, false
	}

	epoch, _ := strconv.Atoi(m[1])
	epochs, _ := strconv.Atoi(m[2])
	loss, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return EpochStats{}, false
	}
	acc, err := strconv.ParseFloat(m[4], 64)
	if err != nil {
		return EpochStats{}, false
	}

	return EpochStats{Epoch: epoch, Epochs: epochs, TrainLoss: loss, ValAccuracy: acc}, true
}
