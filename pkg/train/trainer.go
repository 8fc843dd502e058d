package train

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/chenBenjamin97/money-lockon/pkg/utils"
	"github.com/cyclopcam/logs"
)

var ErrNoWeights = errors.New("fine-tuning finished without writing weights")

//Options are the hyper-parameters and file locations of one fine-tuning run
type Options struct {
	Python       string //interpreter running Script
	Script       string //fine-tuning script, does the actual gradient work
	DataDir      string
	WeightsPath  string //written by Script
	ClassesPath  string //written by the trainer once Script succeeds
	BatchSize    int
	Epochs       int
	ImgSize      int
	ClassifierLR float64
	FinetuneLR   float64
}

//Report summarizes a finished run
type Report struct {
	Dataset  *Dataset
	Epochs   []EpochStats
	Duration time.Duration
}

//Final returns the stats of the last epoch, if any was reported
func (r *Report) Final() (EpochStats, bool) {
	if len(r.Epochs) == 0 {
		return EpochStats{}, false
	}
	return r.Epochs[len(r.Epochs)-1], true
}

//Trainer validates a dataset, runs the external fine-tuning process over it and persists the class list.
//It shares nothing with the live loop except the two files it writes.
type Trainer struct {
	log  logs.Log
	opts Options
}

func NewTrainer(log logs.Log, opts Options) *Trainer {
	return &Trainer{log: log, opts: opts}
}

//Args returns the command line handed to the fine-tuning script
func (t *Trainer) Args(ds *Dataset) []string {
	return []string{
		t.opts.Script,
		"--train", ds.TrainDir(),
		"--val", ds.ValDir(),
		"--num-classes", strconv.Itoa(len(ds.Classes)),
		"--batch-size", strconv.Itoa(t.opts.BatchSize),
		"--epochs", strconv.Itoa(t.opts.Epochs),
		"--img-size", strconv.Itoa(t.opts.ImgSize),
		"--classifier-lr", strconv.FormatFloat(t.opts.ClassifierLR, 'g', -1, 64),
		"--finetune-lr", strconv.FormatFloat(t.opts.FinetuneLR, 'g', -1, 64),
		"--weights", t.opts.WeightsPath,
	}
}

//Run fine-tunes the classifier. Dataset problems are reported before the external process starts.
func (t *Trainer) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	ds, err := ValidateDataset(t.opts.DataDir)
	if err != nil {
		return nil, err
	}
	t.log.Infof("Train: Successfully loaded dataset from '%s'", ds.Root)
	t.log.Infof("Train: Found %d classes: %v", len(ds.Classes), ds.Classes)
	for _, c := range ds.Classes {
		t.log.Debugf("Train: class '%s': %d train, %d val images", c, ds.TrainCounts[c], ds.ValCounts[c])
	}

	//stale weights must not pass for the output of this run
	if err := os.Remove(t.opts.WeightsPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("Train: Could not remove old weights '%s', got '%w'", t.opts.WeightsPath, err)
	}

	cmd := exec.CommandContext(ctx, t.opts.Python, t.Args(ds)...)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("Train: Could not get script's standard output, got '%w'", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("Train: Could not start '%s %s', got '%w'", t.opts.Python, t.opts.Script, err)
	}
	t.log.Infof("Train: Starting fine-tuning (%d epochs, batch %d)", t.opts.Epochs, t.opts.BatchSize)

	report := &Report{Dataset: ds}
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	scanner.Split(scanOutputLines)
	for scanner.Scan() {
		line := scanner.Text()
		if stats, ok := ParseEpochLine(line); ok {
			report.Epochs = append(report.Epochs, stats)
			t.log.Infof("Train: Epoch [%d/%d], Train Loss: %.4f, Val Accuracy: %.2f%%", stats.Epoch, stats.Epochs, stats.TrainLoss, stats.ValAccuracy)
			continue
		}
		if line != "" {
			t.log.Debugf("Train: %s", line)
		}
	}

	if err := scanner.Err(); err != nil {
		//the script blocks on a full pipe if nobody reads it, keep draining until it exits
		t.log.Warnf("Train: Stopped parsing script output, got '%v'", err)
		io.Copy(io.Discard, stdout)
	}

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("Train: Fine-tuning process failed, got '%w'", err)
	}

	if _, err := os.Stat(t.opts.WeightsPath); err != nil {
		return nil, fmt.Errorf("Train: '%s': %w", t.opts.WeightsPath, ErrNoWeights)
	}
	t.log.Infof("Train: Model saved to '%s'", t.opts.WeightsPath)

	if err := utils.WriteClassList(t.opts.ClassesPath, ds.Classes); err != nil {
		return nil, err
	}
	t.log.Infof("Train: Class names saved to '%s'", t.opts.ClassesPath)

	report.Duration = time.Since(start)
	return report, nil
}
