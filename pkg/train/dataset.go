package train

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chenBenjamin97/money-lockon/pkg/utils"
)

var (
	ErrMissingDataset = errors.New("dataset directory missing")
	ErrNoClasses      = errors.New("dataset has no class directories")
	ErrClassMismatch  = errors.New("train and val classes differ")
	ErrEmptyClass     = errors.New("class directory holds no images")
)

//Dataset is a validated 'labeled folder of images' dataset: root/train/<class>/* and root/val/<class>/*
type Dataset struct {
	Root        string
	Classes     []string //sorted, index == label index used by the model
	TrainCounts map[string]int
	ValCounts   map[string]int
}

//TrainDir returns the training split directory
func (d *Dataset) TrainDir() string {
	return filepath.Join(d.Root, "train")
}

//ValDir returns the validation split directory
func (d *Dataset) ValDir() string {
	return filepath.Join(d.Root, "val")
}

//DiscoverClasses returns the class directories found in dir, sorted by name
func DiscoverClasses(dir string) ([]string, error) {
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("DiscoverClasses: '%s': %w", dir, ErrMissingDataset)
	}

	classes, err := utils.ListSubDirs(dir)
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("DiscoverClasses: '%s': %w", dir, ErrNoClasses)
	}
	return classes, nil
}

//countImages counts the files in dir that carry an image extension
func countImages(dir string) (int, error) {
	names, err := utils.ListDir(dir)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, name := range names {
		if utils.InSlice(strings.ToLower(filepath.Ext(name)), utils.ImageExtensions) {
			count++
		}
	}
	return count, nil
}

func countSplit(splitDir string, classes []string) (map[string]int, error) {
	counts := make(map[string]int)
	for _, c := range classes {
		n, err := countImages(filepath.Join(splitDir, c))
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("ValidateDataset: '%s': %w", filepath.Join(splitDir, c), ErrEmptyClass)
		}
		counts[c] = n
	}
	return counts, nil
}

//ValidateDataset checks the dataset layout before any training starts
func ValidateDataset(root string) (*Dataset, error) {
	ds := &Dataset{Root: root}

	classes, err := DiscoverClasses(ds.TrainDir())
	if err != nil {
		return nil, err
	}
	valClasses, err := DiscoverClasses(ds.ValDir())
	if err != nil {
		return nil, err
	}

	if strings.Join(classes, "\x00") != strings.Join(valClasses, "\x00") {
		return nil, fmt.Errorf("ValidateDataset: train %v, val %v: %w", classes, valClasses, ErrClassMismatch)
	}
	ds.Classes = classes

	if ds.TrainCounts, err = countSplit(ds.TrainDir(), classes); err != nil {
		return nil, err
	}
	if ds.ValCounts, err = countSplit(ds.ValDir(), classes); err != nil {
		return nil, err
	}

	return ds, nil
}
