package utils

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

//ErrEmptyClassList is returned when a class list file holds no class names
var ErrEmptyClassList = errors.New("class list is empty")

//ReadClassList reads a class list file, one class per line. Line order is the label-index mapping of the model.
//Trailing whitespace is trimmed and empty trailing lines are ignored.
func ReadClassList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ReadClassList: Could not open '%s', got '%w'", path, err)
	}
	defer f.Close()

	classes := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		classes = append(classes, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ReadClassList: Could not read '%s', got '%w'", path, err)
	}

	//blank lines at the end of the file are not classes
	for len(classes) > 0 && classes[len(classes)-1] == "" {
		classes = classes[:len(classes)-1]
	}

	if len(classes) == 0 {
		return nil, fmt.Errorf("ReadClassList: '%s': %w", path, ErrEmptyClassList)
	}

	return classes, nil
}

//WriteClassList writes given classes to path, one per line, replacing any existing file
func WriteClassList(path string, classes []string) error {
	if len(classes) == 0 {
		return ErrEmptyClassList
	}

	var sb strings.Builder
	for _, c := range classes {
		sb.WriteString(c)
		sb.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("WriteClassList: Could not write '%s', got '%w'", path, err)
	}

	return nil
}
