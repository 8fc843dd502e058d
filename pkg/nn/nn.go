//Package nn holds the plain data produced by one classification pass:
//the winning label and the intermediate activations it was computed from.
package nn

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

//Result is the outcome of classifying a single frame
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` //Softmax probability of Label, in [0,1]
}

//Tensor is one activation layer output for a single image, laid out channel major (C x H x W)
type Tensor struct {
	Channels int
	Height   int
	Width    int
	Data     []float32
}

//Activations maps an activation name (eg "low_level") to the tensor captured for it
type Activations map[string]Tensor

var (
	ErrShapeMismatch      = errors.New("tensor shape does not match its data")
	ErrClassCountMismatch = errors.New("class count mismatch")
)

//NewTensor wraps data in a tensor, checking that the shape accounts for every element
func NewTensor(channels, height, width int, data []float32) (Tensor, error) {
	if channels < 0 || height < 0 || width < 0 || channels*height*width != len(data) {
		return Tensor{}, fmt.Errorf("%w: %dx%dx%d vs %d values", ErrShapeMismatch, channels, height, width, len(data))
	}
	return Tensor{Channels: channels, Height: height, Width: width, Data: data}, nil
}

//TensorFromDims builds a tensor from a blob shape as reported by the inference engine.
//Accepted shapes are [C H W] and [1 C H W].
func TensorFromDims(dims []int, data []float32) (Tensor, error) {
	if len(dims) == 4 {
		if dims[0] != 1 {
			return Tensor{}, fmt.Errorf("%w: batch size %d", ErrShapeMismatch, dims[0])
		}
		dims = dims[1:]
	}
	if len(dims) != 3 {
		return Tensor{}, fmt.Errorf("%w: %d dimensions", ErrShapeMismatch, len(dims))
	}
	return NewTensor(dims[0], dims[1], dims[2], data)
}

//At returns the value at channel c, row y, column x
func (t Tensor) At(c, y, x int) float32 {
	return t.Data[(c*t.Height+y)*t.Width+x]
}

//Channel returns the plane of channel c (shares memory with the tensor)
func (t Tensor) Channel(c int) []float32 {
	n := t.Height * t.Width
	return t.Data[c*n : (c+1)*n]
}

//Names returns the activation names in sorted order
func (a Activations) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

//Softmax turns raw logits into probabilities that sum to 1
func Softmax(logits []float32) []float64 {
	probs := make([]float64, len(logits))
	if len(logits) == 0 {
		return probs
	}
	hi := math.Inf(-1)
	for _, v := range logits {
		hi = math.Max(hi, float64(v))
	}
	sum := 0.0
	for i, v := range logits {
		probs[i] = math.Exp(float64(v) - hi)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

//Argmax returns the index and value of the largest element, or (-1, 0) for an empty slice.
//Ties resolve to the lowest index.
func Argmax(values []float64) (int, float64) {
	best := -1
	bestVal := 0.0
	for i, v := range values {
		if best == -1 || v > bestVal {
			best = i
			bestVal = v
		}
	}
	return best, bestVal
}

//Decide converts logits into a Result using the class list of the model
func Decide(logits []float32, classes []string) (Result, error) {
	if len(logits) != len(classes) {
		return Result{}, fmt.Errorf("%w: model produced %d scores for %d classes", ErrClassCountMismatch, len(logits), len(classes))
	}
	idx, conf := Argmax(Softmax(logits))
	if idx < 0 {
		return Result{}, ErrClassCountMismatch
	}
	return Result{Label: classes[idx], Confidence: conf}, nil
}
