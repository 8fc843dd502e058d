package nn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSoftmax(t *testing.T) {
	probs := Softmax([]float32{1, 1, 1, 1})
	for _, p := range probs {
		require.InDelta(t, 0.25, p, 1e-9)
	}

	//Large logits must not overflow
	probs = Softmax([]float32{1000, 0})
	require.InDelta(t, 1.0, probs[0], 1e-9)
	require.InDelta(t, 0.0, probs[1], 1e-9)

	require.Empty(t, Softmax(nil))
}

func TestArgmax(t *testing.T) {
	idx, v := Argmax([]float64{0.1, 0.7, 0.7, 0.2})
	require.Equal(t, 1, idx)
	require.Equal(t, 0.7, v)

	idx, _ = Argmax(nil)
	require.Equal(t, -1, idx)
}

func TestDecide(t *testing.T) {
	classes := []string{"Coin", "Not_Money", "Note_10"}
	r, err := Decide([]float32{0.5, -2, 4}, classes)
	require.NoError(t, err)
	require.Equal(t, "Note_10", r.Label)
	require.Greater(t, r.Confidence, 0.9)
	require.LessOrEqual(t, r.Confidence, 1.0)

	_, err = Decide([]float32{1, 2}, classes)
	require.ErrorIs(t, err, ErrClassCountMismatch)
}

func TestTensorFromDims(t *testing.T) {
	data := make([]float32, 2*3*4)
	for i := range data {
		data[i] = float32(i)
	}
	tn, err := TensorFromDims([]int{1, 2, 3, 4}, data)
	require.NoError(t, err)
	require.Equal(t, 2, tn.Channels)
	require.Equal(t, float32(12+4+1), tn.At(1, 1, 1))
	require.Equal(t, data[12:24], tn.Channel(1))

	_, err = TensorFromDims([]int{2, 2, 3, 4}, make([]float32, 48))
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, err = TensorFromDims([]int{2, 3}, make([]float32, 6))
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, err = NewTensor(2, 3, 4, make([]float32, 23))
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestActivationNames(t *testing.T) {
	a := Activations{"mid_level": {}, "high_level": {}, "low_level": {}}
	require.Equal(t, []string{"high_level", "low_level", "mid_level"}, a.Names())
}
