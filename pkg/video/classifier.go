package video

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/chenBenjamin97/money-lockon/pkg/nn"
	"github.com/chenBenjamin97/money-lockon/pkg/utils"
	"github.com/cyclopcam/logs"
	"gocv.io/x/gocv"
)

//ImageNet statistics the network was fine-tuned with, RGB order
var (
	imageNetMean = [3]float32{0.485, 0.456, 0.406}
	imageNetStd  = [3]float32{0.229, 0.224, 0.225}
)

var ErrUnknownLayer = errors.New("layer not found in network")

//NetClassifier runs an ONNX export of the fine-tuned network through OpenCV's dnn module
type NetClassifier struct {
	log         logs.Log
	net         gocv.Net
	classes     []string
	inputSize   int
	actNames    []string //activation names, sorted
	outNames    []string //network layers to read: one per activation, then the logits
	outputLayer string
}

//NewNetClassifier loads the model at modelPath. layers maps activation names to network layer names;
//outputLayer is the logits layer, empty picks the network's unconnected output.
//The model is run once on a blank frame so that a class list that does not fit the model fails here.
func NewNetClassifier(log logs.Log, modelPath string, classes []string, inputSize int, layers map[string]string, outputLayer string) (*NetClassifier, error) {
	if inputSize <= 0 {
		inputSize = utils.InputSize
	}

	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		return nil, fmt.Errorf("NewNetClassifier: Could not load model '%s'", modelPath)
	}

	c := &NetClassifier{
		log:       log,
		net:       net,
		classes:   classes,
		inputSize: inputSize,
	}

	if outputLayer == "" {
		ids := net.GetUnconnectedOutLayers()
		if len(ids) == 0 {
			net.Close()
			return nil, fmt.Errorf("NewNetClassifier: '%s' has no output layer", modelPath)
		}
		layer := net.GetLayer(ids[0])
		outputLayer = layer.GetName()
		layer.Close()
	}
	c.outputLayer = outputLayer

	known := net.GetLayerNames()
	for name := range layers {
		c.actNames = append(c.actNames, name)
	}
	sort.Strings(c.actNames)
	for _, name := range c.actNames {
		if !utils.InSlice(layers[name], known) {
			net.Close()
			return nil, fmt.Errorf("NewNetClassifier: activation '%s' reads '%s': %w", name, layers[name], ErrUnknownLayer)
		}
		c.outNames = append(c.outNames, layers[name])
	}
	c.outNames = append(c.outNames, outputLayer)

	blank := gocv.NewMatWithSize(inputSize, inputSize, gocv.MatTypeCV8UC3)
	defer blank.Close()
	if _, _, err := c.Classify(blank); err != nil {
		net.Close()
		return nil, fmt.Errorf("NewNetClassifier: Test inference failed, got '%w'", err)
	}

	log.Infof("Classifier: Loaded '%s' for %d classes, output '%s', activations %v", modelPath, len(classes), outputLayer, c.actNames)
	return c, nil
}

//Classes returns the class list, index == model output index
func (c *NetClassifier) Classes() []string {
	return c.classes
}

//normalize applies the per channel mean/std normalisation in place on a 1x3xHxW blob scaled to [0,1]
func normalize(blob *gocv.Mat, size int) error {
	data, err := blob.DataPtrFloat32()
	if err != nil {
		return err
	}
	plane := size * size
	if len(data) != 3*plane {
		return fmt.Errorf("normalize: unexpected blob size %d", len(data))
	}
	for ch := 0; ch < 3; ch++ {
		p := data[ch*plane : (ch+1)*plane]
		for i := range p {
			p[i] = (p[i] - imageNetMean[ch]) / imageNetStd[ch]
		}
	}
	return nil
}

//Classify runs one forward pass. Activations are returned alongside the result; nothing is kept between calls.
func (c *NetClassifier) Classify(frame gocv.Mat) (nn.Result, nn.Activations, error) {
	if frame.Empty() {
		return nn.Result{}, nil, errors.New("Classify: empty frame")
	}

	//the camera delivers BGR, the network was trained on RGB
	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(c.inputSize, c.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()
	if err := normalize(&blob, c.inputSize); err != nil {
		return nn.Result{}, nil, err
	}

	c.net.SetInput(blob, "")
	outs := c.net.ForwardLayers(c.outNames)
	defer func() {
		for i := range outs {
			outs[i].Close()
		}
	}()
	if len(outs) != len(c.outNames) {
		return nn.Result{}, nil, fmt.Errorf("Classify: expected %d outputs, got %d", len(c.outNames), len(outs))
	}

	logits, err := outs[len(outs)-1].DataPtrFloat32()
	if err != nil {
		return nn.Result{}, nil, fmt.Errorf("Classify: Could not read logits, got '%w'", err)
	}
	result, err := nn.Decide(logits, c.classes)
	if err != nil {
		return nn.Result{}, nil, err
	}

	acts := make(nn.Activations, len(c.actNames))
	for i, name := range c.actNames {
		t, err := tensorFromMat(outs[i])
		if err != nil {
			return nn.Result{}, nil, fmt.Errorf("Classify: activation '%s', got '%w'", name, err)
		}
		acts[name] = t
	}

	return result, acts, nil
}

//tensorFromMat copies a blob out of OpenCV memory
func tensorFromMat(m gocv.Mat) (nn.Tensor, error) {
	data, err := m.DataPtrFloat32()
	if err != nil {
		return nn.Tensor{}, err
	}
	own := make([]float32, len(data))
	copy(own, data)
	return nn.TensorFromDims(m.Size(), own)
}

func (c *NetClassifier) Close() error {
	return c.net.Close()
}
