package utils

import "time"

//DefaultConfidenceThreshold is the confidence a classification has to exceed (strictly) to count as a detection
const DefaultConfidenceThreshold = 0.85

//DefaultDurationThreshold is how long a detection has to be held before the system locks on it
const DefaultDurationThreshold = time.Second

//ExcludedLabel is the background class, it is never tracked no matter how confident the model is
const ExcludedLabel = "Not_Money"

//NumMapsToSave is the maximum number of channels exported from every activation layer
const NumMapsToSave = 8

//InputSize is the width and height of the square image the classifier is trained on
const InputSize = 224

//TriggerAddress is the OSC address the lock-on message is sent to
const TriggerAddress = "/trigger"

//SnapshotFileName is the fixed name of the grayscale frame written on every lock-on
const SnapshotFileName = "input.png"

//MapsFileExt is the extension of every per-layer feature maps file
const MapsFileExt = ".csv"

//DefaultLayers maps activation names to the ONNX nodes they are read from: the outputs of resnet50's conv1,
//layer2 and layer4 as named by scripts/finetune.py's export
var DefaultLayers = map[string]string{
	"low_level":  "/conv1/Conv",
	"mid_level":  "/layer2/layer2.3/relu_2/Relu",
	"high_level": "/layer4/layer4.2/relu_2/Relu",
}

//ImageExtensions are the file extensions counted as images in a dataset class directory
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".ppm", ".bmp", ".pgm", ".tif", ".tiff", ".webp"}
