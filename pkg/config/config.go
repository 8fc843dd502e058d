package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/chenBenjamin97/money-lockon/pkg/stabilizer"
	"github.com/chenBenjamin97/money-lockon/pkg/utils"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type DetectorConfig struct {
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	DurationThreshold   time.Duration `mapstructure:"duration_threshold"`
	ExcludedLabel       string        `mapstructure:"excluded_label"`
	FailFast            bool          `mapstructure:"fail_fast"` //stop the loop on a classification error instead of skipping the frame
}

type CaptureConfig struct {
	Dir       string `mapstructure:"dir"`
	NumMaps   int    `mapstructure:"num_maps"`
	ImageSize int    `mapstructure:"image_size"`
}

type OSCConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Address string `mapstructure:"address"`
}

type ModelConfig struct {
	Path        string            `mapstructure:"path"`
	Classes     string            `mapstructure:"classes"`
	InputSize   int               `mapstructure:"input_size"`
	Layers      map[string]string `mapstructure:"layers"`       //activation name -> network layer name
	OutputLayer string            `mapstructure:"output_layer"` //empty means the network's last layer
}

type CameraConfig struct {
	Device   string `mapstructure:"device"` //device index ("0") or a video file / stream url
	Window   string `mapstructure:"window"`
	Headless bool   `mapstructure:"headless"`
}

type TrainConfig struct {
	Python       string  `mapstructure:"python"`
	Script       string  `mapstructure:"script"`
	DataDir      string  `mapstructure:"data_dir"`
	BatchSize    int     `mapstructure:"batch_size"`
	Epochs       int     `mapstructure:"epochs"`
	ImgSize      int     `mapstructure:"img_size"`
	ClassifierLR float64 `mapstructure:"classifier_lr"`
	FinetuneLR   float64 `mapstructure:"finetune_lr"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"` //empty disables the status API
}

//Config holds every setting of the live loop and the trainer
type Config struct {
	Detector DetectorConfig `mapstructure:"detector"`
	Capture  CaptureConfig  `mapstructure:"capture"`
	OSC      OSCConfig      `mapstructure:"osc"`
	Model    ModelConfig    `mapstructure:"model"`
	Camera   CameraConfig   `mapstructure:"camera"`
	Train    TrainConfig    `mapstructure:"train"`
	HTTP     HTTPConfig     `mapstructure:"http"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("detector.confidence_threshold", utils.DefaultConfidenceThreshold)
	v.SetDefault("detector.duration_threshold", utils.DefaultDurationThreshold)
	v.SetDefault("detector.excluded_label", utils.ExcludedLabel)
	v.SetDefault("detector.fail_fast", false)

	v.SetDefault("capture.dir", "data")
	v.SetDefault("capture.num_maps", utils.NumMapsToSave)
	v.SetDefault("capture.image_size", utils.InputSize)

	v.SetDefault("osc.host", "127.0.0.1")
	v.SetDefault("osc.port", 12345)
	v.SetDefault("osc.address", utils.TriggerAddress)

	v.SetDefault("model.path", "money_resnet_model.onnx")
	v.SetDefault("model.classes", "class_names.txt")
	v.SetDefault("model.input_size", utils.InputSize)
	v.SetDefault("model.layers", utils.DefaultLayers)
	v.SetDefault("model.output_layer", "")

	v.SetDefault("camera.device", "0")
	v.SetDefault("camera.window", "Live Feed - Press Q to Quit")
	v.SetDefault("camera.headless", false)

	v.SetDefault("train.python", "python3")
	v.SetDefault("train.script", "scripts/finetune.py")
	v.SetDefault("train.data_dir", "money_dataset_complete")
	v.SetDefault("train.batch_size", 8)
	v.SetDefault("train.epochs", 15)
	v.SetDefault("train.img_size", utils.InputSize)
	v.SetDefault("train.classifier_lr", 0.001)
	v.SetDefault("train.finetune_lr", 0.0001)

	v.SetDefault("http.port", "")
}

//Load reads configuration from path. With an empty path it looks for 'config.yaml' in the working directory,
//and a missing file there is not an error: the defaults apply. An explicit path has to exist.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("Load: Could not read config file, got '%w'", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("Load: Could not decode config, got '%w'", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

//Default returns the built-in configuration
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	//defaults always decode
	_ = v.Unmarshal(cfg)
	return cfg
}

//Validate reports the first setting that would make the live loop or the trainer misbehave
func (c *Config) Validate() error {
	switch {
	case c.Detector.ConfidenceThreshold < 0 || c.Detector.ConfidenceThreshold >= 1:
		return fmt.Errorf("%w: detector.confidence_threshold must be in [0,1), got %v", ErrInvalidConfig, c.Detector.ConfidenceThreshold)
	case c.Detector.DurationThreshold < 0:
		return fmt.Errorf("%w: detector.duration_threshold must not be negative, got %v", ErrInvalidConfig, c.Detector.DurationThreshold)
	case c.Capture.Dir == "":
		return fmt.Errorf("%w: capture.dir is empty", ErrInvalidConfig)
	case c.Capture.NumMaps <= 0:
		return fmt.Errorf("%w: capture.num_maps must be positive, got %d", ErrInvalidConfig, c.Capture.NumMaps)
	case c.Capture.ImageSize <= 0 || c.Model.InputSize <= 0:
		return fmt.Errorf("%w: image sizes must be positive", ErrInvalidConfig)
	case c.OSC.Port <= 0 || c.OSC.Port > 65535:
		return fmt.Errorf("%w: osc.port out of range, got %d", ErrInvalidConfig, c.OSC.Port)
	case c.Model.Path == "" || c.Model.Classes == "":
		return fmt.Errorf("%w: model.path and model.classes are required", ErrInvalidConfig)
	case c.Train.BatchSize <= 0 || c.Train.Epochs <= 0 || c.Train.ImgSize <= 0:
		return fmt.Errorf("%w: train.batch_size, train.epochs and train.img_size must be positive", ErrInvalidConfig)
	}
	return nil
}

//StabilizerParams returns the detector thresholds in the form the stabilizer takes them
func (c *Config) StabilizerParams() stabilizer.Params {
	return stabilizer.Params{
		ConfidenceThreshold: c.Detector.ConfidenceThreshold,
		DurationThreshold:   c.Detector.DurationThreshold,
		ExcludedLabel:       c.Detector.ExcludedLabel,
	}
}
