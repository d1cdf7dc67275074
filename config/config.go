// Package config loads the YAML configuration of the example programs
package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/swdee/go-darknet"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Predict PredictConfig `yaml:"predict"`
	Pool    PoolConfig    `yaml:"pool"`
	Output  OutputConfig  `yaml:"output"`
	Log     LogConfig     `yaml:"log"`
}

// ModelConfig are the darknet model files
type ModelConfig struct {
	Cfg     string `yaml:"cfg"`
	Weights string `yaml:"weights"`
	// Labels is optional, one class name per line
	Labels string `yaml:"labels"`
}

// PredictConfig are the detection thresholds
type PredictConfig struct {
	ObjectnessThreshold float32  `yaml:"objectness_threshold"`
	HierThreshold       float32  `yaml:"hier_threshold"`
	ClassThreshold      *float32 `yaml:"class_threshold"`
	IoUThreshold        float32  `yaml:"iou_threshold"`
	LetterBox           bool     `yaml:"letterbox"`
	// NMSKind overrides the output layer's method, eg: "greedynms"
	NMSKind string `yaml:"nms_kind"`
}

// PoolConfig sizes the network pool and pins it to CPU cores
type PoolConfig struct {
	Size     int   `yaml:"size"`
	CPUCores []int `yaml:"cpu_cores"`
}

// OutputConfig controls what is written for each processed image
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	SaveCrops bool   `yaml:"save_crops"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns the configuration used for any value a file leaves out
func Default() Config {

	p := darknet.DefaultPredictParams()

	return Config{
		Predict: PredictConfig{
			ObjectnessThreshold: p.ObjectnessThreshold,
			HierThreshold:       p.HierThreshold,
			IoUThreshold:        p.IoUThreshold,
		},
		Pool: PoolConfig{
			Size: 1,
		},
		Output: OutputConfig{
			Dir: "./out",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load reads and parses the configuration file over the defaults.  The
// result is not validated
func Load(path string) (*Config, error) {

	data, err := os.ReadFile(path)

	if err != nil {
		return nil, errors.Wrapf(darknet.ErrIO, "failed to read configuration file: %v", err)
	}

	cfg := Default()

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration %s: %w", path, err)
	}

	return &cfg, nil
}

// Validate checks the configuration and returns every problem found
// combined into one error
func (c *Config) Validate() error {

	var err error

	if c.Model.Cfg == "" {
		err = multierr.Append(err, errors.New("model.cfg must be set"))
	}

	if c.Model.Weights == "" {
		err = multierr.Append(err, errors.New("model.weights must be set"))
	}

	err = multierr.Append(err, unitInterval("predict.objectness_threshold", c.Predict.ObjectnessThreshold))
	err = multierr.Append(err, unitInterval("predict.hier_threshold", c.Predict.HierThreshold))
	err = multierr.Append(err, unitInterval("predict.iou_threshold", c.Predict.IoUThreshold))

	if c.Predict.ClassThreshold != nil {
		err = multierr.Append(err, unitInterval("predict.class_threshold", *c.Predict.ClassThreshold))
	}

	if c.Predict.NMSKind != "" {
		if _, ok := darknet.ParseNMSKind(c.Predict.NMSKind); !ok {
			err = multierr.Append(err, fmt.Errorf("predict.nms_kind %q is not one of default, greedynms, diounms, cornersnms",
				c.Predict.NMSKind))
		}
	}

	if c.Pool.Size < 1 {
		err = multierr.Append(err, fmt.Errorf("pool.size must be at least 1, got %d", c.Pool.Size))
	}

	for _, core := range c.Pool.CPUCores {
		if core < 0 {
			err = multierr.Append(err, fmt.Errorf("pool.cpu_cores has negative core %d", core))
		}
	}

	if _, lerr := zapcore.ParseLevel(c.Log.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("log.level: %w", lerr))
	}

	if c.Log.Format != "json" && c.Log.Format != "console" {
		err = multierr.Append(err, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	return err
}

// PredictParams converts the thresholds for Network.Predict.  The config
// must be valid
func (c *Config) PredictParams() darknet.PredictParams {

	p := darknet.PredictParams{
		ObjectnessThreshold: c.Predict.ObjectnessThreshold,
		HierThreshold:       c.Predict.HierThreshold,
		IoUThreshold:        c.Predict.IoUThreshold,
		LetterBox:           c.Predict.LetterBox,
	}

	if c.Predict.ClassThreshold != nil {
		v := *c.Predict.ClassThreshold
		p.ClassThreshold = &v
	}

	if kind, ok := darknet.ParseNMSKind(c.Predict.NMSKind); ok {
		p.NMSKind = &kind
	}

	return p
}

// unitInterval returns an error if v is outside of [0,1]
func unitInterval(name string, v float32) error {

	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be within 0 and 1, got %g", name, v)
	}

	return nil
}
