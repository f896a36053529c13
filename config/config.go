package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/swdee/go-yolocore/assign"
	"github.com/swdee/go-yolocore/geometry"
	"github.com/swdee/go-yolocore/postprocess"
	"github.com/swdee/go-yolocore/preprocess"
)

// EnvPrefix is the prefix of environment variables overriding the
// configuration, YOLO_DETECT_BOXTHRESHOLD sets detect.boxthreshold
const EnvPrefix = "YOLO_"

// AnchorConfig is an anchor box shape normalized to the input image size
type AnchorConfig struct {
	W float32 `koanf:"w"`
	H float32 `koanf:"h"`
}

// ModelConfig describes the Model input and output grid
type ModelConfig struct {
	Width      int            `koanf:"width"`
	Height     int            `koanf:"height"`
	GridWidth  int            `koanf:"gridwidth"`
	GridHeight int            `koanf:"gridheight"`
	NumClasses int            `koanf:"numclasses"`
	Anchors    []AnchorConfig `koanf:"anchors"`
}

// DetectConfig holds the post processing settings
type DetectConfig struct {
	BoxThreshold  float32 `koanf:"boxthreshold"`
	NMSThreshold  float32 `koanf:"nmsthreshold"`
	MaxObjects    int     `koanf:"maxobjects"`
	ClassAgnostic bool    `koanf:"classagnostic"`
	// Half is set when head output dumps hold float16 values
	Half bool `koanf:"half"`
}

// AssignConfig holds the training target assignment settings
type AssignConfig struct {
	Workers int `koanf:"workers"`
}

// RenderConfig holds the files and seed used to annotate images
type RenderConfig struct {
	LabelsFile string `koanf:"labelsfile"`
	FontFile   string `koanf:"fontfile"`
	ColorSeed  int64  `koanf:"colorseed"`
}

// AppConfig defines the configuration of the command line tools
type AppConfig struct {
	Model  ModelConfig  `koanf:"model"`
	Detect DetectConfig `koanf:"detect"`
	Assign AssignConfig `koanf:"assign"`
	Render RenderConfig `koanf:"render"`
}

// defaults returns the YOLOv2 Pascal VOC settings
func defaults() map[string]any {

	voc := geometry.YOLOv2VOCAnchors()
	anchors := make([]map[string]any, len(voc))

	for i, a := range voc {
		anchors[i] = map[string]any{"w": a.W, "h": a.H}
	}

	return map[string]any{
		"model.width":          416,
		"model.height":         416,
		"model.gridwidth":      13,
		"model.gridheight":     13,
		"model.numclasses":     20,
		"model.anchors":        anchors,
		"detect.boxthreshold":  0.3,
		"detect.nmsthreshold":  0.5,
		"detect.maxobjects":    10,
		"detect.classagnostic": false,
		"detect.half":          false,
		"assign.workers":       1,
		"render.labelsfile":    "data/voc_classes.txt",
		"render.fontfile":      "data/FiraMono-Medium.otf",
		"render.colorseed":     10101,
	}
}

// Load builds the configuration from the defaults, then the YAML file at
// filePath if one is given, then YOLO_ prefixed environment variables
func Load(filePath string) (*AppConfig, error) {

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if filePath != "" {
		if err := k.Load(file.Provider(filePath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	cfg := &AppConfig{}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings are usable
func (c *AppConfig) Validate() error {

	switch {
	case c.Model.Width <= 0 || c.Model.Height <= 0:
		return fmt.Errorf("invalid model input %dx%d", c.Model.Width, c.Model.Height)
	case c.Model.GridWidth <= 0 || c.Model.GridHeight <= 0:
		return fmt.Errorf("invalid grid %dx%d", c.Model.GridWidth, c.Model.GridHeight)
	case c.Model.NumClasses <= 0:
		return fmt.Errorf("invalid number of classes %d", c.Model.NumClasses)
	case len(c.Model.Anchors) == 0:
		return fmt.Errorf("no anchors configured")
	case c.Detect.BoxThreshold < 0 || c.Detect.BoxThreshold > 1:
		return fmt.Errorf("box threshold %f outside [0, 1]", c.Detect.BoxThreshold)
	case c.Detect.NMSThreshold < 0 || c.Detect.NMSThreshold > 1:
		return fmt.Errorf("nms threshold %f outside [0, 1]", c.Detect.NMSThreshold)
	}

	return nil
}

// Anchors returns the configured anchor boxes
func (c *AppConfig) Anchors() []geometry.Anchor {

	anchors := make([]geometry.Anchor, len(c.Model.Anchors))

	for i, a := range c.Model.Anchors {
		anchors[i] = geometry.Anchor{W: a.W, H: a.H}
	}

	return anchors
}

// InputShape returns the Model input size
func (c *AppConfig) InputShape() preprocess.Shape {
	return preprocess.Shape{Width: c.Model.Width, Height: c.Model.Height}
}

// YOLOv2Params returns the post processing parameters
func (c *AppConfig) YOLOv2Params() postprocess.YOLOv2Params {
	return postprocess.YOLOv2Params{
		Anchors:         c.Anchors(),
		GridWidth:       c.Model.GridWidth,
		GridHeight:      c.Model.GridHeight,
		BoxThreshold:    c.Detect.BoxThreshold,
		NMSThreshold:    c.Detect.NMSThreshold,
		ObjectClassNum:  c.Model.NumClasses,
		MaxObjectNumber: c.Detect.MaxObjects,
		ClassAgnostic:   c.Detect.ClassAgnostic,
	}
}

// AssignParams returns the training target assignment parameters
func (c *AppConfig) AssignParams() assign.Params {
	return assign.Params{
		Anchors:    c.Anchors(),
		Grid:       assign.GridSpec{Width: c.Model.GridWidth, Height: c.Model.GridHeight},
		NumClasses: c.Model.NumClasses,
		Workers:    c.Assign.Workers,
	}
}
