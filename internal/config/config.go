package config

import (
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Data source kinds.
const (
	SourceLocal   = "local"
	SourceMounted = "mounted"
)

// Result modes.
const (
	ModeHistory = "history"
	ModeSummary = "summary"
)

// Reporters.
const (
	ReporterLoss    = "loss"
	ReporterExplore = "explore"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatHTML = "html"
)

// Config captures the runtime knobs for a sweep.
type Config struct {
	DataSource     string `yaml:"data_source"`
	DataDir        string `yaml:"data_dir"`
	MountPoint     string `yaml:"mount_point"`
	TrainFile      string `yaml:"train_file"`
	ValidationFile string `yaml:"validation_file"`
	NumClasses     int    `yaml:"num_classes"`

	HiddenUnits  []int   `yaml:"hidden_units"`
	Epochs       int     `yaml:"epochs"`
	BatchSize    int     `yaml:"batch_size"`
	LearningRate float64 `yaml:"learning_rate"`
	Seed         int64   `yaml:"seed"`

	ResultMode string   `yaml:"result_mode"`
	Reporter   string   `yaml:"reporter"`
	OutputDir  string   `yaml:"output_dir"`
	Formats    []string `yaml:"formats"`
	Show       bool     `yaml:"show"`
	Progress   bool     `yaml:"progress"`

	// baseDir is the directory relative data paths resolve against: the
	// directory holding the config file, or the working directory.
	baseDir string
}

// Overrides captures CLI supplied values.
type Overrides struct {
	DataSource  string
	DataDir     string
	MountPoint  string
	HiddenUnits []int
	Epochs      int
	BatchSize   int
	Seed        int64
	ResultMode  string
	Reporter    string
	OutputDir   string
	Show        bool
	Progress    bool
}

// Default returns the configuration of the reference experiment.
func Default() *Config {
	return &Config{
		DataSource:     SourceLocal,
		DataDir:        "data",
		MountPoint:     "/content/drive",
		TrainFile:      "largeTrain.csv",
		ValidationFile: "largeValidation.csv",
		NumClasses:     10,
		HiddenUnits:    []int{5, 20, 50, 100, 200},
		Epochs:         50,
		BatchSize:      32,
		LearningRate:   0.01,
		ResultMode:     ModeHistory,
		Reporter:       ReporterLoss,
		OutputDir:      "out",
		Formats:        []string{FormatPNG, FormatHTML},
		baseDir:        ".",
	}
}

// Load reads a Config from YAML on top of Default and validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	cfg := Default()
	if err := decode(f, cfg); err != nil {
		return nil, errors.WithMessagef(err, "parse config %q", path)
	}
	cfg.baseDir = filepath.Dir(path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataSource != "" {
		c.DataSource = o.DataSource
	}
	if o.DataDir != "" {
		c.DataDir = o.DataDir
	}
	if o.MountPoint != "" {
		c.MountPoint = o.MountPoint
	}
	if len(o.HiddenUnits) > 0 {
		c.HiddenUnits = slices.Clone(o.HiddenUnits)
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.ResultMode != "" {
		c.ResultMode = o.ResultMode
	}
	if o.Reporter != "" {
		c.Reporter = o.Reporter
	}
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.Show {
		c.Show = true
	}
	if o.Progress {
		c.Progress = true
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch c.DataSource {
	case SourceLocal:
	case SourceMounted:
		if c.MountPoint == "" {
			return errors.New("mount_point must be set for a mounted data source")
		}
	default:
		return errors.Errorf("unknown data_source %q (want %q or %q)", c.DataSource, SourceLocal, SourceMounted)
	}
	if c.NumClasses < 2 {
		return errors.Errorf("num_classes must be >= 2 (got %d)", c.NumClasses)
	}
	if len(c.HiddenUnits) == 0 {
		return errors.New("hidden_units must list at least one width")
	}
	for _, u := range c.HiddenUnits {
		if u <= 0 {
			return errors.Errorf("hidden_units must be > 0 (got %d)", u)
		}
	}
	if c.Epochs <= 0 {
		return errors.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return errors.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LearningRate <= 0 {
		return errors.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.ResultMode != ModeHistory && c.ResultMode != ModeSummary {
		return errors.Errorf("unknown result_mode %q", c.ResultMode)
	}
	if c.Reporter != ReporterLoss && c.Reporter != ReporterExplore {
		return errors.Errorf("unknown reporter %q", c.Reporter)
	}
	for _, f := range c.Formats {
		if f != FormatPNG && f != FormatSVG && f != FormatHTML {
			return errors.Errorf("unknown output format %q", f)
		}
	}
	if c.Show && !slices.Contains(c.Formats, FormatHTML) {
		return errors.Errorf("show needs %q in formats (got %v)", FormatHTML, c.Formats)
	}
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	if c.baseDir == "" {
		c.baseDir = "."
	}
	return nil
}
