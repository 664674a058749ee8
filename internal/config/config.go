package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/menta2k/voc-inspector/pkg/render"
)

// RootEnv names the environment variable that overrides dataset discovery.
const RootEnv = "VOC_ROOT"

// Config holds the application configuration
type Config struct {
	Dataset DatasetConfig `json:"dataset"`
	Render  RenderConfig  `json:"render"`
	Report  ReportConfig  `json:"report"`
	Output  OutputConfig  `json:"output"`
}

// DatasetConfig describes where to look for the VOC dataset
type DatasetConfig struct {
	// Candidates are probed in order; the first holding both subdirectories wins.
	Candidates     []string `json:"candidates"`
	AnnotationsDir string   `json:"annotations_dir"`
	ImagesDir      string   `json:"images_dir"`
	Extension      string   `json:"extension"`
}

// RenderConfig holds configuration for bounding-box overlays
type RenderConfig struct {
	Color       string `json:"color"`
	StrokeWidth int    `json:"stroke_width"`
	LabelOffset int    `json:"label_offset"`
	CropSize    int    `json:"crop_size"`
}

// ReportConfig holds configuration for dataset statistics
type ReportConfig struct {
	TopClasses int `json:"top_classes"`
	// HeadRows is the number of parsed annotations previewed before the report.
	HeadRows int `json:"head_rows"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	DefaultFormat string `json:"default_format"`
	Quality       int    `json:"quality"`
	OutputDir     string `json:"output_dir"`
	Suffix        string `json:"suffix"`
	// Lossless selects lossless encoding for webp output.
	Lossless bool `json:"lossless"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Candidates:     []string{"./VOC2012_train_val", "../VOC2012_train_val", "./data/VOC2012_train_val"},
			AnnotationsDir: "Annotations",
			ImagesDir:      "JPEGImages",
			Extension:      ".xml",
		},
		Render: RenderConfig{
			Color:       "#ff0000",
			StrokeWidth: 3,
			LabelOffset: 20,
			CropSize:    0,
		},
		Report: ReportConfig{
			TopClasses: 10,
			HeadRows:   5,
		},
		Output: OutputConfig{
			DefaultFormat: "jpg",
			Quality:       90,
			OutputDir:     "./output",
			Suffix:        "_boxes",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from
// the file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv puts the VOC_ROOT directory, when set, ahead of the configured candidates.
func (c *Config) ApplyEnv() {
	root := strings.TrimSpace(os.Getenv(RootEnv))
	if root == "" {
		return
	}
	c.Dataset.Candidates = append([]string{root}, c.Dataset.Candidates...)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Dataset.AnnotationsDir == "" || c.Dataset.ImagesDir == "" {
		return fmt.Errorf("dataset.annotations_dir and dataset.images_dir cannot be empty")
	}

	if c.Dataset.Extension == "" {
		return fmt.Errorf("dataset.extension cannot be empty")
	}

	if _, err := ParseColor(c.Render.Color); err != nil {
		return fmt.Errorf("render.color: %w", err)
	}

	if c.Render.StrokeWidth < 1 || c.Render.StrokeWidth > 50 {
		return fmt.Errorf("render.stroke_width must be between 1 and 50")
	}

	if c.Render.LabelOffset < 0 {
		return fmt.Errorf("render.label_offset cannot be negative")
	}

	if c.Render.CropSize < 0 {
		return fmt.Errorf("render.crop_size cannot be negative")
	}

	if c.Report.TopClasses < 1 {
		return fmt.Errorf("report.top_classes must be positive")
	}

	if c.Report.HeadRows < 0 {
		return fmt.Errorf("report.head_rows cannot be negative")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	switch strings.ToLower(c.Output.DefaultFormat) {
	case "jpg", "jpeg", "png", "webp":
	default:
		return fmt.Errorf("output.default_format must be jpg, png or webp")
	}

	return nil
}

// RendererConfig converts the render and output sections into a renderer
// configuration.
func (c *Config) RendererConfig() (render.Config, error) {
	boxColor, err := ParseColor(c.Render.Color)
	if err != nil {
		return render.Config{}, fmt.Errorf("render.color: %w", err)
	}
	return render.Config{
		Color:       boxColor,
		StrokeWidth: c.Render.StrokeWidth,
		LabelOffset: c.Render.LabelOffset,
		CropSize:    c.Render.CropSize,
		Quality:     c.Output.Quality,
		Lossless:    c.Output.Lossless,
	}, nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "voc-inspector", "config.json")
}
