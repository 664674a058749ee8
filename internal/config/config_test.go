package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should be valid: %v", err)
	}
	if cfg.Render.StrokeWidth != 3 {
		t.Errorf("Expected stroke width 3, got %d", cfg.Render.StrokeWidth)
	}
	if cfg.Dataset.AnnotationsDir != "Annotations" || cfg.Dataset.ImagesDir != "JPEGImages" {
		t.Errorf("Unexpected dataset layout %+v", cfg.Dataset)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty annotations dir", func(c *Config) { c.Dataset.AnnotationsDir = "" }},
		{"empty extension", func(c *Config) { c.Dataset.Extension = "" }},
		{"bad color", func(c *Config) { c.Render.Color = "#12" }},
		{"zero stroke", func(c *Config) { c.Render.StrokeWidth = 0 }},
		{"negative offset", func(c *Config) { c.Render.LabelOffset = -1 }},
		{"negative crop", func(c *Config) { c.Render.CropSize = -1 }},
		{"zero top", func(c *Config) { c.Report.TopClasses = 0 }},
		{"negative head", func(c *Config) { c.Report.HeadRows = -1 }},
		{"quality", func(c *Config) { c.Output.Quality = 101 }},
		{"format", func(c *Config) { c.Output.DefaultFormat = "gif" }},
	}
	for _, tt := range tests {
		cfg := Default()
		tt.modify(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := Default()
	cfg.Dataset.Candidates = []string{"/data/voc"}
	cfg.Report.TopClasses = 5
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if len(loaded.Dataset.Candidates) != 1 || loaded.Dataset.Candidates[0] != "/data/voc" {
		t.Errorf("Candidates not round-tripped: %v", loaded.Dataset.Candidates)
	}
	if loaded.Report.TopClasses != 5 {
		t.Errorf("Expected top classes 5, got %d", loaded.Report.TopClasses)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"render":{"color":"blue"}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Render.Color != "blue" {
		t.Errorf("Expected blue, got %q", cfg.Render.Color)
	}
	if cfg.Render.StrokeWidth != 3 || cfg.Output.Quality != 90 {
		t.Errorf("Defaults lost: %+v %+v", cfg.Render, cfg.Output)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Partial config should validate: %v", err)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(RootEnv, "/mnt/voc")
	cfg := Default()
	n := len(cfg.Dataset.Candidates)
	cfg.ApplyEnv()
	if len(cfg.Dataset.Candidates) != n+1 || cfg.Dataset.Candidates[0] != "/mnt/voc" {
		t.Errorf("VOC_ROOT should be probed first, got %v", cfg.Dataset.Candidates)
	}

	t.Setenv(RootEnv, "")
	cfg = Default()
	cfg.ApplyEnv()
	if len(cfg.Dataset.Candidates) != n {
		t.Errorf("Empty VOC_ROOT should not change candidates, got %v", cfg.Dataset.Candidates)
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#00ff80")
	if err != nil {
		t.Fatal(err)
	}
	if c != (color.NRGBA{0, 255, 128, 255}) {
		t.Errorf("Unexpected color %v", c)
	}
	if c, _ := ParseColor("Red"); c.R != 255 || c.G != 0 {
		t.Errorf("Named colors should be case insensitive, got %v", c)
	}
	if _, err := ParseColor("chartreuse-ish"); err == nil {
		t.Error("Expected error for unknown color")
	}
}

func TestRendererConfig(t *testing.T) {
	cfg := Default()
	cfg.Render.Color = "#0000ff"
	cfg.Render.CropSize = 64
	cfg.Output.Quality = 75
	cfg.Output.Lossless = true

	rc, err := cfg.RendererConfig()
	if err != nil {
		t.Fatalf("RendererConfig failed: %v", err)
	}
	if rc.Color != (color.NRGBA{0, 0, 255, 255}) {
		t.Errorf("Unexpected color %v", rc.Color)
	}
	if rc.StrokeWidth != 3 || rc.LabelOffset != 20 || rc.CropSize != 64 || rc.Quality != 75 || !rc.Lossless {
		t.Errorf("Unexpected renderer config %+v", rc)
	}

	cfg.Render.Color = "mauve"
	if _, err := cfg.RendererConfig(); err == nil {
		t.Error("Expected error for unknown color")
	}
}

func TestLoadLosslessFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"output":{"default_format":"webp","lossless":true}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if !cfg.Output.Lossless || cfg.Output.Suffix != "_boxes" {
		t.Errorf("Unexpected output section %+v", cfg.Output)
	}
}
