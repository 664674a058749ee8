package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	vocinspector "github.com/menta2k/voc-inspector"
	"github.com/menta2k/voc-inspector/internal/config"
	"github.com/menta2k/voc-inspector/internal/log"
	"github.com/menta2k/voc-inspector/internal/utils"
	"github.com/menta2k/voc-inspector/pkg/annotation"
	"github.com/menta2k/voc-inspector/pkg/dataset"
	"github.com/menta2k/voc-inspector/pkg/report"
)

func main() {
	var cfgPath, root, imageID, outDir, ext, logFile string
	var top, head int
	var seed uint64
	var crops, verbose bool
	var exclude annotation.Exclude

	flag.StringVar(&cfgPath, "config", "", "JSON config file (default "+config.GetConfigPath()+" if present)")
	flag.StringVar(&root, "root", "", "VOC dataset root containing Annotations/ and JPEGImages/ (skips discovery)")
	flag.StringVar(&imageID, "image", "", "image id to visualize, e.g. 2007_000027.jpg (default: random sample)")
	flag.Uint64Var(&seed, "seed", 0, "random seed for sampling (0 = time based)")
	flag.StringVar(&outDir, "out", "", "output directory (default from config)")
	flag.StringVar(&ext, "ext", "", "output format: jpg|png|webp (default from config)")
	flag.BoolVar(&crops, "crops", false, "also write one image per annotated object")
	flag.IntVar(&top, "top", 0, "number of classes in the report (default from config)")
	flag.IntVar(&head, "head", -1, "number of parsed annotations to preview, 0 disables (default from config)")
	flag.BoolVar(&exclude.Difficult, "exclude-difficult", false, "drop objects marked as difficult")
	flag.BoolVar(&exclude.Truncated, "exclude-truncated", false, "drop objects marked as truncated")
	flag.BoolVar(&exclude.Occluded, "exclude-occluded", false, "drop objects marked as occluded")
	flag.StringVar(&logFile, "log-file", "", "also write logs to this file")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Parse()

	logger := log.NewLogger(log.Options{Verbose: verbose, File: logFile})

	// .env is optional; it only provides VOC_ROOT for this machine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.WithError(err).Warn("failed to read .env")
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Fatal(err)
	}
	cfg.ApplyEnv()
	if outDir != "" {
		cfg.Output.OutputDir = outDir
	}
	if ext != "" {
		cfg.Output.DefaultFormat = ext
	}
	if top > 0 {
		cfg.Report.TopClasses = top
	}
	if head >= 0 {
		cfg.Report.HeadRows = head
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	layout, err := resolveLayout(cfg, root)
	if err != nil {
		logger.WithError(err).Error("VOC dataset not found; set -root, VOC_ROOT or dataset.candidates")
		os.Exit(1)
	}
	logger.WithFields(logrus.Fields{
		"annotations": layout.Annotations(),
		"images":      layout.Images(),
	}).Info("using dataset")

	renderConfig, err := cfg.RendererConfig()
	if err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	inspector := vocinspector.NewWithConfig(layout,
		annotation.Config{Extension: cfg.Dataset.Extension, Logger: logger},
		renderConfig,
	)

	start := time.Now()
	store, failures, err := inspector.Load()
	if err != nil {
		logger.Fatal(err)
	}
	store = store.Filter(exclude.Keep)
	logger.WithFields(logrus.Fields{
		"files":    store.Files(),
		"records":  store.Len(),
		"images":   len(store.Images()),
		"failures": len(failures),
		"elapsed":  time.Since(start).Round(time.Millisecond),
	}).Info("parsed annotations")

	if store.Len() == 0 {
		logger.Error("no annotations found")
		os.Exit(1)
	}

	if err := report.WriteHead(os.Stdout, store.Records(), cfg.Report.HeadRows); err != nil {
		logger.Fatal(err)
	}
	if err := report.Write(os.Stdout, inspector.Summarize(store, failures, cfg.Report.TopClasses)); err != nil {
		logger.Fatal(err)
	}

	if imageID == "" {
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		imageID, _ = inspector.Sample(store, rand.New(rand.NewPCG(seed, seed)))
	}

	records := store.RecordsFor(imageID)
	if len(records) == 0 {
		logger.WithField("image", imageID).Warn("no annotations found for image")
	}

	vis, paths, err := inspector.ProcessImage(store, imageID, vocinspector.SaveOptions{
		Dir:    cfg.Output.OutputDir,
		Format: cfg.Output.DefaultFormat,
		Suffix: cfg.Output.Suffix,
		Crops:  crops,
	})
	if err != nil {
		if vocinspector.IsImageNotFound(err) {
			logger.WithField("image", imageID).Error("image file not found")
			os.Exit(1)
		}
		logger.Fatal(err)
	}
	fmt.Printf("\nImage '%s' with %d bounding boxes:\n", imageID, len(records))
	fmt.Printf("  Image size: %dx%d, Mode: %s\n", vis.Info.Width, vis.Info.Height, vis.Info.Mode)
	for _, p := range paths {
		fmt.Printf("  wrote %s\n", p)
	}
}

// loadConfig reads cfgPath, or the default config file if it exists, or
// falls back to built-in defaults.
func loadConfig(cfgPath string) (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFromFile(cfgPath)
	}
	if def := config.GetConfigPath(); utils.FileExists(def) {
		return config.LoadFromFile(def)
	}
	return config.Default(), nil
}

func resolveLayout(cfg *config.Config, root string) (dataset.Layout, error) {
	if root != "" {
		l := dataset.NewLayout(filepath.Clean(root), cfg.Dataset.AnnotationsDir, cfg.Dataset.ImagesDir)
		return l, l.Validate()
	}
	return dataset.Discover(cfg.Dataset.Candidates, cfg.Dataset.AnnotationsDir, cfg.Dataset.ImagesDir)
}
