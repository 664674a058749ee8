package vocinspector

import (
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/voc-inspector/pkg/dataset"
)

const sampleDoc = `<annotation>
	<filename>scene.png</filename>
	<size><width>120</width><height>80</height><depth>3</depth></size>
	<object>
		<name>cat</name>
		<bndbox><xmin>10.0</xmin><ymin>20.0</ymin><xmax>49.0</xmax><ymax>59.0</ymax></bndbox>
	</object>
	<object>
		<name>potted plant</name>
		<bndbox><xmin>60</xmin><ymin>5</ymin><xmax>99</xmax><ymax>74</ymax></bndbox>
	</object>
</annotation>`

// createTestDataset lays out a one-image VOC dataset under a temp dir
func createTestDataset(t *testing.T) dataset.Layout {
	t.Helper()
	root := t.TempDir()
	layout := dataset.NewLayout(root, "", "")
	for _, dir := range []string{layout.Annotations(), layout.Images()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(layout.Annotations(), "scene.xml"), []byte(sampleDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			img.Set(x, y, color.RGBA{40, 80, 120, 255})
		}
	}
	f, err := os.Create(filepath.Join(layout.Images(), "scene.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return layout
}

func TestNew(t *testing.T) {
	inspector := New(dataset.NewLayout("/voc", "", ""))
	if inspector == nil {
		t.Fatal("New() returned nil")
	}
	if inspector.loader == nil || inspector.renderer == nil || inspector.logger == nil {
		t.Error("components should be initialized")
	}
	if inspector.Layout().Root != "/voc" {
		t.Errorf("Unexpected layout %+v", inspector.Layout())
	}
}

func TestLoadAndSummarize(t *testing.T) {
	inspector := New(createTestDataset(t))

	store, failures, err := inspector.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(failures) != 0 {
		t.Errorf("Expected no failures, got %v", failures)
	}

	s := inspector.Summarize(store, failures, 10)
	if s.Total != 2 || s.UniqueImages != 1 || s.AveragePerImage != 2 {
		t.Errorf("Unexpected summary %+v", s)
	}
}

func TestVisualize(t *testing.T) {
	inspector := New(createTestDataset(t))
	store, _, err := inspector.Load()
	if err != nil {
		t.Fatal(err)
	}

	vis, err := inspector.Visualize(store, "scene.png")
	if err != nil {
		t.Fatalf("Visualize failed: %v", err)
	}
	if len(vis.Records) != 2 {
		t.Errorf("Expected 2 records, got %d", len(vis.Records))
	}
	if vis.Info.Width != 120 || vis.Info.Height != 80 {
		t.Errorf("Unexpected info %+v", vis.Info)
	}
	if got := vis.Image.NRGBAAt(10, 40); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("Expected box edge at (10,40), got %v", got)
	}

	if _, err := inspector.Visualize(store, "missing.png"); !IsImageNotFound(err) {
		t.Errorf("Expected image not found error, got %v", err)
	}
}

func TestProcessImage(t *testing.T) {
	inspector := New(createTestDataset(t))
	store, _, err := inspector.Load()
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out")

	vis, paths, err := inspector.ProcessImage(store, "scene.png", SaveOptions{Dir: out, Format: "png", Crops: true})
	if err != nil {
		t.Fatalf("ProcessImage failed: %v", err)
	}
	if vis.Info.Width != 120 || vis.Info.Height != 80 || vis.Info.Mode == "" {
		t.Errorf("Unexpected image info %+v", vis.Info)
	}
	want := []string{
		filepath.Join(out, "scene_boxes.png"),
		filepath.Join(out, "scene_00_cat.png"),
		filepath.Join(out, "scene_01_potted_plant.png"),
	}
	if len(paths) != len(want) {
		t.Fatalf("Expected %v, got %v", want, paths)
	}
	for i, p := range want {
		if paths[i] != p {
			t.Errorf("Expected %s, got %s", p, paths[i])
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("Output %s not written: %v", p, err)
		}
	}
}

func TestProcessImageSuffix(t *testing.T) {
	inspector := New(createTestDataset(t))
	store, _, err := inspector.Load()
	if err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()

	_, paths, err := inspector.ProcessImage(store, "scene.png", SaveOptions{Dir: out, Format: "jpg", Suffix: "_overlay"})
	if err != nil {
		t.Fatalf("ProcessImage failed: %v", err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(out, "scene_overlay.jpg") {
		t.Errorf("Expected only scene_overlay.jpg, got %v", paths)
	}
}

func TestSample(t *testing.T) {
	inspector := New(createTestDataset(t))
	store, _, err := inspector.Load()
	if err != nil {
		t.Fatal(err)
	}

	id, ok := inspector.Sample(store, rand.New(rand.NewPCG(1, 2)))
	if !ok || id != "scene.png" {
		t.Errorf("Expected scene.png, got %q %v", id, ok)
	}

	empty, _, err := New(dataset.NewLayout(t.TempDir(), ".", ".")).Load()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := inspector.Sample(empty, rand.New(rand.NewPCG(1, 2))); ok {
		t.Error("Sample on an empty store should report false")
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() != Version {
		t.Errorf("Expected %s, got %s", Version, GetVersion())
	}
}
