package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetFileExtension(t *testing.T) {
	cases := map[string]string{
		"a.JPG":         "jpg",
		"dir/b.tar.xml": "xml",
		"noext":         "",
	}
	for in, want := range cases {
		if got := GetFileExtension(in); got != want {
			t.Errorf("GetFileExtension(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestIsImageFile(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.webp", "d.png"} {
		if !IsImageFile(name) {
			t.Errorf("%s should be an image file", name)
		}
	}
	for _, name := range []string{"a.xml", "2007_000027", "notes.txt"} {
		if IsImageFile(name) {
			t.Errorf("%s should not be an image file", name)
		}
	}
}

func TestGenerateOutputFilename(t *testing.T) {
	got := GenerateOutputFilename("JPEGImages/2007_000027.jpg", "out", "_boxes", "png")
	want := filepath.Join("out", "2007_000027_boxes.png")
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	got = GenerateOutputFilename("x.webp", "out", "", "")
	if got != filepath.Join("out", "x.webp") {
		t.Errorf("Format should default to input extension, got %q", got)
	}
}

func TestDirAndFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if !DirExists(dir) || DirExists(file) || DirExists(filepath.Join(dir, "missing")) {
		t.Error("DirExists returned unexpected results")
	}
	if !FileExists(file) || FileExists(dir) || FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists returned unexpected results")
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if !DirExists(dir) {
		t.Error("Directory was not created")
	}
	if err := EnsureDir(dir); err != nil {
		t.Errorf("EnsureDir on existing dir failed: %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename("potted plant/1"); got != "potted_plant_1" {
		t.Errorf("Unexpected sanitized name %q", got)
	}
	if got := SanitizeFilename("..hidden."); got != "hidden" {
		t.Errorf("Unexpected sanitized name %q", got)
	}
}
