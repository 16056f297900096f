package model

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadMetadata(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meta.json")
	raw := `{
		"version": "EfficientNetB0",
		"input_shape": [1, 150, 150, 3],
		"output_shape": [1, 3],
		"classes": ["CONTROL", "AD", "PD"],
		"image_size": 150
	}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("failed to write metadata: %v", err)
	}

	meta, err := readMetadata(path)
	if err != nil {
		t.Fatalf("readMetadata failed: %v", err)
	}
	if meta.Version != "EfficientNetB0" {
		t.Errorf("version = %q", meta.Version)
	}
	if meta.InputName != "input" || meta.OutputName != "output" {
		t.Errorf("tensor name defaults not applied: %q/%q", meta.InputName, meta.OutputName)
	}
	if meta.NumClasses() != 3 {
		t.Errorf("NumClasses = %d, want 3", meta.NumClasses())
	}
}

func TestReadMetadataRejectsIncomplete(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"no_shapes", `{"classes": ["A"], "image_size": 150}`},
		{"no_classes", `{"input_shape": [1, 3], "output_shape": [1, 3], "image_size": 150}`},
		{"bad_image_size", `{"input_shape": [1, 3], "output_shape": [1, 3], "classes": ["A"], "image_size": 0}`},
		{"not_json", `not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "meta.json")
			if err := os.WriteFile(path, []byte(tc.raw), 0o644); err != nil {
				t.Fatalf("failed to write metadata: %v", err)
			}
			if _, err := readMetadata(path); err == nil {
				t.Fatal("readMetadata accepted incomplete metadata")
			}
		})
	}
}

func TestPlaceholderMetadata(t *testing.T) {
	meta := PlaceholderMetadata()
	if err := meta.validate(); err != nil {
		t.Fatalf("placeholder metadata invalid: %v", err)
	}
	if meta.NumClasses() != 3 {
		t.Errorf("NumClasses = %d, want 3", meta.NumClasses())
	}
}
