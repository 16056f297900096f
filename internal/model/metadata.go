package model

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metadata is the sidecar JSON shipped next to the model artifact. It tells
// the runtime the tensor shapes and class order the model was exported with.
type Metadata struct {
	Version     string   `json:"version"`
	InputName   string   `json:"input_name"`
	OutputName  string   `json:"output_name"`
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

func readMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if meta.InputName == "" {
		meta.InputName = "input"
	}
	if meta.OutputName == "" {
		meta.OutputName = "output"
	}
	if err := meta.validate(); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}

func (m Metadata) validate() error {
	if len(m.InputShape) == 0 || len(m.OutputShape) == 0 {
		return fmt.Errorf("metadata is missing tensor shapes")
	}
	if m.ImageSize <= 0 {
		return fmt.Errorf("metadata image_size must be positive, got %d", m.ImageSize)
	}
	if len(m.Classes) == 0 {
		return fmt.Errorf("metadata declares no classes")
	}
	return nil
}

// NumClasses derives the class count from the output shape, skipping the
// batch dimension.
func (m Metadata) NumClasses() int {
	n := int64(1)
	for _, dim := range m.OutputShape[1:] {
		n *= dim
	}
	return int(n)
}

// PlaceholderMetadata mirrors the brain-scan model's export settings and
// backs the placeholder engine used outside production.
func PlaceholderMetadata() Metadata {
	return Metadata{
		Version:     "placeholder",
		InputName:   "input",
		OutputName:  "output",
		InputShape:  []int64{1, 150, 150, 3},
		OutputShape: []int64{1, 3},
		Classes:     []string{"CONTROL", "AD", "PD"},
		ImageSize:   150,
	}
}
