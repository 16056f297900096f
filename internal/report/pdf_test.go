package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/neurascan/neurascan-api/internal/pipeline"
)

func TestGenerate(t *testing.T) {
	pdf, err := Generate(Input{
		PatientName:  "Jane Doe",
		PatientEmail: "jane@example.com",
		Prediction: pipeline.Prediction{
			Name:           "AD",
			FullName:       "Alzheimer's Disease",
			Description:    "The scan shows patterns consistent with Alzheimer's disease.",
			Recommendation: "Consult with a neurologist.",
			Confidence: map[string]float64{
				"control":   10.0,
				"alzheimer": 85.0,
				"parkinson": 5.0,
			},
			PrimaryConfidence: 85.0,
		},
		Labels:       pipeline.DefaultLabels,
		ModelVersion: "EfficientNetB0",
		GeneratedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("empty PDF output")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("output does not look like a PDF")
	}
}

func TestGenerateHandlesMissingConfidence(t *testing.T) {
	pdf, err := Generate(Input{
		PatientName: "Unknown",
		Prediction: pipeline.Prediction{
			Name:     "CONTROL",
			FullName: "Normal Brain Scan",
		},
		Labels:      pipeline.DefaultLabels,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("empty PDF output")
	}
}
