package pipeline

import (
	"errors"
	"math"
	"testing"
)

func TestMapVectorExample(t *testing.T) {
	result, err := MapVector([]float32{0.85, 0.10, 0.05}, DefaultLabels)
	if err != nil {
		t.Fatalf("MapVector failed: %v", err)
	}
	if result.Class.Name != "CONTROL" {
		t.Fatalf("primary label = %s, want CONTROL", result.Class.Name)
	}
	want := map[string]float64{"control": 85.0, "alzheimer": 10.0, "parkinson": 5.0}
	for key, pct := range want {
		if got := result.Confidence[key]; got != pct {
			t.Errorf("confidence[%s] = %.1f, want %.1f", key, got, pct)
		}
	}
	if result.PrimaryConfidence != 85.0 {
		t.Errorf("primary confidence = %.1f, want 85.0", result.PrimaryConfidence)
	}
}

func TestMapVectorArgmax(t *testing.T) {
	cases := []struct {
		name      string
		vector    []float32
		wantIdx   int
		wantLabel string
	}{
		{"alzheimer_wins", []float32{0.10, 0.80, 0.10}, 1, "AD"},
		{"parkinson_wins", []float32{0.05, 0.15, 0.80}, 2, "PD"},
		{"tie_lowest_index", []float32{0.40, 0.40, 0.20}, 0, "CONTROL"},
		{"three_way_tie", []float32{1.0 / 3, 1.0 / 3, 1.0 / 3}, 0, "CONTROL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := MapVector(tc.vector, DefaultLabels)
			if err != nil {
				t.Fatalf("MapVector failed: %v", err)
			}
			if result.ClassIndex != tc.wantIdx {
				t.Errorf("class index = %d, want %d", result.ClassIndex, tc.wantIdx)
			}
			if result.Class.Name != tc.wantLabel {
				t.Errorf("label = %s, want %s", result.Class.Name, tc.wantLabel)
			}
		})
	}
}

func TestMapVectorPercentagesSum(t *testing.T) {
	vectors := [][]float32{
		{0.85, 0.10, 0.05},
		{0.333, 0.333, 0.334},
		{0.999, 0.0005, 0.0005},
	}
	for _, vector := range vectors {
		result, err := MapVector(vector, DefaultLabels)
		if err != nil {
			t.Fatalf("MapVector failed: %v", err)
		}
		var sum float64
		for _, pct := range result.Confidence {
			sum += pct
		}
		if math.Abs(sum-100.0) > 0.2 {
			t.Errorf("percentages for %v sum to %.2f, want ~100", vector, sum)
		}
	}
}

func TestMapVectorLengthMismatch(t *testing.T) {
	_, err := MapVector([]float32{0.5, 0.5}, DefaultLabels)
	if !errors.Is(err, ErrConfigMismatch) {
		t.Fatalf("expected ErrConfigMismatch, got %v", err)
	}
}
