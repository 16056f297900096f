package pipeline

import "math"

// DiagnosisResult is the mapped outcome of one prediction vector. Immutable
// once constructed; it lives only for the duration of one response.
type DiagnosisResult struct {
	Class             ClassInfo
	ClassIndex        int
	Confidence        map[string]float64
	PrimaryConfidence float64
}

// MapVector selects the argmax class from a probability vector and converts
// each probability into a percentage with one decimal of precision. Ties are
// broken by the lowest class index. A length mismatch against the label table
// is a configuration fault.
func MapVector(vector []float32, labels LabelTable) (DiagnosisResult, error) {
	if err := labels.Validate(len(vector)); err != nil {
		return DiagnosisResult{}, err
	}

	maxIdx := 0
	maxVal := vector[0]
	confidence := make(map[string]float64, len(vector))
	for i, p := range vector {
		confidence[labels.Classes[i].ConfidenceKey] = toPercent(p)
		if p > maxVal {
			maxVal = p
			maxIdx = i
		}
	}

	return DiagnosisResult{
		Class:             labels.Classes[maxIdx],
		ClassIndex:        maxIdx,
		Confidence:        confidence,
		PrimaryConfidence: toPercent(maxVal),
	}, nil
}

func toPercent(p float32) float64 {
	return math.Round(float64(p)*1000) / 10
}
