package pipeline

import "fmt"

// ClassInfo describes one disease class in the model's output order.
type ClassInfo struct {
	Name           string
	FullName       string
	Description    string
	Recommendation string
	// ConfidenceKey is the key used for this class in the response
	// confidence map, e.g. "alzheimer" for AD.
	ConfidenceKey string
}

// LabelTable maps model output indices to class information. The order must
// match the order of the model's output vector.
type LabelTable struct {
	Classes []ClassInfo
}

// DefaultLabels matches the brain-scan classifier: index 0 CONTROL,
// index 1 AD, index 2 PD.
var DefaultLabels = LabelTable{
	Classes: []ClassInfo{
		{
			Name:           "CONTROL",
			FullName:       "Normal Brain Scan",
			Description:    "The brain scan appears normal with no signs of neurological disorders.",
			Recommendation: "Continue regular health monitoring. Maintain a healthy lifestyle with proper diet, exercise, and mental stimulation.",
			ConfidenceKey:  "control",
		},
		{
			Name:           "AD",
			FullName:       "Alzheimer's Disease",
			Description:    "The scan shows patterns consistent with Alzheimer's disease, characterized by brain tissue changes.",
			Recommendation: "Consult with a neurologist for comprehensive evaluation and potential treatment options. Early intervention may help manage symptoms.",
			ConfidenceKey:  "alzheimer",
		},
		{
			Name:           "PD",
			FullName:       "Parkinson's Disease",
			Description:    "The scan indicates patterns associated with Parkinson's disease, affecting movement and motor functions.",
			Recommendation: "Schedule an appointment with a movement disorder specialist. Physical therapy and medication may help manage symptoms.",
			ConfidenceKey:  "parkinson",
		},
	},
}

// Validate checks the table against the number of classes the model emits.
func (t LabelTable) Validate(numClasses int) error {
	if len(t.Classes) != numClasses {
		return fmt.Errorf("%w: %d labels for %d model classes", ErrConfigMismatch, len(t.Classes), numClasses)
	}
	for i, c := range t.Classes {
		if c.Name == "" || c.ConfidenceKey == "" {
			return fmt.Errorf("%w: label %d is incomplete", ErrConfigMismatch, i)
		}
	}
	return nil
}
