package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// Disclaimer is attached verbatim to every successful analysis.
const Disclaimer = "This AI analysis is for informational purposes only and should not replace professional medical diagnosis. Please consult with a qualified healthcare provider for proper medical evaluation."

// RequestMeta carries the request-scoped facts the assembler embeds in the
// response. It is filled by the transport layer; the pipeline never looks
// past it.
type RequestMeta struct {
	Filename  string
	SizeBytes int64
	UserID    string
}

type Prediction struct {
	Name              string             `json:"name"`
	FullName          string             `json:"full_name"`
	Description       string             `json:"description"`
	Recommendation    string             `json:"recommendation"`
	Confidence        map[string]float64 `json:"confidence"`
	PrimaryConfidence float64            `json:"primary_confidence"`
}

type ResponseMeta struct {
	Filename      string `json:"filename"`
	FileSizeBytes int64  `json:"file_size_bytes"`
	Timestamp     string `json:"timestamp"`
	ModelVersion  string `json:"model_version"`
	UserID        string `json:"user_id"`
	AnalysisID    string `json:"analysis_id"`
}

type ResponseDocument struct {
	Success    bool         `json:"success"`
	Prediction Prediction   `json:"prediction"`
	Metadata   ResponseMeta `json:"metadata"`
	Disclaimer string       `json:"disclaimer"`
}

// FailureDocument is the structured error shape returned for any per-request
// failure. Nothing escapes the pipeline boundary as an uncaught fault.
type FailureDocument struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Assemble builds the final response document. Pure construction: the only
// effects are reading the clock and generating a fresh analysis id.
func Assemble(result DiagnosisResult, meta RequestMeta, modelVersion string) *ResponseDocument {
	return &ResponseDocument{
		Success: true,
		Prediction: Prediction{
			Name:              result.Class.Name,
			FullName:          result.Class.FullName,
			Description:       result.Class.Description,
			Recommendation:    result.Class.Recommendation,
			Confidence:        result.Confidence,
			PrimaryConfidence: result.PrimaryConfidence,
		},
		Metadata: ResponseMeta{
			Filename:      meta.Filename,
			FileSizeBytes: meta.SizeBytes,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			ModelVersion:  modelVersion,
			UserID:        meta.UserID,
			AnalysisID:    uuid.NewString(),
		},
		Disclaimer: Disclaimer,
	}
}
