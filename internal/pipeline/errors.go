package pipeline

import "errors"

var (
	// ErrModelUnavailable means no usable model handle exists right now.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInvalidImage covers undecodable, oversized or unsupported uploads.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInferenceFailure means the runtime call itself failed.
	ErrInferenceFailure = errors.New("inference failed")

	// ErrConfigMismatch means the class table and the model output disagree.
	// This is a configuration fault, not a per-request condition.
	ErrConfigMismatch = errors.New("class table does not match model output")
)
