package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Engine runs one inference against a loaded model. Implementations must be
// safe for concurrent use and must not be mutated by Infer.
type Engine interface {
	Infer(ctx context.Context, tensor ImageTensor) ([]float32, error)
	Version() string
	InputSize() int
}

// HandleSource hands out the currently live engine. Acquire returns
// ErrModelUnavailable when no usable handle exists.
type HandleSource interface {
	Acquire() (Engine, error)
}

// Pipeline transforms raw image bytes into a diagnosis response document.
// It knows nothing about HTTP, auth or storage.
type Pipeline struct {
	source   HandleSource
	labels   LabelTable
	maxBytes int64
	logger   *zap.Logger
}

func New(source HandleSource, labels LabelTable, maxBytes int64, logger *zap.Logger) *Pipeline {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &Pipeline{
		source:   source,
		labels:   labels,
		maxBytes: maxBytes,
		logger:   logger.Named("pipeline"),
	}
}

// Analyze runs the full chain: acquire handle, preprocess, infer, map,
// assemble. Every failure comes back wrapped in one of the sentinel errors.
func (p *Pipeline) Analyze(ctx context.Context, raw []byte, meta RequestMeta) (*ResponseDocument, error) {
	engine, err := p.source.Acquire()
	if err != nil {
		if !errors.Is(err, ErrModelUnavailable) {
			err = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		return nil, err
	}

	constraints := DefaultConstraints(engine.InputSize())
	constraints.MaxBytes = p.maxBytes
	tensor, err := Preprocess(raw, constraints)
	if err != nil {
		return nil, err
	}

	vector, err := engine.Infer(ctx, tensor)
	if err != nil {
		if errors.Is(err, ErrInferenceFailure) || errors.Is(err, ErrModelUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInferenceFailure, err)
	}

	result, err := MapVector(vector, p.labels)
	if err != nil {
		p.logger.Error("class table out of sync with model output",
			zap.Int("vector_len", len(vector)),
			zap.Int("labels", len(p.labels.Classes)))
		return nil, err
	}

	doc := Assemble(result, meta, engine.Version())
	p.logger.Info("analysis complete",
		zap.String("analysis_id", doc.Metadata.AnalysisID),
		zap.String("class", result.Class.Name),
		zap.Float64("primary_confidence", result.PrimaryConfidence))
	return doc, nil
}

// Failure converts a pipeline error into the structured failure document.
func Failure(err error) *FailureDocument {
	doc := &FailureDocument{Success: false, Message: err.Error()}
	switch {
	case errors.Is(err, ErrModelUnavailable):
		doc.Error = "Model not available"
	case errors.Is(err, ErrInvalidImage):
		doc.Error = "Invalid image"
	case errors.Is(err, ErrConfigMismatch):
		doc.Error = "Model configuration error"
	case errors.Is(err, ErrInferenceFailure):
		doc.Error = "Prediction failed"
	default:
		doc.Error = "Internal server error"
	}
	return doc
}
