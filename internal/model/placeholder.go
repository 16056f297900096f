package model

import (
	"context"

	"github.com/neurascan/neurascan-api/internal/pipeline"
)

// placeholderEngine is an explicit test stand-in. It is only ever built when
// the configuration asks for it, and the handle kind marks it so callers can
// tell it apart from a real model.
type placeholderEngine struct {
	meta Metadata
}

func newPlaceholderEngine(meta Metadata) *placeholderEngine {
	return &placeholderEngine{meta: meta}
}

// Infer produces a deterministic distribution from the tensor contents so
// repeated uploads of the same image give repeatable answers.
func (e *placeholderEngine) Infer(_ context.Context, tensor pipeline.ImageTensor) ([]float32, error) {
	n := e.meta.NumClasses()
	var sum float64
	for _, v := range tensor.Data {
		sum += float64(v)
	}
	primary := int(sum) % n
	if primary < 0 {
		primary += n
	}

	vector := make([]float32, n)
	if n > 1 {
		rest := 0.10 / float32(n-1)
		for i := range vector {
			vector[i] = rest
		}
	}
	vector[primary] = 0.90
	return vector, nil
}

func (e *placeholderEngine) Version() string { return e.meta.Version }
func (e *placeholderEngine) InputSize() int  { return e.meta.ImageSize }
func (e *placeholderEngine) Close() error    { return nil }
