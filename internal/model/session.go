package model

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/neurascan/neurascan-api/internal/pipeline"
)

var (
	runtimeOnce sync.Once
	runtimeErr  error
)

// ensureRuntime initializes the ONNX runtime environment once per process.
// It is never torn down before exit; reloads reuse the same environment.
func ensureRuntime() error {
	runtimeOnce.Do(func() {
		if path := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); path != "" {
			ort.SetSharedLibraryPath(path)
		}
		runtimeErr = ort.InitializeEnvironment()
	})
	return runtimeErr
}

// onnxEngine wraps a DynamicAdvancedSession. Tensors are created per call so
// concurrent inferences never share buffers.
type onnxEngine struct {
	session *ort.DynamicAdvancedSession
	meta    Metadata
}

func newONNXEngine(modelPath string, meta Metadata) (*onnxEngine, error) {
	if err := ensureRuntime(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	info, err := os.Stat(modelPath)
	if err != nil {
		return nil, fmt.Errorf("model file not found at %s: %w", modelPath, err)
	}
	if info.IsDir() || info.Size() == 0 {
		return nil, fmt.Errorf("model path %s is not a usable artifact", modelPath)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{meta.InputName}, []string{meta.OutputName}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &onnxEngine{session: session, meta: meta}, nil
}

func (e *onnxEngine) Infer(ctx context.Context, tensor pipeline.ImageTensor) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	expected := int64(1)
	for _, dim := range e.meta.InputShape {
		expected *= dim
	}
	if int64(len(tensor.Data)) != expected {
		return nil, fmt.Errorf("tensor has %d values, model expects %d", len(tensor.Data), expected)
	}

	input, err := ort.NewTensor(ort.NewShape(e.meta.InputShape...), tensor.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(e.meta.OutputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	if err := e.session.Run(
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
	); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	vector := make([]float32, len(output.GetData()))
	copy(vector, output.GetData())
	return vector, nil
}

func (e *onnxEngine) Version() string { return e.meta.Version }
func (e *onnxEngine) InputSize() int  { return e.meta.ImageSize }

func (e *onnxEngine) Close() error {
	if e.session != nil {
		e.session.Destroy()
		e.session = nil
	}
	return nil
}
