package model

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/neurascan/neurascan-api/internal/pipeline"
)

// Kind distinguishes a real model from an explicit test stand-in.
type Kind int

const (
	KindReal Kind = iota
	KindPlaceholder
)

func (k Kind) String() string {
	if k == KindPlaceholder {
		return "placeholder"
	}
	return "real"
}

// State tracks the lifecycle of the process-wide model handle.
type State int32

const (
	StateUnloaded State = iota
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "unloaded"
	}
}

type engine interface {
	pipeline.Engine
	Close() error
}

// retireGrace is how long a replaced handle stays alive so inferences that
// already acquired it can finish before the underlying session is destroyed.
const retireGrace = 30 * time.Second

// Handle is one loaded classifier.
type Handle struct {
	engine   engine
	kind     Kind
	meta     Metadata
	loadedAt time.Time

	closeOnce sync.Once
}

func (h *Handle) Infer(ctx context.Context, tensor pipeline.ImageTensor) ([]float32, error) {
	return h.engine.Infer(ctx, tensor)
}

func (h *Handle) Version() string { return h.meta.Version }
func (h *Handle) InputSize() int  { return h.meta.ImageSize }
func (h *Handle) Kind() Kind      { return h.kind }

// retire tears the handle down after the grace period. A zero delay closes
// immediately; that is only safe at process shutdown.
func (h *Handle) retire(after time.Duration) {
	if after <= 0 {
		h.close()
		return
	}
	time.AfterFunc(after, h.close)
}

func (h *Handle) close() {
	h.closeOnce.Do(func() {
		_ = h.engine.Close()
	})
}

// Config tells the manager where the model lives and whether a placeholder
// stand-in was explicitly requested.
type Config struct {
	ModelPath      string
	MetadataPath   string
	Labels         pipeline.LabelTable
	UsePlaceholder bool
}

// Status is the shape returned by the model-status operation.
type Status struct {
	Loaded       bool   `json:"loaded"`
	State        string `json:"state"`
	Kind         string `json:"kind"`
	ModelPath    string `json:"model_path"`
	ModelVersion string `json:"model_version,omitempty"`
	Detail       string `json:"detail"`
}

// Manager owns the single live model handle. Reads go through an atomic
// pointer so concurrent inferences never see a torn handle; loads and reloads
// are serialized by a mutex and swap a fully built handle in one step.
type Manager struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	lastErr error
	current atomic.Pointer[Handle]
	state   atomic.Int32
}

func NewManager(cfg Config, logger *zap.Logger) *Manager {
	return &Manager{cfg: cfg, logger: logger.Named("model")}
}

// Load builds a new handle and swaps it in. On failure the previous handle is
// retired and the manager is marked Failed; requests then see
// ErrModelUnavailable until a reload succeeds.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	handle, err := m.build()
	if err != nil {
		m.lastErr = err
		m.state.Store(int32(StateFailed))
		if old := m.current.Swap(nil); old != nil {
			old.retire(retireGrace)
		}
		m.logger.Error("model load failed", zap.Error(err))
		return err
	}

	old := m.current.Swap(handle)
	m.state.Store(int32(StateLoaded))
	m.lastErr = nil
	if old != nil {
		old.retire(retireGrace)
	}
	m.logger.Info("model loaded",
		zap.String("kind", handle.kind.String()),
		zap.String("version", handle.meta.Version),
		zap.String("path", m.cfg.ModelPath))
	return nil
}

func (m *Manager) build() (*Handle, error) {
	if m.cfg.UsePlaceholder {
		meta := PlaceholderMetadata()
		if err := m.cfg.Labels.Validate(meta.NumClasses()); err != nil {
			return nil, err
		}
		return &Handle{
			engine:   newPlaceholderEngine(meta),
			kind:     KindPlaceholder,
			meta:     meta,
			loadedAt: time.Now(),
		}, nil
	}

	meta, err := readMetadata(m.cfg.MetadataPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrModelUnavailable, err)
	}
	if err := m.cfg.Labels.Validate(meta.NumClasses()); err != nil {
		return nil, err
	}
	eng, err := newONNXEngine(m.cfg.ModelPath, meta)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrModelUnavailable, err)
	}
	return &Handle{
		engine:   eng,
		kind:     KindReal,
		meta:     meta,
		loadedAt: time.Now(),
	}, nil
}

// Reload replaces the current handle. In-flight inferences finish against
// whichever handle they already acquired.
func (m *Manager) Reload() (State, error) {
	err := m.Load()
	return m.State(), err
}

// Acquire returns the live handle as an inference engine.
func (m *Manager) Acquire() (pipeline.Engine, error) {
	handle := m.current.Load()
	if handle == nil {
		m.mu.Lock()
		lastErr := m.lastErr
		m.mu.Unlock()
		if lastErr != nil {
			return nil, fmt.Errorf("%w: last load error: %v", pipeline.ErrModelUnavailable, lastErr)
		}
		return nil, fmt.Errorf("%w: no model has been loaded", pipeline.ErrModelUnavailable)
	}
	return handle, nil
}

func (m *Manager) State() State {
	return State(m.state.Load())
}

func (m *Manager) Status() Status {
	state := m.State()
	status := Status{
		State:     state.String(),
		ModelPath: m.cfg.ModelPath,
	}
	if handle := m.current.Load(); handle != nil {
		status.Loaded = true
		status.Kind = handle.kind.String()
		status.ModelVersion = handle.meta.Version
		status.Detail = fmt.Sprintf("%s model loaded at %s", handle.kind, handle.loadedAt.UTC().Format(time.RFC3339))
		return status
	}
	m.mu.Lock()
	lastErr := m.lastErr
	m.mu.Unlock()
	if lastErr != nil {
		status.Detail = lastErr.Error()
	} else {
		status.Detail = "no model loaded"
	}
	return status
}

// Close retires the current handle. Called once at shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old := m.current.Swap(nil); old != nil {
		old.retire(0)
	}
	m.state.Store(int32(StateUnloaded))
}
