package prediction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	// defaultPredictTimeout bounds a single inference call. A suggestion
	// that misses the deadline is dropped, never queued.
	defaultPredictTimeout = 500 * time.Millisecond

	defaultMaxTokens   = 24
	defaultContextSize = 2048

	// defaultGPULayers offloads the whole model when GPU use is enabled.
	defaultGPULayers = 99
)

// Config holds construction parameters for a Manager.
type Config struct {
	ModelID        string        // defaults to DefaultModelID
	Dir            string        // model storage dir, defaults to the user config dir
	Start          StartRuntime  // required: starts the inference runtime
	GPUEnabled     bool          // consulted on Load
	PredictTimeout time.Duration // defaults to 500ms
	MaxTokens      int           // per-suggestion token budget
	HTTPClient     *http.Client  // used for downloads, defaults to http.DefaultClient
}

// Manager owns exactly one model: its download, residency, and serving.
// All methods are safe for concurrent use.
type Manager struct {
	dir            string
	start          StartRuntime
	client         *http.Client
	predictTimeout time.Duration
	maxTokens      int

	mu             sync.Mutex
	model          ModelInfo
	status         Status
	progress       int
	lastErr        string
	gpuEnabled     bool
	rt             Runtime
	generation     uint64
	downloading    bool
	loading        bool
	cancelDownload context.CancelFunc
	listeners      map[int]func(StatusEvent)
	nextListener   int
	disposed       bool
}

// NewManager creates a Manager for the configured model. No download or
// load happens until the corresponding method is called.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Start == nil {
		return nil, errors.New("runtime starter required")
	}

	id := cfg.ModelID
	if id == "" {
		id = DefaultModelID
	}
	info, err := Lookup(id)
	if err != nil {
		return nil, err
	}

	dir := cfg.Dir
	if dir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get user config dir: %w", err)
		}
		dir = filepath.Join(configDir, "glint", "models")
	}

	timeout := cfg.PredictTimeout
	if timeout == 0 {
		timeout = defaultPredictTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	return &Manager{
		dir:            dir,
		start:          cfg.Start,
		client:         client,
		predictTimeout: timeout,
		maxTokens:      maxTokens,
		model:          info,
		status:         StatusNotDownloaded,
		gpuEnabled:     cfg.GPUEnabled,
		listeners:      make(map[int]func(StatusEvent)),
	}, nil
}

// Model returns the registry entry the manager is bound to.
func (m *Manager) Model() ModelInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// SetModel switches the manager to a different registry entry. The current
// model must be unloaded first.
func (m *Manager) SetModel(id string) error {
	info, err := Lookup(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.rt != nil || m.loading || m.downloading {
		m.mu.Unlock()
		return fmt.Errorf("%w: unload the current model before switching", ErrBusy)
	}
	m.model = info
	ev, fns, ok := m.transitionLocked(StatusNotDownloaded, 0, "")
	m.mu.Unlock()

	notify(ev, fns, ok)
	return nil
}

// Path returns the on-disk location of the current model artifact.
func (m *Manager) Path() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return filepath.Join(m.dir, m.model.FileName)
}

// Downloaded reports whether the current model artifact exists on disk.
func (m *Manager) Downloaded() bool {
	_, err := os.Stat(m.Path())
	return err == nil
}

// Status returns the live lifecycle state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Progress returns the download progress (0-100).
func (m *Manager) Progress() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.progress
}

// LastError returns the retained message from the most recent download or
// load failure, empty if none.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// SetGpuEnabled toggles GPU offload. The setting is consulted on the next
// Load; an already-loaded model is unaffected.
func (m *Manager) SetGpuEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gpuEnabled = enabled
}

// GpuEnabled reports the current GPU offload setting.
func (m *Manager) GpuEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gpuEnabled
}

// Subscribe registers a listener notified on every state transition and
// returns its unsubscribe handle.
func (m *Manager) Subscribe(fn func(StatusEvent)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Download fetches the model artifact. If the file is already present it
// reports 100 exactly once and performs no network I/O. At most one
// download may be in flight per manager.
func (m *Manager) Download(ctx context.Context, progress func(percent int)) error {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return errors.New("manager disposed")
	}
	if m.downloading {
		m.mu.Unlock()
		return ErrDownloadInFlight
	}

	model := m.model
	path := filepath.Join(m.dir, model.FileName)
	if _, err := os.Stat(path); err == nil {
		m.progress = 100
		m.mu.Unlock()
		if progress != nil {
			progress(100)
		}
		return nil
	}

	dctx, cancel := context.WithCancel(ctx)
	m.downloading = true
	m.cancelDownload = cancel
	ev, fns, ok := m.transitionLocked(StatusDownloading, 0, "")
	m.mu.Unlock()
	notify(ev, fns, ok)
	defer cancel()

	err := downloadFile(dctx, m.client, model, path, func(pct int) {
		m.transition(StatusDownloading, pct, "")
		if progress != nil {
			progress(pct)
		}
	})
	if err == nil {
		if _, statErr := os.Stat(path); statErr != nil {
			err = fmt.Errorf("model file missing after download: %w", statErr)
		}
	}

	m.mu.Lock()
	m.downloading = false
	m.cancelDownload = nil
	if err != nil {
		ev, fns, ok = m.transitionLocked(StatusError, m.progress, err.Error())
		m.mu.Unlock()
		notify(ev, fns, ok)
		return fmt.Errorf("download %s: %w", model.ID, err)
	}
	ev, fns, ok = m.transitionLocked(StatusNotDownloaded, 100, "")
	m.mu.Unlock()
	notify(ev, fns, ok)

	slog.Info("model downloaded", "model", model.ID, "path", path)
	return nil
}

// Load brings the downloaded model into memory and readies inference.
// A GPU load failure is retried once on CPU before surfacing. Calling Load
// on a ready manager is a no-op.
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return errors.New("manager disposed")
	}
	if m.status == StatusReady {
		m.mu.Unlock()
		return nil
	}
	if m.loading || m.downloading {
		m.mu.Unlock()
		return fmt.Errorf("%w: another transition is in flight", ErrBusy)
	}

	model := m.model
	path := filepath.Join(m.dir, model.FileName)
	if _, err := os.Stat(path); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotDownloaded, model.ID)
	}

	gpu := m.gpuEnabled
	gen := m.generation
	m.loading = true
	ev, fns, ok := m.transitionLocked(StatusInitializing, m.progress, "")
	m.mu.Unlock()
	notify(ev, fns, ok)

	cfg := RuntimeConfig{ModelPath: path, ContextSize: model.ContextSize}
	if cfg.ContextSize == 0 {
		cfg.ContextSize = defaultContextSize
	}
	if gpu {
		cfg.GPULayers = defaultGPULayers
	}

	rt, err := m.start(ctx, cfg)
	if err != nil && gpu {
		slog.Warn("gpu load failed, retrying on cpu", "model", model.ID, "error", err)
		cfg.GPULayers = 0
		rt, err = m.start(ctx, cfg)
	}

	m.mu.Lock()
	m.loading = false
	if err != nil {
		ev, fns, ok = m.transitionLocked(StatusError, m.progress, err.Error())
		m.mu.Unlock()
		notify(ev, fns, ok)
		return fmt.Errorf("load model %s: %w", model.ID, err)
	}
	if m.disposed || m.generation != gen {
		// Unloaded or disposed while initializing: the runtime is stale.
		m.mu.Unlock()
		rt.Close()
		return nil
	}
	m.rt = rt
	ev, fns, ok = m.transitionLocked(StatusReady, 100, "")
	m.mu.Unlock()
	notify(ev, fns, ok)

	slog.Info("model ready", "model", model.ID, "gpuLayers", cfg.GPULayers)
	return nil
}

// Predict returns a ghost-text suggestion continuing text, or the empty
// string when there is nothing to suggest: blank input, manager not ready,
// inference error, or timeout. Errors are absorbed; ghost text is best
// effort by design of the feature, not of this method.
func (m *Manager) Predict(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	m.mu.Lock()
	rt := m.rt
	ready := m.status == StatusReady
	m.mu.Unlock()
	if !ready || rt == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, m.predictTimeout)
	defer cancel()

	out, err := rt.Complete(ctx, text, m.maxTokens)
	if err != nil {
		if !errors.Is(err, context.DeadlineExceeded) {
			slog.Debug("predict failed", "error", err)
		}
		return ""
	}
	return sanitizeSuggestion(out)
}

// Unload releases the in-memory model and returns the manager to idle.
// Safe to call repeatedly or when nothing is loaded.
func (m *Manager) Unload() {
	m.mu.Lock()
	rt := m.rt
	m.rt = nil
	m.generation++
	ev, fns, ok := m.transitionLocked(StatusNotDownloaded, 0, "")
	m.mu.Unlock()

	if rt != nil {
		if err := rt.Close(); err != nil {
			slog.Warn("close runtime", "error", err)
		}
	}
	notify(ev, fns, ok)
}

// Dispose unloads the model, cancels any in-flight download, and clears
// all listeners. The manager is unusable afterwards.
func (m *Manager) Dispose() {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.disposed = true
	cancel := m.cancelDownload
	m.cancelDownload = nil
	m.listeners = make(map[int]func(StatusEvent))
	rt := m.rt
	m.rt = nil
	m.generation++
	m.status = StatusNotDownloaded
	m.progress = 0
	m.lastErr = ""
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if rt != nil {
		if err := rt.Close(); err != nil {
			slog.Warn("close runtime", "error", err)
		}
	}
}

// transitionLocked records a state change and returns the snapshot needed
// to notify listeners once the lock is released. Duplicate transitions are
// suppressed so idempotent operations stay silent.
func (m *Manager) transitionLocked(st Status, progress int, errMsg string) (StatusEvent, []func(StatusEvent), bool) {
	if m.disposed {
		return StatusEvent{}, nil, false
	}
	if m.status == st && m.progress == progress && m.lastErr == errMsg {
		return StatusEvent{}, nil, false
	}

	m.status = st
	m.progress = progress
	m.lastErr = errMsg

	ev := StatusEvent{ModelID: m.model.ID, Status: st, Progress: progress, Error: errMsg}
	fns := make([]func(StatusEvent), 0, len(m.listeners))
	for _, fn := range m.listeners {
		fns = append(fns, fn)
	}
	return ev, fns, true
}

func (m *Manager) transition(st Status, progress int, errMsg string) {
	m.mu.Lock()
	ev, fns, ok := m.transitionLocked(st, progress, errMsg)
	m.mu.Unlock()
	notify(ev, fns, ok)
}

func notify(ev StatusEvent, fns []func(StatusEvent), ok bool) {
	if !ok {
		return
	}
	for _, fn := range fns {
		fn(ev)
	}
}

// sanitizeSuggestion reduces a raw completion to single-line ghost text.
func sanitizeSuggestion(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, " \t")
}
