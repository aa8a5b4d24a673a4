package prediction

import "context"

// Runtime serves completions for a loaded model. Implementations wrap an
// external inference engine; the Manager owns at most one Runtime and is
// the only caller of Close.
type Runtime interface {
	// Complete continues prompt with at most maxTokens generated tokens.
	// It must honor ctx cancellation.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)

	// Close releases the runtime and any resources it holds.
	Close() error
}

// RuntimeConfig holds everything needed to start a runtime for a model file.
type RuntimeConfig struct {
	ModelPath   string
	ContextSize int
	// GPULayers is the number of layers to offload to the GPU.
	// Zero means CPU-only.
	GPULayers int
}

// StartRuntime starts an inference runtime. The Manager calls it during
// Load; tests substitute fakes.
type StartRuntime func(ctx context.Context, cfg RuntimeConfig) (Runtime, error)
