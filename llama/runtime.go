package llama

import (
	"context"
	"strconv"

	"github.com/glintapp/glint/prediction"
)

// Runtime is a running llama-server bound to a single model file.
type Runtime struct {
	proc   *Subprocess
	client *Client
}

// Start launches llama-server for the given model and waits until it can
// serve completions. It satisfies prediction.StartRuntime.
func Start(ctx context.Context, cfg prediction.RuntimeConfig) (prediction.Runtime, error) {
	args := []string{
		"--model", cfg.ModelPath,
		"--ctx-size", strconv.Itoa(cfg.ContextSize),
		"--n-gpu-layers", strconv.Itoa(cfg.GPULayers),
		"--no-webui",
	}

	proc, err := NewSubprocess(SubprocessConfig{Args: args})
	if err != nil {
		return nil, err
	}
	if err := proc.Start(ctx); err != nil {
		return nil, err
	}

	return &Runtime{proc: proc, client: NewClient(proc.BaseURL())}, nil
}

// Complete continues prompt with at most maxTokens generated tokens.
func (r *Runtime) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return r.client.Complete(ctx, prompt, maxTokens)
}

// Close stops the subprocess.
func (r *Runtime) Close() error {
	r.proc.Stop()
	return nil
}
