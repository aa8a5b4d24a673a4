// Package prediction manages the local language model used for quick-chat
// ghost text: its on-disk presence, in-memory residency, and inference
// serving. The heavy lifting happens in an external inference runtime; this
// package only drives the lifecycle around it.
package prediction

import (
	"fmt"
	"path/filepath"
	"sort"
)

// ModelInfo describes a downloadable model variant.
// Entries are fixed at compile time; see the registry below.
type ModelInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	URL         string `json:"url"`
	FileName    string `json:"fileName"`
	Size        int64  `json:"size"`   // approximate size in bytes, used for progress
	SHA256      string `json:"sha256"` // hex digest of the artifact, empty to skip verification
	ContextSize int    `json:"contextSize"`
}

// DefaultModelID is the model used when the configuration names none.
const DefaultModelID = "qwen2.5-0.5b-instruct-q4"

var registry = map[string]ModelInfo{
	"qwen2.5-0.5b-instruct-q4": {
		ID:          "qwen2.5-0.5b-instruct-q4",
		DisplayName: "Qwen2.5 0.5B Instruct (Q4_K_M)",
		URL:         "https://huggingface.co/Qwen/Qwen2.5-0.5B-Instruct-GGUF/resolve/main/qwen2.5-0.5b-instruct-q4_k_m.gguf",
		FileName:    "qwen2.5-0.5b-instruct-q4_k_m.gguf",
		Size:        398 * 1024 * 1024,
		ContextSize: 2048,
	},
	"qwen2.5-1.5b-instruct-q4": {
		ID:          "qwen2.5-1.5b-instruct-q4",
		DisplayName: "Qwen2.5 1.5B Instruct (Q4_K_M)",
		URL:         "https://huggingface.co/Qwen/Qwen2.5-1.5B-Instruct-GGUF/resolve/main/qwen2.5-1.5b-instruct-q4_k_m.gguf",
		FileName:    "qwen2.5-1.5b-instruct-q4_k_m.gguf",
		Size:        986 * 1024 * 1024,
		ContextSize: 4096,
	},
	"gemma-2-2b-it-q4": {
		ID:          "gemma-2-2b-it-q4",
		DisplayName: "Gemma 2 2B Instruct (Q4_K_M)",
		URL:         "https://huggingface.co/bartowski/gemma-2-2b-it-GGUF/resolve/main/gemma-2-2b-it-Q4_K_M.gguf",
		FileName:    "gemma-2-2b-it-Q4_K_M.gguf",
		Size:        1708 * 1024 * 1024,
		ContextSize: 4096,
	},
}

// Lookup returns the registry entry for id.
func Lookup(id string) (ModelInfo, error) {
	info, ok := registry[id]
	if !ok {
		return ModelInfo{}, fmt.Errorf("%w: %s", ErrUnknownModel, id)
	}
	return info, nil
}

// Models returns all registry entries sorted by ID.
func Models() []ModelInfo {
	result := make([]ModelInfo, 0, len(registry))
	for _, info := range registry {
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// ModelPath returns the on-disk location of the model artifact for id
// within dir. The file may or may not exist.
func ModelPath(dir, id string) (string, error) {
	info, err := Lookup(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, info.FileName), nil
}
