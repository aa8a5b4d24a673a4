// Package types provides shared type definitions for the application.
package types

// ModelOption describes a registry model for the settings UI.
type ModelOption struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Size        int64  `json:"size"`
	Downloaded  bool   `json:"downloaded"`
	Current     bool   `json:"current"`
}

// ModelState is the live lifecycle snapshot surfaced to the UI.
type ModelState struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	Error      string `json:"error,omitempty"`
	Downloaded bool   `json:"downloaded"`
	GpuEnabled bool   `json:"gpuEnabled"`
}

// Suggestion is a quick-chat ghost-text result. An empty Text means there
// is nothing to suggest; the input field simply shows no ghost text.
type Suggestion struct {
	ID     string `json:"id"` // lets the frontend drop results for stale input
	Text   string `json:"text"`
	Source string `json:"source"` // "local", "cloud", or "cache"
}

// CloudCredential configures the optional cloud completion fallback.
type CloudCredential struct {
	ID      string `json:"id"`
	Type    string `json:"type"` // "openai" or "openai-compatible"
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key"`
	Model   string `json:"model"`
}
