// Package app provides the core application service for Wails bindings.
package app

// Event names for frontend communication.
const (
	// EventModelStatus carries a types.ModelState snapshot on every
	// lifecycle transition and on download progress ticks.
	EventModelStatus = "model-status"

	// EventShowQuickChat tells the quick-chat window it was summoned by
	// the global hotkey, with the clipboard text as payload.
	EventShowQuickChat = "show-quick-chat"
)
