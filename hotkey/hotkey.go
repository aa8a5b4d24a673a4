// Package hotkey registers the global shortcut that toggles the quick-chat
// window from anywhere in the OS.
package hotkey

import (
	"fmt"
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// DefaultBinding toggles quick chat with alt+space.
var DefaultBinding = []string{"space", "alt"}

// Manager owns the OS-level keyboard hook.
type Manager struct {
	keys      []string
	onTrigger func()

	mu      sync.Mutex
	running bool
}

// NewManager creates a manager for the given key combination. An empty
// combination falls back to DefaultBinding.
func NewManager(keys []string, onTrigger func()) *Manager {
	if len(keys) == 0 {
		keys = DefaultBinding
	}
	return &Manager{keys: keys, onTrigger: onTrigger}
}

// Start registers the shortcut and begins listening in the background.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return fmt.Errorf("hotkey listener already running")
	}

	hook.Register(hook.KeyDown, m.keys, func(e hook.Event) {
		if m.onTrigger != nil {
			// Run outside the hook callback so slow handlers don't stall
			// the OS event tap.
			go m.onTrigger()
		}
	})

	events := hook.Start()
	go func() {
		<-hook.Process(events)
		slog.Info("hotkey listener stopped")
	}()

	m.running = true
	slog.Info("hotkey registered", "keys", m.keys)
	return nil
}

// Stop removes the hook. Safe to call when not running.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	hook.End()
	m.running = false
}
