// Package clipboard reads the system clipboard, used to prefill the
// quick-chat input when the global hotkey fires.
package clipboard

import (
	"github.com/wailsapp/wails/v3/pkg/application"
)

// GetText returns the current clipboard text, empty if the clipboard
// holds no text.
func GetText(app *application.App) (string, error) {
	return getClipboardContent(app)
}
