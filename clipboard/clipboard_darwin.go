//go:build darwin

package clipboard

import (
	"github.com/wailsapp/wails/v3/pkg/application"
)

// #cgo CFLAGS: -x objective-c
// #cgo LDFLAGS: -framework Cocoa
// #import <Cocoa/Cocoa.h>
// const char* getPasteboardString() {
//     NSPasteboard *pasteboard = [NSPasteboard generalPasteboard];
//     NSString *string = [pasteboard stringForType:NSPasteboardTypeString];
//     return [string UTF8String];
// }
import "C"

func getClipboardContent(_ *application.App) (string, error) {
	cstr := C.getPasteboardString()
	if cstr == nil {
		// Clipboard holds no text, not an error worth surfacing.
		return "", nil
	}
	return C.GoString(cstr), nil
}
