package prediction

import "errors"

// Status is the lifecycle state of the managed model. Exactly one value is
// live at a time per Manager.
type Status string

const (
	// StatusNotDownloaded is the idle state: no model resident in memory.
	// The on-disk artifact may or may not exist.
	StatusNotDownloaded Status = "not-downloaded"
	StatusDownloading   Status = "downloading"
	StatusInitializing  Status = "initializing"
	StatusReady         Status = "ready"
	StatusError         Status = "error"
)

// StatusEvent is delivered to subscribers on every state transition.
type StatusEvent struct {
	ModelID  string `json:"modelId"`
	Status   Status `json:"status"`
	Progress int    `json:"progress"` // 0-100, meaningful while downloading
	Error    string `json:"error,omitempty"`
}

var (
	// ErrUnknownModel reports a model id not present in the registry.
	ErrUnknownModel = errors.New("unknown model id")

	// ErrNotDownloaded reports a Load attempt without a model file on disk.
	ErrNotDownloaded = errors.New("model not downloaded")

	// ErrDownloadInFlight reports a second concurrent Download call.
	ErrDownloadInFlight = errors.New("download already in progress")

	// ErrChecksumMismatch reports a downloaded artifact whose digest does
	// not match the registry entry.
	ErrChecksumMismatch = errors.New("model checksum mismatch")

	// ErrBusy reports a Load or model switch attempted during another
	// in-flight transition.
	ErrBusy = errors.New("manager is busy")
)
