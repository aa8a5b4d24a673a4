// Package app provides the core application service for Wails bindings.
package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wailsapp/wails/v3/pkg/application"

	"github.com/glintapp/glint/cache"
	"github.com/glintapp/glint/clipboard"
	"github.com/glintapp/glint/config"
	"github.com/glintapp/glint/hotkey"
	"github.com/glintapp/glint/internal/types"
	"github.com/glintapp/glint/llama"
	"github.com/glintapp/glint/llm"
	"github.com/glintapp/glint/prediction"
)

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; business logic lives in sub-components.
type Service struct {
	cfg    *config.Config
	cache  *cache.Cache
	hotkey *hotkey.Manager

	// UI references - set via Init
	app   *application.App
	main  application.Window
	quick application.Window

	manager   *prediction.Manager
	predictor *Predictor

	unsubscribe func()

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init initializes the service with app and window references.
// Must be called after Wails application is created.
func (s *Service) Init(app *application.App, main, quick application.Window) {
	s.app = app
	s.main = main
	s.quick = quick

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = &config.Config{}
	}
	s.cfg = cfg

	s.setupCache()
	s.setupManager()

	var local LocalPredictor
	if s.manager != nil {
		local = s.manager
	}
	s.predictor = NewPredictor(s.cache, local, s.cloudCompleter())

	s.setupHotkey()
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	if s.manager != nil {
		s.manager.Dispose()
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Error("close cache", "error", err)
		}
	}
}

func (s *Service) setupCache() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		slog.Error("get config dir for cache", "error", err)
		return
	}

	cachePath := filepath.Join(configDir, "glint", "cache")
	c, err := cache.New(cachePath)
	if err != nil {
		slog.Error("init cache", "error", err)
		return
	}
	s.cache = c
	slog.Info("cache initialized", "path", cachePath)
}

func (s *Service) setupManager() {
	mgr, err := prediction.NewManager(prediction.Config{
		ModelID:    s.cfg.ModelID,
		Start:      llama.Start,
		GPUEnabled: s.cfg.GpuEnabled(),
	})
	if err != nil {
		slog.Error("init model manager", "error", err)
		return
	}
	s.manager = mgr

	s.unsubscribe = mgr.Subscribe(func(ev prediction.StatusEvent) {
		s.emit(EventModelStatus, s.modelStateFrom(ev))
	})
}

func (s *Service) cloudCompleter() llm.Completer {
	cred := s.cfg.CloudFallback
	if cred == nil {
		return nil
	}
	return llm.NewCompleter(llm.Options{
		APIKey:  cred.APIKey,
		BaseURL: cred.BaseURL,
		Model:   cred.Model,
	})
}

func (s *Service) setupHotkey() {
	s.hotkey = hotkey.NewManager(s.cfg.QuickChatHotkey, func() {
		s.ToggleQuickChat()
	})

	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
	}
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Windows & Quick Chat
// ─────────────────────────────────────────────────────────────────────────────

// ToggleQuickChat shows or hides the quick-chat window, prefilling the
// input with the clipboard text when showing.
func (s *Service) ToggleQuickChat() {
	if s.quick == nil {
		return
	}
	if s.quick.IsVisible() {
		s.quick.Hide()
		return
	}

	text, err := clipboard.GetText(s.app)
	if err != nil {
		slog.Error("get clipboard", "error", err)
		text = ""
	}
	s.quick.Show()
	s.quick.Focus()
	s.emit(EventShowQuickChat, text)
}

// ShowMainWindow brings the embedded chat window to front.
func (s *Service) ShowMainWindow() {
	if s.main != nil {
		s.main.Show()
		s.main.Focus()
	}
}

// HideQuickChat hides the quick-chat window, bound so the frontend can
// dismiss on escape.
func (s *Service) HideQuickChat() {
	if s.quick != nil {
		s.quick.Hide()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Prediction
// ─────────────────────────────────────────────────────────────────────────────

// QuickPredict returns a ghost-text suggestion for the quick-chat input.
// Debounce is the caller's job; every call runs the full lookup chain.
func (s *Service) QuickPredict(text string) types.Suggestion {
	return s.predictor.Predict(context.Background(), text)
}

// ─────────────────────────────────────────────────────────────────────────────
// Cloud Fallback Credential
// ─────────────────────────────────────────────────────────────────────────────

// GetCloudFallback returns the configured cloud credential, if any.
func (s *Service) GetCloudFallback() *types.CloudCredential {
	return s.cfg.CloudFallback
}

// SetCloudFallback stores the cloud credential and rebuilds the completer.
func (s *Service) SetCloudFallback(cred types.CloudCredential) error {
	if err := s.cfg.SetCloudFallback(cred); err != nil {
		return err
	}
	s.predictor.SetCloud(s.cloudCompleter())
	return nil
}

// ClearCloudFallback removes the cloud credential.
func (s *Service) ClearCloudFallback() error {
	if err := s.cfg.ClearCloudFallback(); err != nil {
		return err
	}
	s.predictor.SetCloud(nil)
	return nil
}
