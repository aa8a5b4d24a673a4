package main

import (
	"embed"
	"log/slog"
	"os"

	"github.com/wailsapp/wails/v3/pkg/application"
	"github.com/wailsapp/wails/v3/pkg/events"

	"github.com/glintapp/glint/internal/app"
	"github.com/glintapp/glint/proxy"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	slog.Info("starting app", "version", version, "commit", commit, "date", date)

	// The main window cannot load the upstream chat directly; it refuses
	// to be framed. The local proxy strips those headers.
	px, err := proxy.New(proxy.DefaultUpstream)
	if err != nil {
		slog.Error("init proxy", "error", err)
		os.Exit(1)
	}
	if err := px.Start(); err != nil {
		slog.Error("start proxy", "error", err)
		os.Exit(1)
	}
	defer px.Close()
	slog.Info("proxy listening", "url", px.URL())

	service := app.New(version)

	wailsApp := application.New(application.Options{
		Name:        "Glint",
		Description: "Desktop companion for Gemini with local quick-chat prediction",
		Services: []application.Service{
			application.NewService(service),
		},
		Assets: application.AssetOptions{
			Handler: application.BundledAssetFileServer(assets),
		},
		Mac: application.MacOptions{
			// Don't quit when all windows are closed; the hotkey can
			// summon quick chat at any time
			ApplicationShouldTerminateAfterLastWindowClosed: false,
		},
	})

	// Main window hosts the proxied chat
	mainWindow := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:  "Glint",
		Width:  1200,
		Height: 800,
		URL:    px.URL(),
		Mac: application.MacWindow{
			TitleBar:                application.MacTitleBarHiddenInsetUnified,
			InvisibleTitleBarHeight: 38,
		},
	})

	// Quick-chat window stays hidden until the global hotkey fires
	quickWindow := wailsApp.Window.NewWithOptions(application.WebviewWindowOptions{
		Title:       "Glint Quick Chat",
		Width:       680,
		Height:      140,
		URL:         "/quick.html",
		Frameless:   true,
		Hidden:      true,
		AlwaysOnTop: true,
	})

	// Intercept window close: hide instead of destroy so the hotkey can
	// bring the windows back
	mainWindow.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		mainWindow.Hide()
	})
	quickWindow.RegisterHook(events.Common.WindowClosing, func(e *application.WindowEvent) {
		e.Cancel()
		quickWindow.Hide()
	})

	service.Init(wailsApp, mainWindow, quickWindow)

	if err := wailsApp.Run(); err != nil {
		slog.Error("run app", "error", err)
	}
	service.Shutdown()
}
