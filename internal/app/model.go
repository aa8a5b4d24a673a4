package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/glintapp/glint/internal/types"
	"github.com/glintapp/glint/prediction"
)

// ─────────────────────────────────────────────────────────────────────────────
// Model Management Bindings
// ─────────────────────────────────────────────────────────────────────────────

// GetModels returns the registry models for the settings UI.
func (s *Service) GetModels() []types.ModelOption {
	var dir string
	var currentID string
	if s.manager != nil {
		dir = filepath.Dir(s.manager.Path())
		currentID = s.manager.Model().ID
	}

	infos := prediction.Models()
	result := make([]types.ModelOption, len(infos))
	for i, info := range infos {
		downloaded := false
		if dir != "" {
			if _, err := os.Stat(filepath.Join(dir, info.FileName)); err == nil {
				downloaded = true
			}
		}
		result[i] = types.ModelOption{
			ID:          info.ID,
			DisplayName: info.DisplayName,
			Size:        info.Size,
			Downloaded:  downloaded,
			Current:     info.ID == currentID,
		}
	}
	return result
}

// GetModelState returns the current lifecycle snapshot.
func (s *Service) GetModelState() types.ModelState {
	if s.manager == nil {
		return types.ModelState{}
	}
	return types.ModelState{
		ID:         s.manager.Model().ID,
		Status:     string(s.manager.Status()),
		Progress:   s.manager.Progress(),
		Error:      s.manager.LastError(),
		Downloaded: s.manager.Downloaded(),
		GpuEnabled: s.manager.GpuEnabled(),
	}
}

// SetCurrentModel switches the manager to another registry model and
// persists the choice. Fails while a download or a loaded model is active.
func (s *Service) SetCurrentModel(id string) error {
	if s.manager == nil {
		return fmt.Errorf("model manager not initialized")
	}
	if err := s.manager.SetModel(id); err != nil {
		return err
	}
	if err := s.cfg.SetModelID(id); err != nil {
		slog.Error("persist model id", "error", err)
	}
	s.emit(EventModelStatus, s.GetModelState())
	return nil
}

// DownloadModel fetches the current model in the background. Progress and
// completion arrive as model-status events.
func (s *Service) DownloadModel() error {
	if s.manager == nil {
		return fmt.Errorf("model manager not initialized")
	}

	go func() {
		err := s.manager.Download(context.Background(), func(percent int) {
			state := s.GetModelState()
			state.Progress = percent
			s.emit(EventModelStatus, state)
		})
		if err != nil {
			slog.Error("download model", "model", s.manager.Model().ID, "error", err)
		}
	}()
	return nil
}

// LoadModel brings the current model into memory in the background.
func (s *Service) LoadModel() error {
	if s.manager == nil {
		return fmt.Errorf("model manager not initialized")
	}

	go func() {
		if err := s.manager.Load(context.Background()); err != nil {
			slog.Error("load model", "model", s.manager.Model().ID, "error", err)
		}
	}()
	return nil
}

// UnloadModel releases the resident model. No-op when nothing is loaded.
func (s *Service) UnloadModel() {
	if s.manager != nil {
		s.manager.Unload()
	}
}

// SetGpuEnabled stores the GPU preference. It takes effect on the next
// load, never on a resident model.
func (s *Service) SetGpuEnabled(enabled bool) error {
	if s.manager != nil {
		s.manager.SetGpuEnabled(enabled)
	}
	if err := s.cfg.SetGpuEnabled(enabled); err != nil {
		return err
	}
	s.emit(EventModelStatus, s.GetModelState())
	return nil
}

// modelStateFrom builds the event payload from a manager status event,
// preferring the event's own fields over a fresh snapshot so transitions
// are never reordered.
func (s *Service) modelStateFrom(ev prediction.StatusEvent) types.ModelState {
	state := types.ModelState{
		ID:       ev.ModelID,
		Status:   string(ev.Status),
		Progress: ev.Progress,
		Error:    ev.Error,
	}
	if s.manager != nil {
		state.Downloaded = s.manager.Downloaded()
		state.GpuEnabled = s.manager.GpuEnabled()
	}
	return state
}
