package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/glintapp/glint/internal/types"
	"github.com/glintapp/glint/prediction"
)

func testConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.json")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadFrom(testConfigPath(t))
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.ModelID != prediction.DefaultModelID {
		t.Errorf("ModelID = %q, want %q", cfg.ModelID, prediction.DefaultModelID)
	}
	if !cfg.GpuEnabled() {
		t.Error("GpuEnabled() = false, want true by default")
	}
	if cfg.CloudFallback != nil {
		t.Error("CloudFallback should be nil by default")
	}
}

func TestSaveAndReload(t *testing.T) {
	path := testConfigPath(t)
	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if err := cfg.SetModelID("gemma-2-2b-it-q4"); err != nil {
		t.Fatalf("SetModelID: %v", err)
	}
	if err := cfg.SetGpuEnabled(false); err != nil {
		t.Fatalf("SetGpuEnabled: %v", err)
	}

	reloaded, err := loadFrom(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ModelID != "gemma-2-2b-it-q4" {
		t.Errorf("ModelID = %q, want gemma-2-2b-it-q4", reloaded.ModelID)
	}
	if reloaded.GpuEnabled() {
		t.Error("GpuEnabled() = true after disabling")
	}
}

func TestSetModelIDUnknown(t *testing.T) {
	cfg, err := loadFrom(testConfigPath(t))
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if err := cfg.SetModelID("no-such-model"); err == nil {
		t.Fatal("SetModelID accepted an unknown model")
	}
}

func TestMigrateLegacyModelPath(t *testing.T) {
	path := testConfigPath(t)
	legacy := map[string]string{
		"model_path": "/old/models/gemma-2-2b-it-Q4_K_M.gguf",
	}
	data, _ := json.Marshal(legacy)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write legacy config: %v", err)
	}

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.ModelID != "gemma-2-2b-it-q4" {
		t.Errorf("ModelID = %q, want gemma-2-2b-it-q4", cfg.ModelID)
	}
	if cfg.LegacyModelPath != "" {
		t.Error("LegacyModelPath not cleared after migration")
	}

	// Migration rewrites the file, so a reload must not re-migrate.
	reloaded, err := loadFrom(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ModelID != "gemma-2-2b-it-q4" {
		t.Errorf("reloaded ModelID = %q, want gemma-2-2b-it-q4", reloaded.ModelID)
	}
}

func TestMigrateLegacyModelPathUnknownFile(t *testing.T) {
	path := testConfigPath(t)
	legacy := map[string]string{
		"model_path": "/old/models/mystery.gguf",
	}
	data, _ := json.Marshal(legacy)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write legacy config: %v", err)
	}

	cfg, err := loadFrom(path)
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}
	if cfg.ModelID != prediction.DefaultModelID {
		t.Errorf("ModelID = %q, want default for unrecognized path", cfg.ModelID)
	}
}

func TestSetCloudFallback(t *testing.T) {
	cfg, err := loadFrom(testConfigPath(t))
	if err != nil {
		t.Fatalf("loadFrom: %v", err)
	}

	err = cfg.SetCloudFallback(types.CloudCredential{Type: "openai", Model: "gpt-4o-mini"})
	if err == nil {
		t.Error("SetCloudFallback accepted empty api key")
	}

	err = cfg.SetCloudFallback(types.CloudCredential{
		Type:   "openai-compatible",
		APIKey: "sk-test",
		Model:  "local-model",
	})
	if err == nil {
		t.Error("SetCloudFallback accepted openai-compatible without base url")
	}

	err = cfg.SetCloudFallback(types.CloudCredential{
		Type:   "openai",
		APIKey: "sk-test",
		Model:  "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("SetCloudFallback: %v", err)
	}
	if cfg.CloudFallback == nil || cfg.CloudFallback.ID == "" {
		t.Fatal("credential ID not assigned")
	}

	if err := cfg.ClearCloudFallback(); err != nil {
		t.Fatalf("ClearCloudFallback: %v", err)
	}
	if cfg.CloudFallback != nil {
		t.Error("CloudFallback not cleared")
	}
}
