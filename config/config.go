// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/glintapp/glint/internal/types"
	"github.com/glintapp/glint/prediction"
)

const (
	appName        = "glint"
	configFileName = "config.json"
)

// Config represents the application configuration.
type Config struct {
	ModelID         string                 `json:"model_id"`
	DisableGpu      bool                   `json:"disable_gpu,omitempty"`
	QuickChatHotkey []string               `json:"quick_chat_hotkey,omitempty"`
	CloudFallback   *types.CloudCredential `json:"cloud_fallback,omitempty"`

	// Legacy field from builds that stored an absolute model path before
	// the registry existed. Migrated to ModelID on load.
	LegacyModelPath string `json:"model_path,omitempty"`

	path string
}

// Load loads configuration from the config file.
// Returns the default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}
	return loadFrom(path)
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := defaultConfig()
			cfg.path = path
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.path = path

	if cfg.ModelID == "" {
		cfg.ModelID = prediction.DefaultModelID
	}

	if err := cfg.migrateLegacyModelPath(); err != nil {
		return nil, fmt.Errorf("migrate legacy model path: %w", err)
	}
	return &cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// GpuEnabled reports whether GPU offload is on. Enabled unless explicitly
// turned off, so fresh installs get acceleration by default.
func (c *Config) GpuEnabled() bool {
	return !c.DisableGpu
}

// SetGpuEnabled persists the GPU offload setting.
func (c *Config) SetGpuEnabled(enabled bool) error {
	c.DisableGpu = !enabled
	return c.Save()
}

// SetModelID validates id against the registry and persists it.
func (c *Config) SetModelID(id string) error {
	if _, err := prediction.Lookup(id); err != nil {
		return err
	}
	c.ModelID = id
	return c.Save()
}

// SetCloudFallback stores the optional cloud completion credential.
func (c *Config) SetCloudFallback(cred types.CloudCredential) error {
	if cred.APIKey == "" {
		return fmt.Errorf("api key required")
	}
	if cred.Model == "" {
		return fmt.Errorf("model required")
	}
	if cred.Type == "openai-compatible" && cred.BaseURL == "" {
		return fmt.Errorf("base url required for openai-compatible")
	}
	if cred.ID == "" {
		cred.ID = uuid.New().String()
	}

	c.CloudFallback = &cred
	return c.Save()
}

// ClearCloudFallback removes the cloud credential.
func (c *Config) ClearCloudFallback() error {
	c.CloudFallback = nil
	return c.Save()
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

func defaultConfig() *Config {
	return &Config{
		ModelID:         prediction.DefaultModelID,
		QuickChatHotkey: nil, // hotkey package supplies the default binding
	}
}

// migrateLegacyModelPath maps a pre-registry absolute model path onto the
// registry entry with the same file name and rewrites the config.
func (c *Config) migrateLegacyModelPath() error {
	if c.LegacyModelPath == "" {
		return nil
	}

	base := filepath.Base(c.LegacyModelPath)
	for _, info := range prediction.Models() {
		if info.FileName == base {
			c.ModelID = info.ID
			break
		}
	}
	c.LegacyModelPath = ""
	return c.Save()
}
