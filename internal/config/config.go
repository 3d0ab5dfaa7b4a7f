package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	EnvLayout   = "VIEWSCOPE_LAYOUT"
	EnvLogLevel = "VIEWSCOPE_LOG_LEVEL"
)

// Config is the persisted config file schema.
type Config struct {
	Layout    string          `toml:"layout"`
	Inspector InspectorConfig `toml:"inspector"`
	Popup     PopupConfig     `toml:"popup"`
	Log       LogConfig       `toml:"log"`
	Source    string          `toml:"-"`
}

type InspectorConfig struct {
	SyncDebounceMs int    `toml:"sync_debounce_ms"`
	SyncIntervalMs int    `toml:"sync_interval_ms"`
	HideDelayMs    int    `toml:"hide_delay_ms"`
	QuickKey       string `toml:"quick_key"`
	CancelKey      string `toml:"cancel_key"`
}

type PopupConfig struct {
	HoverHideDelayMs int `toml:"hover_hide_delay_ms"`
	PointerMargin    int `toml:"pointer_margin"`
}

type LogConfig struct {
	Path  string `toml:"path"`
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		Inspector: InspectorConfig{
			SyncDebounceMs: 50,
			SyncIntervalMs: 500,
			HideDelayMs:    100,
			QuickKey:       "alt",
			CancelKey:      "esc",
		},
		Popup: PopupConfig{
			HoverHideDelayMs: 100,
			PointerMargin:    3,
		},
		Log: LogConfig{
			Path:  "logs/viewscope.log",
			Level: "info",
		},
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".viewscope", "config.toml")
}

// Load reads path (or DefaultPath) over the defaults. A missing file is not
// an error. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if env := strings.TrimSpace(os.Getenv(EnvLayout)); env != "" {
		cfg.Layout = env
	}
	if env := strings.TrimSpace(os.Getenv(EnvLogLevel)); env != "" {
		cfg.Log.Level = env
	}
	return cfg
}

// Marshal renders cfg as TOML.
func Marshal(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}
