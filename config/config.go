// Package config holds the toolchain's persistent and per-run settings:
// a DefaultConfig / Load / LoadFrom / Save shape, backed by a TOML file
// and platform-specific config-path resolution, with HERA's own setting
// groups (CLI defaults, debugger display preferences).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the persisted settings file, optionally overridden per-run by
// CLI flags (see the flag set in cmd/hera/main.go).
type Config struct {
	Run struct {
		Throttle     int    `toml:"throttle"`
		BigStack     bool   `toml:"big_stack"`
		WarnOctalOn  bool   `toml:"warn_octal_on"`
		NoDebugOps   bool   `toml:"no_debug_ops"`
		NoRetWarn    bool   `toml:"no_ret_warn"`
		HeraCDir     string `toml:"hera_c_dir"`
	} `toml:"run"`

	Debugger struct {
		HistorySize   int  `toml:"history_size"`
		ShowSource    bool `toml:"show_source"`
		ShowRegisters bool `toml:"show_registers"`
	} `toml:"debugger"`

	Display struct {
		Color        bool `toml:"color"`
		DisasmLines  int  `toml:"disasm_lines"`
	} `toml:"display"`
}

const defaultHeraCDir = "/home/courses/lib/HERA-lib"

// DefaultConfig returns the settings the CLI uses absent a config file or
// flag override.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Run.Throttle = 0
	cfg.Run.BigStack = false
	cfg.Run.WarnOctalOn = false
	cfg.Run.NoDebugOps = false
	cfg.Run.NoRetWarn = false
	cfg.Run.HeraCDir = defaultHeraCDir

	cfg.Debugger.HistorySize = 1000
	cfg.Debugger.ShowSource = true
	cfg.Debugger.ShowRegisters = true

	cfg.Display.Color = true
	cfg.Display.DisasmLines = 5
	return cfg
}

// GetConfigPath returns the platform-specific config file path.
func GetConfigPath() string {
	var dir string
	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		dir = filepath.Join(dir, "hera")
	case "darwin", "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "hera.toml"
		}
		dir = filepath.Join(home, ".config", "hera")
	default:
		return "hera.toml"
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "hera.toml"
	}
	return filepath.Join(dir, "hera.toml")
}

// Load reads the default config path, falling back to DefaultConfig when
// it does not exist.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// HeraCDir resolves the HERA_C_DIR environment variable, falling back to
// cfg's configured default.
func (c *Config) HeraCDir() string {
	if v := os.Getenv("HERA_C_DIR"); v != "" {
		return v
	}
	if c.Run.HeraCDir != "" {
		return c.Run.HeraCDir
	}
	return defaultHeraCDir
}
