// Package config resolves the mbib data directory and global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "mbib"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// DataDirEnv overrides the data directory location.
	DataDirEnv = "MBIB_DATA_DIR"
)

// GlobalConfig is the configuration stored in ~/.config/mbib/config.yml.
type GlobalConfig struct {
	DataDir string            `yaml:"data_dir,omitempty"`
	Aliases map[string]string `yaml:"aliases,omitempty"` // alias -> KEY:ID
}

// GlobalConfigPath returns the global config file path, respecting
// XDG_CONFIG_HOME.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobal loads the global configuration. A missing file yields an empty
// config, not an error.
func LoadGlobal() (*GlobalConfig, error) {
	return loadGlobalFrom(GlobalConfigPath())
}

func loadGlobalFrom(path string) (*GlobalConfig, error) {
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.DataDir != "" {
		cfg.DataDir = ExpandTilde(cfg.DataDir)
	}
	return &cfg, nil
}

// Save writes the global configuration.
func (c *GlobalConfig) Save() error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// DataDir resolves the data directory. Precedence: the explicit override
// (CLI flag), then MBIB_DATA_DIR, then the global config, then the XDG data
// home default. The resolved path is always passed explicitly to the
// components that need it; nothing else reads ambient process state.
func DataDir(override string) (string, error) {
	if override != "" {
		return ExpandTilde(override), nil
	}
	if env := os.Getenv(DataDirEnv); env != "" {
		return ExpandTilde(env), nil
	}

	cfg, err := LoadGlobal()
	if err != nil {
		return "", err
	}
	if cfg.DataDir != "" {
		return cfg.DataDir, nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "mbib"), nil
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
