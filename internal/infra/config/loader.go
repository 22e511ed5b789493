// Package config loads taskhub configuration from TOML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/taskhub/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files.
type Loader struct {
	dataDir       string // Path to the local .taskhub directory
	globalConfDir string // Path to global config directory (e.g., ~/.config/taskhub)
}

// NewLoader creates a new Loader.
func NewLoader(dataDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: defaultGlobalConfigDir(),
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(dataDir, globalConfDir string) *Loader {
	return &Loader{
		dataDir:       dataDir,
		globalConfDir: globalConfDir,
	}
}

// defaultGlobalConfigDir returns $XDG_CONFIG_HOME/taskhub, falling back to ~/.config/taskhub.
func defaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalAppDir(configHome)
}

// Load returns the merged configuration.
// Precedence: default <- global <- local.
func (l *Loader) Load() (*domain.Config, error) {
	global, err := l.LoadGlobal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	local, err := l.LoadLocal()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := domain.NewDefaultConfig()
	for _, layer := range []*domain.Config{global, local} {
		if layer != nil {
			cfg = mergeConfigs(cfg, layer)
		}
	}
	return cfg, nil
}

// LoadGlobal returns only the global configuration.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return loadFile(filepath.Join(l.globalConfDir, domain.ConfigFileName))
}

// LoadLocal returns only the configuration in the data directory.
func (l *Loader) LoadLocal() (*domain.Config, error) {
	if l.dataDir == "" {
		return nil, os.ErrNotExist
	}
	return loadFile(filepath.Join(l.dataDir, domain.ConfigFileName))
}

// loadFile parses one TOML file. Unknown sections and keys become warnings.
func loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg, warnings := convertRaw(raw)
	for i, w := range warnings {
		warnings[i] = fmt.Sprintf("%s: %s", path, w)
	}
	cfg.Warnings = warnings
	return cfg, nil
}

// convertRaw maps the raw TOML tree onto domain.Config.
func convertRaw(raw map[string]any) (*domain.Config, []string) {
	res := &domain.Config{}
	var warnings []string

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown key: %s", section))
			continue
		}
		unknown := func(k string) {
			warnings = append(warnings, fmt.Sprintf("unknown key in [%s]: %s", section, k))
		}

		switch section {
		case "store":
			for k, v := range m {
				switch k {
				case "path":
					if s, ok := v.(string); ok {
						res.Store.Path = s
					}
				case "busy_timeout":
					if n, ok := v.(int64); ok {
						res.Store.BusyTimeout = int(n)
					}
				default:
					unknown(k)
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					if s, ok := v.(string); ok {
						res.Log.Level = s
					}
				default:
					unknown(k)
				}
			}
		case "server":
			for k, v := range m {
				switch k {
				case "addr":
					if s, ok := v.(string); ok {
						res.Server.Addr = s
					}
				default:
					unknown(k)
				}
			}
		case "actor":
			for k, v := range m {
				switch k {
				case "default":
					switch d := v.(type) {
					case string:
						res.Actor.Default = d
					case int64:
						res.Actor.Default = fmt.Sprintf("%d", d)
					}
				default:
					unknown(k)
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	return res, warnings
}

// mergeConfigs merges two configs, with override taking precedence.
// Empty values in override leave base untouched.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := *base
	result.Warnings = append(append([]string{}, base.Warnings...), override.Warnings...)

	if override.Store.Path != "" {
		result.Store.Path = override.Store.Path
	}
	if override.Store.BusyTimeout > 0 {
		result.Store.BusyTimeout = override.Store.BusyTimeout
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	if override.Server.Addr != "" {
		result.Server.Addr = override.Server.Addr
	}
	if override.Actor.Default != "" {
		result.Actor.Default = override.Actor.Default
	}
	return &result
}
