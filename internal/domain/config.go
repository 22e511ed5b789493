package domain

import (
	"path/filepath"
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string     `toml:"-"`
	Store    StoreConfig  `toml:"store"`
	Log      LogConfig    `toml:"log"`
	Server   ServerConfig `toml:"server"`
	Actor    ActorConfig  `toml:"actor"`
}

// StoreConfig holds settings for the database from [store] section.
type StoreConfig struct {
	Path        string `toml:"path,omitempty"`         // SQLite file path (default: <data dir>/taskhub.db)
	BusyTimeout int    `toml:"busy_timeout,omitempty"` // Milliseconds to wait on a locked database
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// ServerConfig holds HTTP settings from [server] section.
type ServerConfig struct {
	Addr string `toml:"addr,omitempty"` // Listen address for 'taskhub serve'
}

// ActorConfig holds the default identity from [actor] section.
type ActorConfig struct {
	Default string `toml:"default,omitempty"` // User ID or email used when --as is not given
}

// Default configuration values.
const (
	DefaultLogLevel    = "info"
	DefaultServerAddr  = "127.0.0.1:8000"
	DefaultBusyTimeout = 5000
)

// Directory and file names for taskhub.
const (
	DataDirName    = ".taskhub"    // Directory name for local data
	AppDirName     = "taskhub"     // Directory name under the config home
	ConfigFileName = "config.toml" // Config file name
	StoreFileName  = "taskhub.db"  // Database file name
)

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			BusyTimeout: DefaultBusyTimeout,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
	}
}

// LocalDataDir returns the data directory for a working directory.
func LocalDataDir(root string) string {
	return filepath.Join(root, DataDirName)
}

// LocalConfigPath returns the local config path.
func LocalConfigPath(root string) string {
	return filepath.Join(LocalDataDir(root), ConfigFileName)
}

// GlobalAppDir returns the global taskhub directory path.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalAppDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// GlobalConfigPath returns the global config path.
func GlobalConfigPath(configHome string) string {
	return filepath.Join(GlobalAppDir(configHome), ConfigFileName)
}

// StorePath returns the database path inside a data directory.
func StorePath(dataDir string) string {
	return filepath.Join(dataDir, StoreFileName)
}

// ConfigInfo describes one configuration file.
type ConfigInfo struct {
	Path    string
	Content string
	Exists  bool
}

// ConfigManager inspects and creates configuration files.
type ConfigManager interface {
	LocalConfigInfo() ConfigInfo
	GlobalConfigInfo() ConfigInfo
	InitLocalConfig(cfg *Config) (string, error)
}
