package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/studiowebux/mimic/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	// FilePermissions is the default permission mode for regular files (read/write for owner, read for others)
	FilePermissions = 0644
	// DirPermissions is the default permission mode for directories (rwxr-xr-x)
	DirPermissions = 0755

	// EnvConfig overrides the configuration file path
	EnvConfig = "MIMIC_CONFIG"
	// EnvLogLevel overrides the configured log level
	EnvLogLevel = "MIMIC_LOG_LEVEL"

	// DefaultProfile is the tls-client profile presented when none is configured
	DefaultProfile = "safari_15_6_1"
	// DefaultUserAgent matches DefaultProfile
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.6.1 Safari/605.1.15"

	// DefaultPreset is the preset used by the connect command
	DefaultPreset = "connect"

	// ConnectURL, ConnectOrigin and ConnectReferer are the built-in connect endpoint
	ConnectURL     = "https://campapi.diamante.io/api/v1/user/connect-wallet"
	ConnectOrigin  = "https://campaign.diamante.io"
	ConnectReferer = "https://campaign.diamante.io/"
)

var (
	// ConfigDir is the global configuration directory (~/.mimic)
	ConfigDir string

	// ConfigFile is the YAML configuration file
	ConfigFile string

	// DatabasePath is the SQLite database file for invocation history
	DatabasePath string
)

// Config is the process-wide configuration, read once at startup
type Config struct {
	LogLevel string                  `yaml:"log_level"`
	Profile  types.Profile           `yaml:"profile"`
	History  HistoryConfig           `yaml:"history"`
	Presets  map[string]types.Preset `yaml:"presets"`
}

// HistoryConfig controls the invocation history database
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Initialize sets up the configuration paths.
// Nothing is written; the history store creates its directory on first use.
func Initialize() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	ConfigDir = filepath.Join(homeDir, ".mimic")
	ConfigFile = filepath.Join(ConfigDir, "config.yaml")
	DatabasePath = filepath.Join(ConfigDir, "mimic.db")

	return nil
}

// Default returns the configuration a file is decoded onto.
// The profile's User-Agent is filled by Load, so a configured profile name
// never inherits the Safari one.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Profile: types.Profile{
			Name: DefaultProfile,
		},
		History: HistoryConfig{
			Path: DatabasePath,
		},
		Presets: map[string]types.Preset{
			DefaultPreset: connectPreset(),
		},
	}
}

func connectPreset() types.Preset {
	return types.Preset{
		URL: ConnectURL,
		Headers: map[string]string{
			"Origin":  ConnectOrigin,
			"Referer": ConnectReferer,
		},
	}
}

// Load reads the configuration file at path.
// An empty path falls back to MIMIC_CONFIG, then to ~/.mimic/config.yaml;
// only the implicit default may be missing.
func Load(path string) (*Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path == "" {
		path = ConfigFile
		explicit = false
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.LogLevel = level
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Profile.Name == "" {
		c.Profile.Name = DefaultProfile
	}
	if c.Profile.UserAgent == "" {
		if c.Profile.Name != DefaultProfile {
			return fmt.Errorf("profile %q needs a user_agent matching its fingerprint", c.Profile.Name)
		}
		c.Profile.UserAgent = DefaultUserAgent
	}

	if c.History.Path == "" {
		c.History.Path = DatabasePath
	}
	path, err := ExpandPath(c.History.Path)
	if err != nil {
		return err
	}
	c.History.Path = path

	if c.Presets == nil {
		c.Presets = map[string]types.Preset{}
	}
	connect, ok := c.Presets[DefaultPreset]
	if !ok {
		connect = connectPreset()
	} else if connect.URL == "" {
		// a file may override the headers of the connect preset only
		builtin := connectPreset()
		connect.URL = builtin.URL
		connect.Headers = mergeHeaders(builtin.Headers, connect.Headers)
	}
	c.Presets[DefaultPreset] = connect

	for name, preset := range c.Presets {
		c.Presets[name] = withPresetDefaults(preset)
	}
	return nil
}

// withPresetDefaults fills the sentinel, markers and the JSON accept/content-type
// pair a preset needs. Presets always POST.
func withPresetDefaults(p types.Preset) types.Preset {
	p.Method = "POST"
	if p.Sentinel == "" {
		p.Sentinel = "CLOUDFLARE_BLOCKED_ME"
	}
	if len(p.Markers) == 0 {
		p.Markers = []string{"<!doctype html", "<html"}
	}

	p.Headers = mergeHeaders(map[string]string{
		"Accept":       "application/json, text/plain, */*",
		"Content-Type": "application/json",
	}, p.Headers)
	return p
}

// mergeHeaders returns base with overrides applied, matching names case-insensitively
func mergeHeaders(base, overrides map[string]string) map[string]string {
	headers := make(map[string]string, len(base)+len(overrides))
	for key, value := range base {
		headers[key] = value
	}
	for key, value := range overrides {
		for existing := range headers {
			if strings.EqualFold(existing, key) {
				delete(headers, existing)
			}
		}
		headers[key] = value
	}
	return headers
}

// Preset returns the named preset
func (c *Config) Preset(name string) (types.Preset, error) {
	preset, ok := c.Presets[name]
	if !ok {
		return types.Preset{}, fmt.Errorf("preset %q is not configured", name)
	}
	return preset, nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// ExpandPath expands a leading ~/ to the home directory
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, path[2:]), nil
}
