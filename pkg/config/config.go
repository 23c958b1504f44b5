// Package config loads and merges slap's configuration from four layers:
// embedded defaults, the user config file (TOML), SLAP_* environment
// variables, and explicit overrides from CLI flags. Later layers win.
package config

import (
	_ "embed"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Config is the resolved configuration consumed by the command handlers.
type Config struct {
	// DataDir is where defaults.json, offers.json and backups live.
	// Empty means "use the XDG data directory".
	DataDir string `koanf:"data_dir"`

	// BackupEnabled controls whether Save() snapshots the previous file.
	BackupEnabled bool `koanf:"backup_enabled"`

	// MaxBackups is the backup retention count (oldest pruned first).
	MaxBackups int `koanf:"max_backups"`

	// Verbose mirrors the -v flag for config-file users.
	Verbose bool `koanf:"verbose"`
}

// rawBytesProvider lets koanf load the embedded defaults without a file.
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// Load resolves the configuration. The config file is looked up in the slap
// config directory and is optional; a present-but-malformed file is a
// CONFIG_PARSE error, never silently ignored.
func Load() (*Config, error) {
	return LoadWithOverrides(nil)
}

// LoadWithOverrides resolves the configuration with an extra top layer of
// explicit overrides (normally CLI flags), which win over everything.
func LoadWithOverrides(overrides map[string]interface{}) (*Config, error) {
	p, err := paths.New("")
	if err != nil {
		return nil, err
	}
	return loadFrom(p.ConfigFilePath(), overrides)
}

// LoadFrom resolves the configuration with an explicit config file path.
// Primarily used by tests.
func LoadFrom(configPath string) (*Config, error) {
	return loadFrom(configPath, nil)
}

func loadFrom(configPath string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load built-in defaults")
	}

	// 2. User config file, if present
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigParse,
					"failed to parse config file %s", configPath)
			}
		}
	}

	// 3. Environment variables: SLAP_MAX_BACKUPS -> max_backups
	if err := k.Load(env.Provider("SLAP_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "SLAP_"))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	// 4. Explicit overrides (CLI flags)
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "invalid configuration")
	}

	if cfg.MaxBackups < 0 {
		return nil, errors.Newf(errors.ErrConfigValid,
			"max_backups must be >= 0, got %d", cfg.MaxBackups)
	}

	return &cfg, nil
}
