// Package paths provides centralized path handling for slap.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/slapcli/slap/pkg/errors"
)

// Environment variable names
const (
	// EnvSlapDataDir overrides the XDG data directory for slap
	EnvSlapDataDir = "SLAP_DATA_DIR"

	// EnvSlapConfigDir overrides the XDG config directory for slap
	EnvSlapConfigDir = "SLAP_CONFIG_DIR"
)

// Default directories and files. These define slap's on-disk datastore
// structure and are NOT user-configurable; the data directory itself is
// (see pkg/config).
const (
	// SlapDirName is the directory name for slap-specific files
	SlapDirName = "slap"

	// DefaultsFileName is the defaults store document
	DefaultsFileName = "defaults.json"

	// OffersFileName is the offers store document
	OffersFileName = "offers.json"

	// BackupsDir is the subdirectory for timestamped store backups
	BackupsDir = "backups"

	// ConfigFileName is the user configuration file
	ConfigFileName = "config.toml"
)

// Paths provides centralized path management for slap
type Paths interface {
	DataDir() string
	ConfigDir() string
	ConfigFilePath() string
	DefaultsFilePath() string
	OffersFilePath() string
	BackupsDir() string
}

type paths struct {
	dataDir   string
	configDir string
}

// New creates a Paths instance. An explicit dataDir (normally from the
// resolved configuration) wins over the SLAP_DATA_DIR environment variable,
// which wins over the XDG default.
func New(dataDir string) (Paths, error) {
	p := &paths{}

	switch {
	case dataDir != "":
		p.dataDir = expandHome(dataDir)
	case os.Getenv(EnvSlapDataDir) != "":
		p.dataDir = expandHome(os.Getenv(EnvSlapDataDir))
	default:
		p.dataDir = filepath.Join(xdg.DataHome, SlapDirName)
	}

	absData, err := filepath.Abs(p.dataDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidPath,
			"failed to resolve data directory %q", p.dataDir)
	}
	p.dataDir = absData

	if configDir := os.Getenv(EnvSlapConfigDir); configDir != "" {
		p.configDir = expandHome(configDir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, SlapDirName)
	}

	return p, nil
}

func (p *paths) DataDir() string   { return p.dataDir }
func (p *paths) ConfigDir() string { return p.configDir }

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

func (p *paths) DefaultsFilePath() string {
	return filepath.Join(p.dataDir, DefaultsFileName)
}

func (p *paths) OffersFilePath() string {
	return filepath.Join(p.dataDir, OffersFileName)
}

func (p *paths) BackupsDir() string {
	return filepath.Join(p.dataDir, BackupsDir)
}

// expandHome expands a leading ~/ to the user's home directory
func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
