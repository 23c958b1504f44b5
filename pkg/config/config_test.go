// pkg/config/config_test.go
// TEST TYPE: Unit Test (temp config files, scoped env vars)
// DEPENDENCIES: None
// PURPOSE: Layer precedence (defaults < file < env) and validation

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slapcli/slap/pkg/config"
	"github.com/slapcli/slap/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFrom_BuiltInDefaults(t *testing.T) {
	cfg, err := config.LoadFrom("")
	require.NoError(t, err)

	assert.Empty(t, cfg.DataDir)
	assert.True(t, cfg.BackupEnabled)
	assert.Equal(t, 5, cfg.MaxBackups)
	assert.False(t, cfg.Verbose)
}

func TestLoadFrom_MissingFileIsFine(t *testing.T) {
	cfg, err := config.LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxBackups)
}

func TestLoadFrom_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data_dir = "/tmp/slap-data"
backup_enabled = false
max_backups = 10
`)

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/slap-data", cfg.DataDir)
	assert.False(t, cfg.BackupEnabled)
	assert.Equal(t, 10, cfg.MaxBackups)
}

func TestLoadFrom_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `max_backups = 10`)
	t.Setenv("SLAP_MAX_BACKUPS", "2")
	t.Setenv("SLAP_VERBOSE", "true")

	cfg, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.MaxBackups)
	assert.True(t, cfg.Verbose)
}

func TestLoadWithOverrides_FlagsWinOverEnv(t *testing.T) {
	t.Setenv("SLAP_DATA_DIR", "/from/env")
	t.Setenv("SLAP_MAX_BACKUPS", "9")
	t.Setenv("SLAP_CONFIG_DIR", t.TempDir()) // no config file there

	cfg, err := config.LoadWithOverrides(map[string]interface{}{
		"data_dir": "/from/flag",
	})
	require.NoError(t, err)
	assert.Equal(t, "/from/flag", cfg.DataDir)
	assert.Equal(t, 9, cfg.MaxBackups, "untouched keys keep the env layer")
}

func TestLoadFrom_MalformedFile(t *testing.T) {
	path := writeConfig(t, `max_backups = = 10`)

	_, err := config.LoadFrom(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestLoadFrom_NegativeRetentionRejected(t *testing.T) {
	path := writeConfig(t, `max_backups = -1`)

	_, err := config.LoadFrom(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}
