// Package commands implements the command handlers behind the CLI surface.
// Each handler takes an Options struct, enforces validation and the state
// machines, performs store mutations, and returns a Result struct for the
// CLI layer to render. Handlers never print; rendering belongs to cmd/slap
// and pkg/style.
package commands

import (
	"github.com/slapcli/slap/pkg/config"
	"github.com/slapcli/slap/pkg/paths"
	"github.com/slapcli/slap/pkg/platform"
	"github.com/slapcli/slap/pkg/store"
)

// Env bundles the dependencies every handler needs: the resolved
// configuration, the two stores, and the platform handler. The top-level
// dispatcher constructs one Env per invocation and threads it through;
// tests build their own with temp directories and mock handlers.
type Env struct {
	Config   *config.Config
	Paths    paths.Paths
	Defaults *store.DefaultsStore
	Offers   *store.OffersStore
	Platform platform.Handler
}

// NewEnv builds an Env from the resolved configuration and a platform
// handler.
func NewEnv(cfg *config.Config, handler platform.Handler) (*Env, error) {
	p, err := paths.New(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	opts := store.Options{
		BackupEnabled: cfg.BackupEnabled,
		MaxBackups:    cfg.MaxBackups,
	}
	return &Env{
		Config:   cfg,
		Paths:    p,
		Defaults: store.NewDefaultsStore(p, opts),
		Offers:   store.NewOffersStore(p, opts),
		Platform: handler,
	}, nil
}
