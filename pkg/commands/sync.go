package commands

import (
	"github.com/slapcli/slap/pkg/platform"
)

// SyncOptions defines the options for pushing active defaults to the OS.
type SyncOptions struct {
	DryRun bool
}

// Sync applies every active default entry to the OS. Failures are isolated
// per extension; see platform.SyncAll for the aggregate error contract.
func Sync(env *Env, opts SyncOptions) (*platform.SyncResult, error) {
	return platform.SyncAll(env.Platform, env.Defaults, opts.DryRun)
}
