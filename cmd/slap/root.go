// Package slap wires the CLI surface: cobra commands, flag parsing, result
// rendering, and error-to-exit-code mapping. All real work happens in
// pkg/commands.
package slap

import (
	"embed"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/slapcli/slap/internal/version"
	"github.com/slapcli/slap/pkg/cobrax/topics"
	"github.com/slapcli/slap/pkg/commands"
	"github.com/slapcli/slap/pkg/config"
	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/logging"
	"github.com/slapcli/slap/pkg/platform"
	"github.com/slapcli/slap/pkg/style"
	"github.com/slapcli/slap/pkg/ui"
)

//go:embed topics
var topicsFS embed.FS

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		style.Error("%v", err)
		if hint := recoveryHint(err); hint != "" {
			style.Info("%s", hint)
		}
		return exitCode(err)
	}
	return 0
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		dryRun    bool
		noColor   bool
		dataDir   string
		format    string
	)

	flags := newSlapFlags()

	rootCmd := &cobra.Command{
		Use:     "slap <app-path> --<ext>",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Example: MsgRootExample,
		Version: version.Version,
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(verbosity)

			f, err := ui.ParseFormat(format)
			if err != nil {
				return err
			}
			if noColor {
				f = ui.FormatText
			}
			if f == ui.FormatAuto {
				f = ui.DetectFormat(os.Stdout)
			}
			if f == ui.FormatText {
				style.DisableColor()
			}

			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Help()
				return fmt.Errorf("no application path specified")
			}
			return runSlap(args[0], flags, dryRun, dataDir)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, MsgFlagNoColor)
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", MsgFlagDataDir)
	rootCmd.PersistentFlags().StringVar(&format, "format", "auto", MsgFlagFormat)

	// Root-command flags: one boolean per supported extension plus the
	// registration modifiers.
	flags.register(rootCmd)
	rootCmd.Flags().BoolVarP(&flags.set, "set", "s", false, MsgFlagSet)
	rootCmd.Flags().StringVar(&flags.name, "name", "", MsgFlagName)
	rootCmd.Flags().StringVar(&flags.offerID, "offer", "", MsgFlagOffer)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})

	rootCmd.AddCommand(newChopCmd(&dryRun, &dataDir))
	rootCmd.AddCommand(newSyncCmd(&dryRun, &dataDir))
	rootCmd.AddCommand(newListCmd(&dataDir))
	rootCmd.AddCommand(newStatusCmd(&dataDir))
	rootCmd.AddCommand(newOffersCmd(&dryRun, &dataDir))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newTopicsCmd(rootCmd))

	initHelpTopics(rootCmd)

	return rootCmd
}

// initHelpTopics installs the embedded documentation topics into the help
// command. Help still works without them if the embed is somehow empty.
func initHelpTopics(rootCmd *cobra.Command) {
	sub, err := fs.Sub(topicsFS, "topics")
	if err != nil {
		return
	}
	_ = topics.Initialize(rootCmd, sub, topics.Options{
		Renderer: topics.NewGlamourRenderer(),
	})
}

// newEnv resolves configuration and builds the handler environment. The
// platform handler is constructed exactly once per invocation here and
// threaded through.
func newEnv(dataDir string) (*commands.Env, error) {
	overrides := map[string]interface{}{}
	if dataDir != "" {
		overrides["data_dir"] = dataDir
	}
	cfg, err := config.LoadWithOverrides(overrides)
	if err != nil {
		return nil, err
	}
	return commands.NewEnv(cfg, platform.NewHandler())
}

// exitCode maps error categories to stable process exit codes.
func exitCode(err error) int {
	switch errors.GetErrorCode(err) {
	case errors.ErrInvalidPath, errors.ErrInvalidExtension, errors.ErrInvalidOfferID:
		return 2
	case errors.ErrNoDefault, errors.ErrDefaultExists, errors.ErrOfferNotFound,
		errors.ErrOfferExists, errors.ErrOfferInUse, errors.ErrInvalidTransition:
		return 3
	case errors.ErrDataCorrupted, errors.ErrPermissionDenied, errors.ErrFileNotFound,
		errors.ErrStoreLocked, errors.ErrFileWrite,
		errors.ErrConfigLoad, errors.ErrConfigParse, errors.ErrConfigValid:
		return 4
	case errors.ErrUnsupportedPlatform, errors.ErrBundleIDNotFound,
		errors.ErrRegistryAccess, errors.ErrAppNotFound,
		errors.ErrOSOperation, errors.ErrRollbackFailed:
		return 5
	case errors.ErrPartialSync:
		return 6
	default:
		return 1
	}
}

// recoveryHint suggests a next step for the failure categories that have one.
func recoveryHint(err error) string {
	switch errors.GetErrorCode(err) {
	case errors.ErrDataCorrupted:
		return "the data file is corrupted; restore one of the backups from the backups/ directory"
	case errors.ErrStoreLocked:
		return "another slap process is writing; retry in a moment"
	case errors.ErrPartialSync:
		return "re-run 'slap sync' to retry the failed extensions"
	case errors.ErrRollbackFailed:
		return "the OS association may be inconsistent; run 'slap status' to inspect it"
	default:
		if details := errors.GetErrorDetails(err); details != nil {
			if hint, ok := details["hint"].(string); ok {
				return "hint: " + hint
			}
		}
		return ""
	}
}

func newTopicsCmd(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:     "topics",
		Short:   MsgTopicsShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range rootCmd.Commands() {
				if c.Name() == "help" {
					c.Run(c, []string{"topics"})
					return nil
				}
			}
			return fmt.Errorf("help command not available")
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   "Print version information",
		GroupID: "core",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("slap version %s\n", version.Version)
			fmt.Printf("  commit: %s\n", version.Commit)
			fmt.Printf("  built:  %s\n", version.Date)
		},
	}
}
