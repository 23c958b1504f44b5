package slap

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/slapcli/slap/pkg/commands"
	"github.com/slapcli/slap/pkg/style"
	"github.com/slapcli/slap/pkg/validate"
)

// slapFlags carries the root command's registration flags: one boolean per
// supported extension (--md, --txt, ...) plus the modifiers.
type slapFlags struct {
	exts    map[string]*bool
	set     bool
	name    string
	offerID string
}

func newSlapFlags() *slapFlags {
	return &slapFlags{exts: make(map[string]*bool)}
}

// register adds one extension flag per supported extension.
func (f *slapFlags) register(cmd *cobra.Command) {
	for _, ext := range validate.SupportedExtensions() {
		v := new(bool)
		f.exts[ext] = v
		cmd.Flags().BoolVar(v, ext, false, fmt.Sprintf("Target .%s files", ext))
	}
}

// selected returns the single chosen extension or an error when zero or
// multiple extension flags were given.
func (f *slapFlags) selected() (string, error) {
	var chosen []string
	for ext, v := range f.exts {
		if *v {
			chosen = append(chosen, ext)
		}
	}
	switch len(chosen) {
	case 0:
		return "", fmt.Errorf("no extension flag given (e.g. --md)")
	case 1:
		return chosen[0], nil
	default:
		return "", fmt.Errorf("exactly one extension flag must be given, got %d", len(chosen))
	}
}

func runSlap(appPath string, flags *slapFlags, dryRun bool, dataDir string) error {
	ext, err := flags.selected()
	if err != nil {
		return err
	}

	env, err := newEnv(dataDir)
	if err != nil {
		return err
	}

	result, err := commands.Slap(env, commands.SlapOptions{
		AppPath:   appPath,
		Extension: ext,
		Name:      flags.name,
		Set:       flags.set,
		OfferID:   flags.offerID,
		DryRun:    dryRun,
	})
	if err != nil {
		return err
	}

	entry := result.Entry
	switch {
	case result.DryRun:
		style.Info("dry-run: would set %s -> %s (%s)", entry.Extension, appPath, entry.State)
	case result.Reactivated:
		style.Success("reactivated %s -> %s", entry.Extension, appPath)
	default:
		style.Success("%s -> %s (%s)", entry.Extension, appPath, entry.State)
	}
	if result.Offer != nil && !result.DryRun {
		style.Info("offer %q created for %s", result.Offer.OfferID, entry.ID)
	}
	if result.SyncErr != nil {
		style.Warning("OS registration failed (%v); run 'slap sync' to retry", result.SyncErr)
	}
	return nil
}

func newChopCmd(dryRun *bool, dataDir *string) *cobra.Command {
	flags := newSlapFlags()
	var forget bool

	cmd := &cobra.Command{
		Use:     "chop --<ext> [--forget]",
		Short:   MsgChopShort,
		Long:    MsgChopLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ext, err := flags.selected()
			if err != nil {
				return err
			}
			env, err := newEnv(*dataDir)
			if err != nil {
				return err
			}
			result, err := commands.Chop(env, commands.ChopOptions{
				Extension: ext,
				Forget:    forget,
				DryRun:    *dryRun,
			})
			if err != nil {
				return err
			}

			switch {
			case result.DryRun && result.Abandoned:
				style.Info("dry-run: would abandon pending default for %s", result.Entry.Extension)
			case result.DryRun:
				style.Info("dry-run: would deactivate %s", result.Entry.Extension)
			case result.Abandoned:
				style.Success("abandoned pending default for %s", result.Entry.Extension)
			default:
				style.Success("deactivated %s (history kept, reactivate with 'slap --set')",
					result.Entry.Extension)
			}
			if result.OSErr != nil {
				style.Warning("OS association could not be removed: %v", result.OSErr)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&forget, "forget", false, MsgFlagForget)
	return cmd
}

func newSyncCmd(dryRun *bool, dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		Short:   MsgSyncShort,
		Long:    MsgSyncLong,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*dataDir)
			if err != nil {
				return err
			}
			result, err := commands.Sync(env, commands.SyncOptions{DryRun: *dryRun})
			if result != nil {
				style.PrintSyncResult(result)
			}
			return err
		},
	}
}

func newListCmd(dataDir *string) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*dataDir)
			if err != nil {
				return err
			}
			result, err := commands.List(env, commands.ListOptions{
				IncludeOffers:  all,
				IncludeRemoved: all,
			})
			if err != nil {
				return err
			}

			if out := style.RenderDefaultsList(result.Defaults); out != "" {
				fmt.Print(out)
			} else {
				style.Info("no defaults tracked yet")
			}
			if all {
				if out := style.RenderOffersList(result.Offers); out != "" {
					fmt.Println()
					fmt.Print(out)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include removed defaults and offers")
	return cmd
}

func newStatusCmd(dataDir *string) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*dataDir)
			if err != nil {
				return err
			}
			result, err := commands.Status(env)
			if err != nil {
				return err
			}
			if out := style.RenderStatus(result); out != "" {
				fmt.Print(out)
			} else {
				style.Info("no active defaults to check")
			}
			return nil
		},
	}
}

func newOffersCmd(dryRun *bool, dataDir *string) *cobra.Command {
	offersCmd := &cobra.Command{
		Use:     "offers",
		Short:   MsgOffersShort,
		GroupID: "core",
	}

	var withRejected bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: MsgOffersListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*dataDir)
			if err != nil {
				return err
			}
			offers, err := commands.ListOffers(env, withRejected)
			if err != nil {
				return err
			}
			if out := style.RenderOffersList(offers); out != "" {
				fmt.Print(out)
			} else {
				style.Info("no offers yet")
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&withRejected, "all", false, "Include rejected offers")

	useCmd := &cobra.Command{
		Use:   "use <offer-id>",
		Short: MsgOffersUseShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*dataDir)
			if err != nil {
				return err
			}
			result, err := commands.UseOffer(env, commands.UseOfferOptions{
				OfferID: args[0],
				DryRun:  *dryRun,
			})
			if err != nil {
				return err
			}
			if result.DryRun {
				style.Info("dry-run: would activate offer %q", result.Offer.OfferID)
				return nil
			}
			style.Success("offer %q is now active", result.Offer.OfferID)
			if result.Default == nil {
				style.Warning("referenced default %s no longer exists", result.Offer.DefaultID)
			}
			return nil
		},
	}

	var purge bool
	rejectCmd := &cobra.Command{
		Use:   "reject <offer-id>",
		Short: MsgOffersRejectShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnv(*dataDir)
			if err != nil {
				return err
			}
			result, err := commands.RejectOffer(env, commands.RejectOfferOptions{
				OfferID: args[0],
				Purge:   purge,
				DryRun:  *dryRun,
			})
			if err != nil {
				return err
			}
			if result.WasActive {
				style.Warning("offer %q was active; dependent workflows may still reference it",
					result.Offer.OfferID)
			}
			switch {
			case result.DryRun:
				style.Info("dry-run: would reject offer %q", result.Offer.OfferID)
			case result.Purged:
				style.Success("offer %q rejected and purged", result.Offer.OfferID)
			default:
				style.Success("offer %q rejected", result.Offer.OfferID)
			}
			return nil
		},
	}
	rejectCmd.Flags().BoolVar(&purge, "purge", false, "Completely delete the rejected offer")

	offersCmd.AddCommand(listCmd, useCmd, rejectCmd)
	return offersCmd
}
