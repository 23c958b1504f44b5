package style

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/slapcli/slap/pkg/commands"
	"github.com/slapcli/slap/pkg/platform"
	"github.com/slapcli/slap/pkg/types"
)

// RenderDefaultsList renders the defaults table. Returns "" when empty so
// the caller can print a muted placeholder instead.
func RenderDefaultsList(entries []types.DefaultEntry) string {
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(Style("Header").Render(fmt.Sprintf("%-8s %-9s %-6s %s",
		"EXT", "STATE", "SYNCED", "APPLICATION")))
	b.WriteByte('\n')

	for _, entry := range entries {
		synced := "-"
		if entry.OSSynced {
			synced = "yes"
		}
		app := entry.ApplicationPath
		if entry.ApplicationName != "" {
			app = fmt.Sprintf("%s (%s)", entry.ApplicationName, entry.ApplicationPath)
		}
		line := fmt.Sprintf("%-8s %-9s %-6s %s",
			entry.Extension, entry.State, synced, app)
		b.WriteString(stateStyle(entry.State).Render(line))
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderOffersList renders the offers table.
func RenderOffersList(offers []types.OfferEntry) string {
	if len(offers) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(Style("Header").Render(fmt.Sprintf("%-20s %-9s %-5s %-20s %s",
		"OFFER", "STATE", "AUTO", "DEFAULT", "LAST USED")))
	b.WriteByte('\n')

	for _, offer := range offers {
		auto := "-"
		if offer.AutoCreated {
			auto = "yes"
		}
		used := "-"
		if offer.UsedAt != nil {
			used = offer.UsedAt.Format(time.RFC3339)
		}
		b.WriteString(fmt.Sprintf("%-20s %-9s %-5s %-20s %s\n",
			offer.OfferID, offer.State, auto, offer.DefaultID, used))
	}
	return b.String()
}

// RenderStatus renders the per-extension OS diff.
func RenderStatus(result *commands.StatusResult) string {
	if len(result.Extensions) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(Style("Header").Render(fmt.Sprintf("%-8s %-12s %s",
		"EXT", "STATUS", "OS DEFAULT")))
	b.WriteByte('\n')

	for _, row := range result.Extensions {
		osDefault := row.OSDefault
		if osDefault == "" {
			osDefault = "(unknown)"
		}
		line := fmt.Sprintf("%-8s %-12s %s", row.Entry.Extension, row.State, osDefault)
		switch row.State {
		case commands.SyncStateInSync:
			b.WriteString(Style("Active").Render(line))
		case commands.SyncStateOutOfSync:
			b.WriteString(Style("Pending").Render(line))
		default:
			b.WriteString(Style("Muted").Render(line))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// PrintSyncResult prints per-entry outcomes and the aggregate line.
func PrintSyncResult(result *platform.SyncResult) {
	for _, outcome := range result.Outcomes {
		switch outcome.Status {
		case platform.EntrySynced:
			Success("%s -> %s", outcome.Extension, outcome.ApplicationPath)
		case platform.EntryWouldSync:
			Info("would sync %s -> %s", outcome.Extension, outcome.ApplicationPath)
		case platform.EntrySkipped:
			Info("%s already in sync, skipped", outcome.Extension)
		case platform.EntryFailed:
			Error("%s failed: %v", outcome.Extension, outcome.Err)
		}
	}

	switch {
	case result.Failed == 0 && result.Synced == 0:
		Info("nothing to sync (%d already consistent)", result.Skipped)
	case result.Failed == 0:
		Success("synced %d, skipped %d", result.Synced, result.Skipped)
	default:
		Warning("synced %d, skipped %d, failed %d", result.Synced, result.Skipped, result.Failed)
	}
}

func stateStyle(state types.DefaultState) lipgloss.Style {
	switch state {
	case types.StateActive:
		return Style("Active")
	case types.StatePending:
		return Style("Pending")
	case types.StateRemoved:
		return Style("Removed")
	default:
		return Style("Muted")
	}
}
