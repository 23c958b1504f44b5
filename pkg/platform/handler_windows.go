//go:build windows

package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/logging"
)

const (
	classesKeyPath = `Software\Classes`

	shcneAssocChanged = 0x08000000
	shcnfIDList       = 0x0000
)

var (
	shell32            = windows.NewLazySystemDLL("shell32.dll")
	procSHChangeNotify = shell32.NewProc("SHChangeNotify")
)

// windowsHandler drives per-user file associations under HKCU\Software\
// Classes: a slap-owned ProgID key carrying the open command, and the
// extension key pointing at it.
type windowsHandler struct{}

func newNativeHandler() Handler {
	return &windowsHandler{}
}

func (h *windowsHandler) Platform() Platform { return Windows }

// VerifyApplication resolves the path to an executable the registry open
// command can launch.
func (h *windowsHandler) VerifyApplication(path string) (*AppInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrAppNotFound,
				"application not found at %q", path).WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrInvalidPath,
			"cannot access application at %q", path)
	}
	if info.IsDir() {
		return nil, errors.Newf(errors.ErrAppNotFound,
			"%q is a directory, expected an executable", path).
			WithDetail("path", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return &AppInfo{Path: path, Name: name}, nil
}

// SetDefault creates the slap ProgID key for the extension, points the
// extension key at it, and notifies the shell. If associating the extension
// fails after the ProgID key was already created, the orphan key is rolled
// back; a rollback that itself fails surfaces as ROLLBACK_FAILED since the
// registry may be left in a state slap did not intend.
func (h *windowsHandler) SetDefault(extension, appPath string, dryRun bool) (*SetResult, error) {
	logger := logging.GetLogger("platform.windows")

	appInfo, err := h.VerifyApplication(appPath)
	if err != nil {
		return nil, err
	}
	appInfo.ProgID = progIDFor(extension)

	previous, err := h.CurrentDefault(extension)
	if err != nil {
		return nil, err
	}

	result := &SetResult{
		Extension:       extension,
		ApplicationPath: appPath,
		AppInfo:         *appInfo,
		PreviousDefault: previous,
		DryRun:          dryRun,
	}
	if dryRun {
		return result, nil
	}

	if err := createProgID(appInfo.ProgID, appInfo.Name, appPath); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRegistryAccess,
			"failed to create program identifier %s", appInfo.ProgID).
			WithDetail("rollback", RollbackInfo{Attempted: false,
				Message: "no registry state was changed"})
	}

	if err := associateExtension(extension, appInfo.ProgID); err != nil {
		// The ProgID key exists but the extension still points at the old
		// handler. Remove the orphan key so the registry matches the
		// pre-call state.
		rollback := RollbackInfo{Attempted: true}
		if rbErr := deleteProgID(appInfo.ProgID); rbErr != nil {
			rollback.Succeeded = boolPtr(false)
			rollback.Message = fmt.Sprintf("failed to remove orphan key %s: %v",
				appInfo.ProgID, rbErr)
			logger.Error().Err(rbErr).Str("progID", appInfo.ProgID).
				Msg("Rollback failed, registry left inconsistent")
			return nil, errors.Wrapf(err, errors.ErrRollbackFailed,
				"failed to associate %s and could not roll back", extension).
				WithDetail("rollback", rollback)
		}
		rollback.Succeeded = boolPtr(true)
		rollback.Message = fmt.Sprintf("removed orphan key %s", appInfo.ProgID)
		return nil, errors.Wrapf(err, errors.ErrRegistryAccess,
			"failed to associate %s with %s", extension, appInfo.ProgID).
			WithDetail("rollback", rollback)
	}

	notifyShell()

	logger.Info().
		Str("extension", extension).
		Str("progID", appInfo.ProgID).
		Str("previous", previous).
		Msg("Registered default application")
	return result, nil
}

// RemoveDefault deletes the association and the slap ProgID key. This resets
// to whatever the system falls back to; it does not restore a prior
// third-party default.
func (h *windowsHandler) RemoveDefault(extension string) error {
	extKey, err := registry.OpenKey(registry.CURRENT_USER,
		classesKeyPath+`\`+extension, registry.SET_VALUE|registry.QUERY_VALUE)
	if err != nil {
		if err == registry.ErrNotExist {
			return nil
		}
		return errors.Wrapf(err, errors.ErrRegistryAccess,
			"cannot open registry key for %s", extension)
	}
	defer extKey.Close()

	current, _, err := extKey.GetStringValue("")
	if err != nil && err != registry.ErrNotExist {
		return errors.Wrapf(err, errors.ErrRegistryAccess,
			"cannot read current association for %s", extension)
	}

	if err := extKey.DeleteValue(""); err != nil && err != registry.ErrNotExist {
		return errors.Wrapf(err, errors.ErrRegistryAccess,
			"cannot clear association for %s", extension)
	}

	// Only clean up ProgID keys slap itself created.
	if strings.HasPrefix(current, "slap.") {
		if err := deleteProgID(current); err != nil {
			return errors.Wrapf(err, errors.ErrRegistryAccess,
				"cannot remove program identifier %s", current)
		}
	}

	notifyShell()
	return nil
}

// CurrentDefault resolves the extension's ProgID to the executable in its
// open command. Missing keys mean the OS has no opinion.
func (h *windowsHandler) CurrentDefault(extension string) (string, error) {
	extKey, err := registry.OpenKey(registry.CURRENT_USER,
		classesKeyPath+`\`+extension, registry.QUERY_VALUE)
	if err != nil {
		return "", nil
	}
	defer extKey.Close()

	progID, _, err := extKey.GetStringValue("")
	if err != nil || progID == "" {
		return "", nil
	}

	cmdKey, err := registry.OpenKey(registry.CURRENT_USER,
		classesKeyPath+`\`+progID+`\shell\open\command`, registry.QUERY_VALUE)
	if err != nil {
		return "", nil
	}
	defer cmdKey.Close()

	command, _, err := cmdKey.GetStringValue("")
	if err != nil {
		return "", nil
	}
	return executableFromCommand(command), nil
}

func progIDFor(extension string) string {
	return "slap" + extension // ".md" -> "slap.md"
}

func createProgID(progID, displayName, appPath string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER,
		classesKeyPath+`\`+progID, registry.ALL_ACCESS)
	if err != nil {
		return err
	}
	defer key.Close()

	if err := key.SetStringValue("", displayName); err != nil {
		return err
	}

	cmdKey, _, err := registry.CreateKey(registry.CURRENT_USER,
		classesKeyPath+`\`+progID+`\shell\open\command`, registry.ALL_ACCESS)
	if err != nil {
		return err
	}
	defer cmdKey.Close()

	return cmdKey.SetStringValue("", fmt.Sprintf(`"%s" "%%1"`, appPath))
}

func associateExtension(extension, progID string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER,
		classesKeyPath+`\`+extension, registry.ALL_ACCESS)
	if err != nil {
		return err
	}
	defer key.Close()

	return key.SetStringValue("", progID)
}

func deleteProgID(progID string) error {
	base := classesKeyPath + `\` + progID
	// Delete leaves first; the registry refuses to delete keys with subkeys.
	for _, sub := range []string{`\shell\open\command`, `\shell\open`, `\shell`, ``} {
		if err := registry.DeleteKey(registry.CURRENT_USER, base+sub); err != nil &&
			err != registry.ErrNotExist {
			return err
		}
	}
	return nil
}

// executableFromCommand extracts the executable path from an open command
// like `"C:\Apps\editor.exe" "%1"`.
func executableFromCommand(command string) string {
	command = strings.TrimSpace(command)
	if command == "" {
		return ""
	}
	if command[0] == '"' {
		if end := strings.Index(command[1:], `"`); end >= 0 {
			return command[1 : end+1]
		}
		return strings.Trim(command, `"`)
	}
	if idx := strings.Index(command, " "); idx >= 0 {
		return command[:idx]
	}
	return command
}

func notifyShell() {
	// Best effort: a failed notification only delays Explorer noticing.
	_, _, _ = procSHChangeNotify.Call(shcneAssocChanged, shcnfIDList, 0, 0)
}
