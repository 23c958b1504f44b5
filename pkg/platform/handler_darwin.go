//go:build darwin

package platform

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/slapcli/slap/pkg/errors"
	"github.com/slapcli/slap/pkg/logging"
)

// darwinHandler drives Launch Services. Registration goes through the duti
// utility when present, with a `defaults write` LSHandlers fallback.
type darwinHandler struct{}

func newNativeHandler() Handler {
	return &darwinHandler{}
}

func (h *darwinHandler) Platform() Platform { return MacOS }

// VerifyApplication resolves the path into an .app bundle and extracts its
// CFBundleIdentifier from Info.plist. Launch Services registers bundles, not
// raw executables, so anything without a bundle id is rejected.
func (h *darwinHandler) VerifyApplication(path string) (*AppInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrAppNotFound,
				"application not found at %q", path).WithDetail("path", path)
		}
		return nil, errors.Wrapf(err, errors.ErrInvalidPath,
			"cannot access application at %q", path)
	}
	if !info.IsDir() || !strings.HasSuffix(path, ".app") {
		return nil, errors.Newf(errors.ErrAppNotFound,
			"%q is not an application bundle; Launch Services requires a .app path", path).
			WithDetail("path", path)
	}

	bundleID, err := readBundleID(filepath.Join(path, "Contents", "Info.plist"))
	if err != nil {
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), ".app")
	return &AppInfo{Path: path, Name: name, BundleID: bundleID}, nil
}

// SetDefault registers the application for the extension. The OS default is
// queried and recorded before anything mutates so callers get rollback
// context even though the macOS path is a single registration call.
func (h *darwinHandler) SetDefault(extension, appPath string, dryRun bool) (*SetResult, error) {
	logger := logging.GetLogger("platform.darwin")

	appInfo, err := h.VerifyApplication(appPath)
	if err != nil {
		return nil, err
	}

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

	tag := strings.TrimPrefix(extension, ".")
	if err := runDuti(appInfo.BundleID, tag); err != nil {
		logger.Debug().Err(err).Msg("duti registration failed, trying LSHandlers fallback")
		if err := writeLSHandler(appInfo.BundleID, tag); err != nil {
			// Nothing was mutated: both strategies failed before changing
			// Launch Services state, so no rollback is needed.
			return nil, errors.Wrapf(err, errors.ErrOSOperation,
				"failed to register %s for %s with Launch Services",
				appInfo.BundleID, extension).
				WithDetail("rollback", RollbackInfo{Attempted: false,
					Message: "no OS state was changed"})
		}
	}

	logger.Info().
		Str("extension", extension).
		Str("bundleID", appInfo.BundleID).
		Str("previous", previous).
		Msg("Registered default application")
	return result, nil
}

// RemoveDefault deletes the extension's LSHandlers entries in place with
// plutil, by array index. Entries slap never wrote (URL schemes, UTI content
// types, role-specific handlers) are left untouched. This resets to the
// system default; it does not restore a prior third-party handler.
func (h *darwinHandler) RemoveDefault(extension string) error {
	tag := strings.TrimPrefix(extension, ".")

	plistPath, xmlData, err := readLSPreferences()
	if err != nil {
		return errors.Wrapf(err, errors.ErrOSOperation,
			"cannot read Launch Services handlers")
	}
	if xmlData == nil {
		return nil
	}

	indices, err := lsHandlerIndices(xmlData, tag)
	if err != nil {
		return errors.Wrapf(err, errors.ErrOSOperation,
			"cannot read Launch Services handlers")
	}

	// Highest index first so earlier removals do not shift the rest.
	for i := len(indices) - 1; i >= 0; i-- {
		keyPath := fmt.Sprintf("LSHandlers.%d", indices[i])
		out, err := exec.Command("plutil", "-remove", keyPath, plistPath).CombinedOutput()
		if err != nil {
			return errors.Wrapf(
				fmt.Errorf("plutil -remove %s: %w (%s)", keyPath, err,
					strings.TrimSpace(string(out))),
				errors.ErrOSOperation,
				"failed to remove %s handler from Launch Services", extension)
		}
	}
	return nil
}

// CurrentDefault asks duti which application handles the extension. A
// missing duti or an extension nobody claims yields "", never an error.
func (h *darwinHandler) CurrentDefault(extension string) (string, error) {
	tag := strings.TrimPrefix(extension, ".")

	out, err := exec.Command("duti", "-x", tag).Output()
	if err != nil {
		// duti absent or no registered handler: the OS opinion is unknown.
		return "", nil
	}

	// duti -x prints: display name, bundle path, bundle id.
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) >= 2 {
		return strings.TrimSpace(lines[1]), nil
	}
	return "", nil
}

// readBundleID extracts CFBundleIdentifier from an Info.plist. Binary
// plists are converted to XML with plutil first; XML plists parse directly.
func readBundleID(plistPath string) (string, error) {
	var xmlData []byte
	out, err := exec.Command("plutil", "-convert", "xml1", "-o", "-", plistPath).Output()
	if err == nil {
		xmlData = out
	} else {
		raw, readErr := os.ReadFile(plistPath)
		if readErr != nil {
			return "", errors.Wrapf(readErr, errors.ErrBundleIDNotFound,
				"cannot read %s", plistPath)
		}
		xmlData = raw
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlData); err != nil {
		return "", errors.Wrapf(err, errors.ErrBundleIDNotFound,
			"cannot parse %s", plistPath)
	}

	plist := doc.SelectElement("plist")
	if plist == nil {
		return "", errors.Newf(errors.ErrBundleIDNotFound,
			"%s is not a property list", plistPath)
	}
	dict := plist.SelectElement("dict")
	if dict == nil {
		return "", errors.Newf(errors.ErrBundleIDNotFound,
			"%s has no top-level dict", plistPath)
	}
	if id := plistDictString(dict, "CFBundleIdentifier"); id != "" {
		return id, nil
	}
	return "", errors.Newf(errors.ErrBundleIDNotFound,
		"no CFBundleIdentifier in %s", plistPath).
		WithDetail("plist", plistPath)
}

// plistDictString returns the string value following the given key in a
// plist dict, where children alternate key/value.
func plistDictString(dict *etree.Element, key string) string {
	children := dict.ChildElements()
	for i := 0; i < len(children)-1; i++ {
		if children[i].Tag == "key" && children[i].Text() == key {
			if children[i+1].Tag == "string" {
				return children[i+1].Text()
			}
			return ""
		}
	}
	return ""
}

func runDuti(bundleID, tag string) error {
	out, err := exec.Command("duti", "-s", bundleID, tag, "all").CombinedOutput()
	if err != nil {
		return fmt.Errorf("duti -s %s %s all: %w (%s)", bundleID, tag, err,
			strings.TrimSpace(string(out)))
	}
	return nil
}

// writeLSHandler appends an LSHandlers entry via defaults(1). Launch
// Services picks the change up on the next lsregister seed.
func writeLSHandler(bundleID, tag string) error {
	entry := fmt.Sprintf("{LSHandlerContentTagClass=public.filename-extension;LSHandlerContentTag=%s;LSHandlerRoleAll=%s;}", tag, bundleID)
	out, err := exec.Command("defaults", "write",
		"com.apple.LaunchServices/com.apple.launchservices.secure",
		"LSHandlers", "-array-add", entry).CombinedOutput()
	if err != nil {
		return fmt.Errorf("defaults write LSHandlers: %w (%s)", err,
			strings.TrimSpace(string(out)))
	}
	return nil
}

// readLSPreferences converts the user's Launch Services preference plist to
// XML. A missing plist or missing plutil yields nil data, not an error; there
// is nothing to remove in that case.
func readLSPreferences() (string, []byte, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil, err
	}
	plistPath := filepath.Join(home, "Library", "Preferences",
		"com.apple.LaunchServices", "com.apple.launchservices.secure.plist")

	out, err := exec.Command("plutil", "-convert", "xml1", "-o", "-", plistPath).Output()
	if err != nil {
		return plistPath, nil, nil
	}
	return plistPath, out, nil
}

// lsHandlerIndices returns the positions inside the LSHandlers array of the
// extension-based entries claiming tag. Only dicts carrying
// LSHandlerContentTagClass=public.filename-extension with a matching
// LSHandlerContentTag qualify; URL scheme and content-type entries never do.
// Positions index the live array, so callers must remove highest-first.
func lsHandlerIndices(xmlData []byte, tag string) ([]int, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlData); err != nil {
		return nil, err
	}

	array := lsHandlersArray(doc)
	if array == nil {
		return nil, nil
	}

	var indices []int
	for i, entry := range array.ChildElements() {
		if entry.Tag != "dict" {
			continue
		}
		if plistDictString(entry, "LSHandlerContentTagClass") == "public.filename-extension" &&
			plistDictString(entry, "LSHandlerContentTag") == tag {
			indices = append(indices, i)
		}
	}
	return indices, nil
}

// lsHandlersArray locates the array following the LSHandlers key in the
// plist's top-level dict.
func lsHandlersArray(doc *etree.Document) *etree.Element {
	plist := doc.SelectElement("plist")
	if plist == nil {
		return nil
	}
	dict := plist.SelectElement("dict")
	if dict == nil {
		return nil
	}
	children := dict.ChildElements()
	for i := 0; i < len(children)-1; i++ {
		if children[i].Tag == "key" && children[i].Text() == "LSHandlers" &&
			children[i+1].Tag == "array" {
			return children[i+1]
		}
	}
	return nil
}
