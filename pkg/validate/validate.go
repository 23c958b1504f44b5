// Package validate holds the input validators that gate the state machines:
// extension normalization, offer id checks, and application path checks.
package validate

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/slapcli/slap/pkg/errors"
)

// supportedExtensions is the fixed set of extensions slap will manage,
// already normalized (dot-prefixed, lowercase).
var supportedExtensions = map[string]struct{}{
	".md":   {},
	".txt":  {},
	".csv":  {},
	".json": {},
	".xml":  {},
	".yaml": {},
	".toml": {},
	".html": {},
	".pdf":  {},
	".log":  {},
	".png":  {},
	".jpg":  {},
	".mp4":  {},
	".epub": {},
}

// offerIDPattern matches a lowercase identifier of at most 32 characters.
var offerIDPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// reservedOfferIDs are offer ids that collide with command or keyword names.
var reservedOfferIDs = map[string]struct{}{
	"all":      {},
	"none":     {},
	"default":  {},
	"defaults": {},
	"offer":    {},
	"offers":   {},
	"list":     {},
	"status":   {},
	"sync":     {},
	"help":     {},
	"version":  {},
	"slap":     {},
	"chop":     {},
}

// SupportedExtensions returns the supported set, sorted, without dots.
// Used by the CLI layer to register one flag per extension.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	sort.Strings(exts)
	return exts
}

// NormalizeExtension lowercases the input, ensures the leading dot, and
// checks membership in the supported set. Already-normalized input is
// returned unchanged.
func NormalizeExtension(ext string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(ext))
	if trimmed == "" || trimmed == "." {
		return "", errors.New(errors.ErrInvalidExtension, "extension must not be empty")
	}
	if !strings.HasPrefix(trimmed, ".") {
		trimmed = "." + trimmed
	}
	for _, r := range trimmed[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return "", errors.Newf(errors.ErrInvalidExtension,
				"extension %q contains invalid characters", ext).
				WithDetail("extension", ext)
		}
	}
	if _, ok := supportedExtensions[trimmed]; !ok {
		return "", errors.Newf(errors.ErrInvalidExtension,
			"extension %q is not supported", ext).
			WithDetail("extension", ext).
			WithDetail("supported", SupportedExtensions())
	}
	return trimmed, nil
}

// ValidateOfferID checks the offer id against the id pattern and the
// reserved-word set.
func ValidateOfferID(offerID string) error {
	if !offerIDPattern.MatchString(offerID) {
		return errors.Newf(errors.ErrInvalidOfferID,
			"offer id %q must match %s", offerID, offerIDPattern.String()).
			WithDetail("offer_id", offerID)
	}
	if _, reserved := reservedOfferIDs[offerID]; reserved {
		return errors.Newf(errors.ErrInvalidOfferID,
			"offer id %q is a reserved word", offerID).
			WithDetail("offer_id", offerID)
	}
	return nil
}

// ValidateApplicationPath requires an absolute path to something that exists
// on disk. Deeper platform checks (bundle id, executable resolution) happen
// in the platform handler.
func ValidateApplicationPath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidPath, "application path must not be empty")
	}
	if !filepath.IsAbs(path) {
		return errors.Newf(errors.ErrInvalidPath,
			"application path %q must be absolute", path).
			WithDetail("path", path)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrAppNotFound,
				"application not found at %q", path).
				WithDetail("path", path)
		}
		return errors.Wrapf(err, errors.ErrInvalidPath,
			"cannot access application at %q", path)
	}
	return nil
}
