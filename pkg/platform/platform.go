// Package platform bridges in-memory active defaults to the host OS's
// native file-association mechanism. The capability set is one interface
// with macOS and Windows implementations plus an unsupported fallback; the
// sync orchestrator in sync.go is portable and works against the interface.
package platform

import (
	"path/filepath"
	"strings"
)

// Platform identifies the host file-association mechanism.
type Platform string

const (
	MacOS       Platform = "macos"
	Windows     Platform = "windows"
	Unsupported Platform = "unsupported"
)

// AppInfo is the platform metadata an application path resolves to: a bundle
// identifier on macOS, a resolved executable on Windows.
type AppInfo struct {
	Path     string
	Name     string
	BundleID string // macOS only
	ProgID   string // Windows only
}

// SetResult describes a completed (or, under dry-run, intended) SetDefault.
type SetResult struct {
	Extension       string
	ApplicationPath string
	AppInfo         AppInfo

	// PreviousDefault is the OS default observed before the change, empty
	// when the OS had no opinion. Kept for diffing and rollback context.
	PreviousDefault string

	DryRun bool
}

// RollbackInfo records the outcome of a rollback attempt after a partial
// failure. Succeeded is nil when the outcome could not be determined.
type RollbackInfo struct {
	Attempted bool
	Succeeded *bool
	Message   string
}

// Handler is the per-OS capability set.
//
// CurrentDefault is best-effort: it returns "" when the OS has no opinion or
// the handler cannot determine it (missing external tool); it only returns
// an error for detectable hard failures during path validation.
type Handler interface {
	Platform() Platform
	SetDefault(extension, appPath string, dryRun bool) (*SetResult, error)
	RemoveDefault(extension string) error
	CurrentDefault(extension string) (string, error)
	VerifyApplication(path string) (*AppInfo, error)
}

// NewHandler constructs the handler for the current host. The top-level
// command dispatcher builds one and threads it through; there is no cached
// package-level instance, tests inject their own Handler.
func NewHandler() Handler {
	return newNativeHandler()
}

// PathsEquivalent reports whether a stored application path and an
// OS-reported default refer to the same application: exact path equality, or
// bundle-containment equality for macOS .app bundles where one path is the
// bundle and the other is nested inside (or equal to) it.
func PathsEquivalent(a, b string) bool {
	a = filepath.Clean(a)
	b = filepath.Clean(b)
	if a == b {
		return true
	}
	return bundleContains(a, b) || bundleContains(b, a)
}

func bundleContains(bundle, inner string) bool {
	if !strings.HasSuffix(bundle, ".app") {
		return false
	}
	return inner == bundle || strings.HasPrefix(inner, bundle+string(filepath.Separator))
}

func boolPtr(b bool) *bool { return &b }
