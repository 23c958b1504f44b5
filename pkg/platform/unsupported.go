package platform

import (
	"github.com/slapcli/slap/pkg/errors"
)

// UnsupportedHandler refuses every capability with UNSUPPORTED_PLATFORM.
// It stands in on hosts that have no file-association mechanism slap knows
// how to drive.
type UnsupportedHandler struct {
	goos string
}

// NewUnsupportedHandler creates a handler that fails with the host OS name
// in every message.
func NewUnsupportedHandler(goos string) *UnsupportedHandler {
	return &UnsupportedHandler{goos: goos}
}

func (h *UnsupportedHandler) Platform() Platform { return Unsupported }

func (h *UnsupportedHandler) SetDefault(extension, appPath string, dryRun bool) (*SetResult, error) {
	return nil, h.err()
}

func (h *UnsupportedHandler) RemoveDefault(extension string) error {
	return h.err()
}

func (h *UnsupportedHandler) CurrentDefault(extension string) (string, error) {
	return "", h.err()
}

func (h *UnsupportedHandler) VerifyApplication(path string) (*AppInfo, error) {
	return nil, h.err()
}

func (h *UnsupportedHandler) err() error {
	return errors.Newf(errors.ErrUnsupportedPlatform,
		"file associations are not supported on %s", h.goos).
		WithDetail("goos", h.goos)
}
