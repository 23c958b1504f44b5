//go:build !darwin && !windows

package platform

import "runtime"

func newNativeHandler() Handler {
	return NewUnsupportedHandler(runtime.GOOS)
}
