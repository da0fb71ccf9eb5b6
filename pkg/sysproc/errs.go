package sysproc

import "errors"

var (
	// ErrOpenFailed means the process table itself could not be read
	// (e.g. /proc could not be opened, or the sysctl buffer could not be
	// allocated). The controller treats this as fatal.
	ErrOpenFailed = errors.New("sysproc: could not open process table")

	// ErrUnsupportedPlatform means OpenIterator was called on a GOOS this
	// package has no backend for.
	ErrUnsupportedPlatform = errors.New("sysproc: unsupported platform")
)
