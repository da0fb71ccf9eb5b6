//go:build !linux && !freebsd && !darwin

package sysproc

func openIterator(f Filter) (Iterator, error) {
	return nil, ErrUnsupportedPlatform
}

func startTimeOf(pid int) (int64, bool) {
	return 0, false
}
