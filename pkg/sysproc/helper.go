package sysproc

// firstNulToken returns the first NUL-terminated token in b as a string,
// used by both the Linux /proc/<pid>/cmdline reader and the Darwin
// kern.procargs2 reader to pull argv[0] out of a packed argument buffer.
func firstNulToken(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// isViableState reports whether a state character (as read from /proc/pid/stat
// or translated from a platform's kinfo_proc stat field) represents a
// process the tracker should count. Zombies, kernel-thread markers, and
// anything non-alphabetic are rejected per spec.
func isViableState(state byte) bool {
	switch state {
	case 'Z', 'X', 'x':
		return false
	}
	return (state >= 'A' && state <= 'Z') || (state >= 'a' && state <= 'z')
}
