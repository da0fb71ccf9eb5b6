// Package finder locates a target process by PID or by executable name,
// using the zero-signal liveness probe the pack's process-supervision code
// uses for the same purpose (syscall.Kill(pid, 0) without actually sending a
// signal).
package finder

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/ja7ad/cpulimiter/pkg/sysproc"
	"golang.org/x/sys/unix"
)

// FindByPID probes pid with a zero-signal. It returns pid on success, -pid
// if the process exists but the caller lacks permission to signal it, or 0
// if the process does not exist or pid <= 1.
func FindByPID(pid int) int {
	if pid <= 1 {
		return 0
	}
	err := unix.Kill(pid, 0)
	switch {
	case err == nil:
		return pid
	case errors.Is(err, unix.EPERM):
		return -pid
	default:
		return 0
	}
}

// FindByName enumerates every live process looking for one whose command
// matches name under the key() rule: an absolute path must match exactly,
// a bare name matches by basename. Among matches, the ancestor-most
// candidate wins — the same "prefer the root of the tree" heuristic the
// pack's process-tree code applies when collapsing symmetric candidates.
// Returns 0 for an empty name or no match.
func FindByName(name string) int {
	if name == "" {
		return 0
	}

	it, err := sysproc.OpenIterator(sysproc.Filter{WantCommand: true})
	if err != nil {
		return 0
	}
	defer it.Close()

	want := key(name)
	best := 0
	for {
		s, ok := it.Next()
		if !ok {
			break
		}
		if key(s.Command) != want {
			continue
		}
		if best == 0 || sysproc.IsDescendantOf(best, s.PID) {
			best = s.PID
		}
	}

	if best == 0 {
		return 0
	}
	return FindByPID(best)
}

// key normalizes a command string for matching: an absolute path matches
// itself exactly, everything else matches by basename.
func key(s string) string {
	if strings.HasPrefix(s, "/") {
		return s
	}
	return filepath.Base(s)
}
