// Package sysproc exposes a uniform process-enumeration contract over three
// divergent OS interfaces (Linux's /proc, FreeBSD's kern.proc.proc sysctl,
// and Darwin's kern.proc.all sysctl + libproc), plus an ancestry test that
// tolerates PID reuse where the host exposes a start-time signal.
package sysproc

// Snapshot is a short-lived view of one live process.
type Snapshot struct {
	// PID is the process identifier.
	PID int
	// PPID is the parent identifier. Zero or negative means the process is
	// non-viable (zombie, kernel thread, or unreadable).
	PPID int
	// CumulativeCPUTimeMS is total user+system CPU time since the process
	// started, in milliseconds. Monotonically non-decreasing per process
	// instance.
	CumulativeCPUTimeMS int64
	// Command is the executable's absolute path or best-effort argv[0],
	// populated only when Filter.WantCommand is set.
	Command string
}

// Filter narrows OpenIterator's enumeration.
type Filter struct {
	// PID selects a target. Zero enumerates every live process.
	PID int
	// IncludeDescendants expands PID to PID's whole descendant set. Ignored
	// when PID is zero.
	IncludeDescendants bool
	// WantCommand requests that Snapshot.Command be populated. Leave unset
	// on hot paths that don't need it; it costs an extra read per process.
	WantCommand bool
}

// Iterator yields snapshots matching the Filter it was opened with.
type Iterator interface {
	// Next returns the next snapshot, or ok=false once exhausted.
	Next() (snap Snapshot, ok bool)
	// Close releases any OS resources the iterator holds.
	Close() error
}

// OpenIterator opens a platform iterator for f. Unrecoverable failures
// (process table unreadable, allocation failure) are returned as errors;
// per-process read failures are silently skipped by the iterator itself.
func OpenIterator(f Filter) (Iterator, error) {
	return openIterator(f)
}

// ParentOf returns the parent PID of pid, or ok=false if pid does not exist
// or is non-viable.
func ParentOf(pid int) (int, bool) {
	if pid <= 0 {
		return 0, false
	}
	it, err := OpenIterator(Filter{PID: pid})
	if err != nil {
		return 0, false
	}
	defer it.Close()
	snap, ok := it.Next()
	if !ok || snap.PPID <= 0 {
		return 0, false
	}
	return snap.PPID, true
}

// IsDescendantOf walks the parent chain from child upward looking for
// parent. It stops at pid 1, at a parent it cannot resolve, or once parent
// is found.
func IsDescendantOf(child, parent int) bool {
	if child <= 1 || parent <= 0 || child == parent {
		return false
	}
	// Shortcut: every live process other than pid 1 is a descendant of it.
	if parent == 1 {
		return processExists(child)
	}
	return walkAncestry(child, parent)
}

// processExists reports whether pid resolves to a live, viable process;
// used only by the parent==1 shortcut, where any live, non-init process
// counts as a descendant of init.
func processExists(pid int) bool {
	it, err := OpenIterator(Filter{PID: pid})
	if err != nil {
		return false
	}
	defer it.Close()
	_, ok := it.Next()
	return ok
}

// walkAncestry performs the general-case parent-chain walk used when
// parent != 1. Where the platform exposes a start-time signal (Linux), a
// hop is additionally rejected if the supposed ancestor started after the
// current node — that signals the ancestor's PID was reused and the chain
// no longer reflects reality.
func walkAncestry(child, parent int) bool {
	cur := child
	curStart, haveStart := startTimeOf(cur)
	for {
		p, ok := ParentOf(cur)
		if !ok {
			return false
		}
		if haveStart {
			if pStart, ok2 := startTimeOf(p); ok2 && pStart > curStart {
				return false
			}
		}
		if p == parent {
			return true
		}
		if p <= 1 {
			return false
		}
		cur = p
		curStart, haveStart = startTimeOf(cur)
	}
}
