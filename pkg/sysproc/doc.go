// Package sysproc is the only part of cpulimiter that talks to the kernel's
// process table directly.
//
// # Contract
//
//   - OpenIterator(filter) (Iterator, error): open a snapshot stream.
//   - Iterator.Next() (Snapshot, bool): pull the next live process.
//   - Iterator.Close() error: release iterator resources.
//   - ParentOf(pid) (int, bool) / IsDescendantOf(child, parent) bool:
//     ancestry queries, tolerant of PID reuse where the host exposes a
//     process start-time signal.
//
// # Filter semantics
//
//	PID == 0                         : enumerate every live process.
//	PID > 0, IncludeDescendants=false: fast path, at most one Snapshot.
//	PID > 0, IncludeDescendants=true : PID itself plus every descendant.
//
// Zombies, kernel threads, and processes whose state record could not be
// read are silently skipped by the iterator; they never reach the caller.
//
// # Platforms
//
//   - linux.go   scans /proc, parsing /proc/<pid>/stat's last ")"-delimited
//     suffix for state/ppid/utime/stime, converting ticks to ms via the
//     clock-tick constant (CLK_TCK, overridable for tests).
//   - freebsd.go reads kern.proc.proc via golang.org/x/sys/unix.SysctlRaw
//     into a trimmed kinfo_proc layout, converting ki_runtime microseconds
//     to ms.
//   - darwin.go  lists PIDs via unix.SysctlKinfoProcSlice("kern.proc.all"),
//     then asks libproc (via a small cgo shim) for per-PID CPU ticks,
//     converting mach absolute time via the host's timebase ratio.
//
// Package import path: github.com/ja7ad/cpulimiter/pkg/sysproc
package sysproc
