//go:build linux

package sysproc

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// clockTicks returns jiffies (clock ticks) per second. It checks CLK_TCK
// first (useful for tests), otherwise falls back to the common default of
// 100. The authoritative way is sysconf(_SC_CLK_TCK), which requires cgo;
// this simplified approach matches the teacher's own ClockTicks and is
// accurate on every mainstream Linux distribution.
func clockTicks() int {
	if v, err := strconv.Atoi(os.Getenv("CLK_TCK")); err == nil && v > 0 {
		return v
	}
	return 100
}

func openIterator(f Filter) (Iterator, error) {
	if f.PID > 0 && !f.IncludeDescendants {
		snap, ok := readLinuxStat(f.PID, f.WantCommand)
		return &singleIterator{snap: snap, ok: ok}, nil
	}

	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	pids := make([]int, 0, len(entries))
	for _, e := range entries {
		if pid, err := strconv.Atoi(e.Name()); err == nil && pid > 0 {
			pids = append(pids, pid)
		}
	}

	return &linuxIterator{
		pids:   pids,
		filter: f,
	}, nil
}

// singleIterator serves the fast pid>0,!includeDescendants path: at most
// one Snapshot.
type singleIterator struct {
	snap   Snapshot
	ok     bool
	served bool
}

func (it *singleIterator) Next() (Snapshot, bool) {
	if it.served || !it.ok {
		return Snapshot{}, false
	}
	it.served = true
	return it.snap, true
}

func (it *singleIterator) Close() error { return nil }

// linuxIterator walks every /proc/<pid> entry, applying the filter and
// skipping non-viable processes as it goes.
type linuxIterator struct {
	pids   []int
	idx    int
	filter Filter
}

func (it *linuxIterator) Next() (Snapshot, bool) {
	for it.idx < len(it.pids) {
		pid := it.pids[it.idx]
		it.idx++

		snap, ok := readLinuxStat(pid, it.filter.WantCommand)
		if !ok {
			continue
		}
		if !matchesFilter(snap.PID, it.filter) {
			continue
		}
		return snap, true
	}
	return Snapshot{}, false
}

func (it *linuxIterator) Close() error { return nil }

func matchesFilter(pid int, f Filter) bool {
	if f.PID == 0 {
		return true
	}
	if pid == f.PID {
		return true
	}
	if f.IncludeDescendants {
		return IsDescendantOf(pid, f.PID)
	}
	return false
}

// readLinuxStat reads /proc/<pid>/stat (and optionally /proc/<pid>/cmdline)
// and returns a populated Snapshot. ok is false for anything non-viable:
// vanished process, permission lost mid-read, zombie, kernel thread, or a
// malformed stat record.
func readLinuxStat(pid int, wantCommand bool) (Snapshot, bool) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/stat", pid))
	if err != nil {
		return Snapshot{}, false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return Snapshot{}, false
	}
	line := sc.Text()

	// comm (2nd field) is parenthesized and may itself contain spaces or
	// parens; everything up to the last ") " is pid+comm, the rest are
	// fixed-width numeric fields (see guillermo-go.procstat's field table).
	i := strings.LastIndex(line, ") ")
	if i < 0 {
		return Snapshot{}, false
	}
	fields := strings.Fields(line[i+2:])
	if len(fields) < 13 {
		return Snapshot{}, false
	}

	// Indexes below are relative to `fields` (fields[0] == state, the 3rd
	// overall field).
	state := fields[0]
	if len(state) != 1 || !isViableState(state[0]) {
		return Snapshot{}, false
	}

	ppid, err := strconv.Atoi(fields[1])
	if err != nil || ppid <= 0 {
		return Snapshot{}, false
	}

	utime, errU := strconv.ParseUint(fields[11], 10, 64)
	stime, errS := strconv.ParseUint(fields[12], 10, 64)
	if errU != nil || errS != nil {
		return Snapshot{}, false
	}

	ticks := utime + stime
	cpuMS := int64(ticks) * 1000 / int64(clockTicks())

	snap := Snapshot{
		PID:                 pid,
		PPID:                ppid,
		CumulativeCPUTimeMS: cpuMS,
	}

	if wantCommand {
		snap.Command = readLinuxCmdline(pid)
	}

	return snap, true
}

// readLinuxCmdline reads argv[0] from /proc/<pid>/cmdline, whose tokens are
// NUL-separated. Returns "" on any read failure (caller falls back to
// basename matching against "").
func readLinuxCmdline(pid int) string {
	b, err := os.ReadFile(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil || len(b) == 0 {
		return ""
	}
	return firstNulToken(b)
}

// startTimeOf is used by the ancestry walk's PID-reuse defense: Linux
// exposes a per-process start-time signal via /proc/<pid>'s modification
// time, letting the walk reject a hop to a supposed ancestor that actually
// started after the descendant (i.e. is a reused PID, not a real ancestor).
func startTimeOf(pid int) (int64, bool) {
	fi, err := os.Stat(fmt.Sprintf("/proc/%d", pid))
	if err != nil {
		return 0, false
	}
	return fi.ModTime().UnixNano(), true
}
