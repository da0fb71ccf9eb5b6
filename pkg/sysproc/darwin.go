//go:build darwin

package sysproc

/*
#include <libproc.h>
#include <sys/proc_info.h>
#include <mach/mach_time.h>

static double cpulimiter_timebase_ns_per_tick(void) {
    mach_timebase_info_data_t info;
    mach_timebase_info(&info);
    return (double)info.numer / (double)info.denom;
}

// cpulimiter_task_cpu_ticks returns total_user+total_system mach absolute
// ticks for pid via proc_pidinfo(PROC_PIDTASKINFO). Returns -1 on failure
// (process vanished, permission denied, or not our platform's expected
// struct size).
static long long cpulimiter_task_cpu_ticks(int pid) {
    struct proc_taskinfo info;
    int ret = proc_pidinfo(pid, PROC_PIDTASKINFO, 0, &info, sizeof(info));
    if (ret != sizeof(info)) {
        return -1;
    }
    return (long long)(info.pti_total_user + info.pti_total_system);
}
*/
import "C"

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// timebaseNsPerTick converts mach absolute ticks to nanoseconds; fixed for
// the lifetime of the process, so read it once.
var timebaseNsPerTick = float64(C.cpulimiter_timebase_ns_per_tick())

// pSystem mirrors bsd/sys/proc.h's P_SYSTEM: "System proc: no sigs, stats
// or swap". Filtered out alongside zombies, same as the state check below.
const pSystem = 0x00000200

func openIterator(f Filter) (Iterator, error) {
	kprocs, err := unix.SysctlKinfoProcSlice("kern.proc.all")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	if f.PID > 0 && !f.IncludeDescendants {
		for i := range kprocs {
			snap, ok := darwinSnapshot(&kprocs[i], f.WantCommand)
			if ok && snap.PID == f.PID {
				return &singleIterator{snap: snap, ok: true}, nil
			}
		}
		return &singleIterator{ok: false}, nil
	}

	return &darwinIterator{kprocs: kprocs, filter: f}, nil
}

type darwinIterator struct {
	kprocs []unix.KinfoProc
	idx    int
	filter Filter
}

func (it *darwinIterator) Next() (Snapshot, bool) {
	for it.idx < len(it.kprocs) {
		kp := &it.kprocs[it.idx]
		it.idx++
		snap, ok := darwinSnapshot(kp, it.filter.WantCommand)
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

func (it *darwinIterator) Close() error { return nil }

// darwinSnapshot converts one kinfo_proc entry, read in bulk by the sysctl
// above, into a Snapshot. Per-process CPU time still needs a one-call-per-pid
// trip through libproc: kinfo_proc carries no usable CPU-time counter.
func darwinSnapshot(kp *unix.KinfoProc, wantCommand bool) (Snapshot, bool) {
	pid := int(kp.Proc.P_pid)
	ppid := int(kp.Eproc.Ppid)
	if pid <= 0 || ppid <= 0 {
		return Snapshot{}, false
	}
	if kp.Proc.P_flag&pSystem != 0 {
		return Snapshot{}, false
	}
	if !isViableState(darwinStatChar(kp.Proc.P_stat)) {
		return Snapshot{}, false
	}

	ticks := C.cpulimiter_task_cpu_ticks(C.int(pid))
	if ticks < 0 {
		// Process vanished between the sysctl snapshot and this probe, or
		// we lack permission (e.g. another user's process); skip silently.
		return Snapshot{}, false
	}
	cpuMS := int64(float64(ticks) * timebaseNsPerTick / 1e6)

	snap := Snapshot{
		PID:                 pid,
		PPID:                ppid,
		CumulativeCPUTimeMS: cpuMS,
	}
	if wantCommand {
		snap.Command = readDarwinArgv0(pid, cstring(kp.Proc.P_comm[:]))
	}
	return snap, true
}

// darwinStatChar maps BSD's SIDL/SRUN/SSLEEP/SSTOP/SZOMB state numbers onto
// this package's single-letter alphabet, same mapping FreeBSD uses (the two
// kernels share sys/proc.h's SSTATE enum).
func darwinStatChar(stat int8) byte {
	switch stat {
	case 2:
		return 'R'
	case 1, 3:
		return 'S'
	case 4:
		return 'T'
	case 5:
		return 'Z'
	default:
		return '?'
	}
}

func cstring(b []byte) string {
	return firstNulToken(b)
}

// readDarwinArgv0 reads argv[0] via the KERN_PROCARGS2 sysctl, a pure-Go
// path that needs no cgo: the buffer is [argc int32][NUL-terminated exec
// path][NUL padding][argv strings...]. Falls back to the kinfo_proc comm
// field (fixed-width, truncated) on any failure.
func readDarwinArgv0(pid int, fallback string) string {
	raw, err := unix.SysctlRaw("kern.procargs2", int32(pid))
	if err != nil || len(raw) < 4 {
		return fallback
	}
	rest := raw[4:]
	idx := -1
	for i, c := range rest {
		if c == 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fallback
	}
	return string(rest[:idx])
}

// startTimeOf has no Darwin implementation in this revision: extracting
// p_starttime from kinfo_proc would let us apply the same PID-reuse defense
// as Linux, but spec.md leaves this as an open question rather than a
// requirement, so the ancestry walk degrades to "use the current hierarchy
// as-is" here too.
func startTimeOf(pid int) (int64, bool) {
	return 0, false
}
