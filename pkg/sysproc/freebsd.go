//go:build freebsd

package sysproc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// kinfoProc mirrors the prefix of FreeBSD's struct kinfo_proc (sys/user.h)
// on amd64 that this package needs, through ki_comm. Layout/offsets taken
// from the pack's FreeBSD process collector; unneeded fields are absorbed
// into blank padding so binary.Read still lines up on ki_structsize.
type kinfoProc struct {
	StructSize int32      // 0:  ki_structsize
	Layout     int32      // 4:  ki_layout
	_          [8]uint64  // 8:  ki_args..ki_wchan (8 pointers)
	Pid        int32      // 72: ki_pid
	PPid       int32      // 76: ki_ppid
	_          [4]int32   // 80: ki_pgid..ki_tsid
	_          [2]int16   // 96: ki_jobc, ki_spare_short1
	_          uint32     // 100: ki_tdev_freebsd11
	_          [16]uint32 // 104: sigset_t x4
	_          [5]uint32  // 168: ki_uid..ki_svgid
	_          [2]int16   // 188: ki_ngroups, ki_spare_short2
	_          [16]uint32 // 192: ki_groups[16]
	_          uint64     // 256: ki_size
	_          int64      // 264: ki_rssize
	_          [4]int64   // 272: ki_swrss..ki_ssize
	_          [2]uint16  // 304: ki_xstat, ki_acflag
	_          uint32     // 308: ki_pctcpu
	_          [4]uint32  // 312: ki_estcpu..ki_cow
	Runtime    uint64     // 328: ki_runtime (microseconds)
	_          [4]int64   // 336: ki_start, ki_childtime
	Flag       int64      // 368: ki_flag (P_SYSTEM et al.)
	_          int64      // 376: ki_kiflag
	_          int32      // 384: ki_traceflag
	Stat       int8       // 388: ki_stat
	_          [3]int8    // 389: ki_nice, ki_lock, ki_reindex
	_          [2]uint8   // 392: ki_oncpu_old, ki_lastcpu_old
	_          [17]byte   // 394: ki_tdname
	_          [9]byte    // 411: ki_wmesg
	_          [18]byte   // 420: ki_login
	_          [9]byte    // 438: ki_lockname
	Comm       [20]byte   // 447: ki_comm
} // only the prefix through ki_comm is read; the remainder is skipped via ki_structsize.

const kinfoPrefixSize = 467

// pSystem mirrors sys/proc.h's P_SYSTEM: "System proc: no sigs, stats or
// swap". Filtered out alongside zombies, same as the state check below.
const pSystem = 0x00000200

func openIterator(f Filter) (Iterator, error) {
	procs, err := readKinfoProcs()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpenFailed, err)
	}

	if f.PID > 0 && !f.IncludeDescendants {
		for _, p := range procs {
			if p.PID == f.PID {
				snap := p
				if f.WantCommand {
					snap.Command = readArgv0(f.PID, p.Command)
				} else {
					snap.Command = ""
				}
				return &singleIterator{snap: snap, ok: true}, nil
			}
		}
		return &singleIterator{ok: false}, nil
	}

	return &bsdIterator{procs: procs, filter: f}, nil
}

type bsdIterator struct {
	procs  []Snapshot
	idx    int
	filter Filter
}

func (it *bsdIterator) Next() (Snapshot, bool) {
	for it.idx < len(it.procs) {
		snap := it.procs[it.idx]
		it.idx++
		if !matchesFilter(snap.PID, it.filter) {
			continue
		}
		if it.filter.WantCommand {
			snap.Command = readArgv0(snap.PID, snap.Command)
		} else {
			snap.Command = ""
		}
		return snap, true
	}
	return Snapshot{}, false
}

func (it *bsdIterator) Close() error { return nil }

// readKinfoProcs pulls the whole process table in one sysctl call, exactly
// as the pack's FreeBSD collector does, and filters out kernel-flagged and
// zombie entries the way spec.md requires.
func readKinfoProcs() ([]Snapshot, error) {
	buf, err := unix.SysctlRaw("kern.proc.proc", 0)
	if err != nil {
		return nil, fmt.Errorf("kern.proc.proc: %w", err)
	}

	reader := bytes.NewReader(buf)
	var out []Snapshot
	for reader.Len() >= kinfoPrefixSize {
		var kp kinfoProc
		if err := binary.Read(reader, binary.LittleEndian, &kp); err != nil {
			break
		}
		if skip := int64(kp.StructSize) - kinfoPrefixSize; skip > 0 {
			if _, err := reader.Seek(skip, io.SeekCurrent); err != nil {
				break
			}
		}

		if kp.Flag&pSystem != 0 {
			continue
		}
		if !isViableState(statToChar(kp.Stat)) {
			continue
		}
		if kp.Pid <= 0 || kp.PPid <= 0 {
			continue
		}

		out = append(out, Snapshot{
			PID:                 int(kp.Pid),
			PPID:                int(kp.PPid),
			CumulativeCPUTimeMS: int64(kp.Runtime) / 1000,
			Command:             firstNulToken(kp.Comm[:]),
		})
	}
	return out, nil
}

// statToChar maps FreeBSD's sys/proc.h SIDL/SRUN/SSLEEP/SSTOP/SZOMB/SWAIT/
// SLOCK constants onto the single-letter state alphabet the rest of this
// package reasons about (see the pack's FreeBSD collector's statToString).
func statToChar(stat int8) byte {
	switch stat {
	case 2: // SRUN
		return 'R'
	case 1, 3, 6, 7: // SIDL, SSLEEP, SWAIT, SLOCK
		return 'S'
	case 4: // SSTOP
		return 'T'
	case 5: // SZOMB
		return 'Z'
	default:
		return '?'
	}
}

// readArgv0 returns argv[0] for pid via kern.proc.args, falling back to the
// fixed-width comm field already captured from kinfo_proc.
func readArgv0(pid int, fallback string) string {
	buf, err := unix.SysctlRaw("kern.proc.args", pid)
	if err != nil || len(buf) == 0 {
		return fallback
	}
	return firstNulToken(buf)
}

// startTimeOf has no FreeBSD implementation: kinfoProc's ki_start field is
// outside the prefix this package reads. The ancestry walk degrades to
// "use the current hierarchy as-is" on this platform, per spec.md's open
// question on BSD/Darwin PID-reuse defense.
func startTimeOf(pid int) (int64, bool) {
	return 0, false
}
