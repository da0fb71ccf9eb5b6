//go:build freebsd || darwin

package limiter

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

// loadAverage1 returns the 1-minute system load average via the
// vm.loadavg sysctl, the same sysctl family pkg/sysproc's BSD backend reads
// process tables through.
func loadAverage1() (float64, bool) {
	raw, err := unix.SysctlRaw("vm.loadavg")
	if err != nil || len(raw) < 4 {
		return 0, false
	}
	// struct loadavg { fixpt_t ldavg[3]; long fscale; } — ldavg[0] is the
	// 1-minute average, a fixed-point value scaled by fscale.
	ldavg0 := uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16 | uint32(raw[3])<<24
	// fscale is a C long aligned after the three 4-byte ldavg entries: 8 bytes
	// at offset 16 on 64-bit hosts, 4 bytes at offset 12 on 32-bit hosts.
	var fscale uint64
	switch {
	case len(raw) >= 24:
		fscale = binary.LittleEndian.Uint64(raw[16:24])
	case len(raw) >= 16:
		fscale = uint64(binary.LittleEndian.Uint32(raw[12:16]))
	default:
		return 0, false
	}
	if fscale == 0 {
		return 0, false
	}
	return float64(ldavg0) / float64(fscale), true
}
