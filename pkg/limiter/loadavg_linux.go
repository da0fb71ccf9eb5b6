//go:build linux

package limiter

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// loadAverage1 returns the 1-minute system load average by reading
// /proc/loadavg's first field.
func loadAverage1() (float64, bool) {
	f, err := os.Open("/proc/loadavg")
	if err != nil {
		return 0, false
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return 0, false
	}
	fields := strings.Fields(sc.Text())
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
