// Package limiter implements the duty-cycle controller: the loop that
// samples a process group's aggregate CPU usage each cycle and throttles it
// toward a target fraction of total CPU capacity by alternating stop/
// continue job-control signals across dynamically sized time slots.
package limiter

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/ja7ad/cpulimiter/pkg/clock"
	"github.com/ja7ad/cpulimiter/pkg/group"
	"github.com/ja7ad/cpulimiter/pkg/quitflag"
	"golang.org/x/sys/unix"
)

const (
	epsilon = 1e-12
	slotT0  = 100 * time.Millisecond
	slotMax = 5 * slotT0

	// loadReassessInterval bounds how often the dynamic time slot is
	// recomputed from system load average.
	loadReassessInterval = 1000 * time.Millisecond

	// priorityBoost is the lowest nice value (highest priority) tried at
	// entry; boostPriority steps up from it toward 0 until one is accepted.
	priorityBoost = -20
)

// CycleStats is one cycle's snapshot of controller state, handed to
// Config.OnCycle for the verbose printer to consume.
type CycleStats struct {
	Cycle           int
	WorkingRate     float64
	Usage           float64
	LiveCount       int
	SlotMS          float64
	CumulativeCPUMS int64
}

// Config configures a single Limit call.
type Config struct {
	TargetPID          int
	LimitCores         float64
	IncludeDescendants bool
	Verbose            bool
	// OnCycle, if non-nil, is invoked once per cycle with the cycle's
	// stats. It must not block meaningfully; the controller calls it
	// synchronously from the loop.
	OnCycle func(CycleStats)
}

// Limit runs the duty-cycle loop for cfg.TargetPID until its process group
// becomes empty or the quit flag is set. Exactly one call should be active
// per process at a time; Limit itself keeps no package-level state that
// would make concurrent calls unsafe, but stop/continue signaling two
// overlapping groups sharing PIDs would race in practice.
func Limit(ctx context.Context, cfg Config) error {
	if cfg.LimitCores <= 0 {
		return fmt.Errorf("limiter: limit_cores must be positive, got %v", cfg.LimitCores)
	}

	boostPriority()

	g, err := group.Init(cfg.TargetPID, cfg.IncludeDescendants)
	if err != nil {
		return fmt.Errorf("limiter: initializing process group: %w", err)
	}

	stopped := false
	defer func() {
		// Cleanup invariant: no process this controller ever stopped is
		// left stopped, regardless of why the loop exited.
		sendToLive(g, unix.SIGCONT)
		g.Close()
	}()

	numCPU := float64(runtime.NumCPU())
	w := cfg.LimitCores / numCPU

	slot := slotT0
	lastLoadCheck := clock.Now()

	cycle := 0
	for {
		if quitflag.IsSet() {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		if err := g.Update(); err != nil {
			return fmt.Errorf("limiter: updating process group: %w", err)
		}
		if len(g.Live) == 0 {
			return nil
		}
		cycle++

		u := g.AggregateCPUUsage()
		if u < 0 {
			w = cfg.LimitCores / numCPU
		} else {
			denom := u
			if denom < epsilon {
				denom = epsilon
			}
			w = w * cfg.LimitCores / denom
			w = clamp(w, epsilon, 1-epsilon)
		}

		now := clock.Now()
		if clock.ElapsedMS(now, lastLoadCheck) >= float64(loadReassessInterval/time.Millisecond) {
			slot = reassessSlot(slot, numCPU)
			lastLoadCheck = now
		}

		workDur := time.Duration(float64(slot) * w)
		sleepDur := slot - workDur

		if cfg.OnCycle != nil {
			var cumCPU int64
			for _, r := range g.Live {
				cumCPU += r.CumulativeCPUTimeMS
			}
			cfg.OnCycle(CycleStats{
				Cycle:           cycle,
				WorkingRate:     w,
				Usage:           u,
				LiveCount:       len(g.Live),
				SlotMS:          float64(slot / time.Millisecond),
				CumulativeCPUMS: cumCPU,
			})
		}

		if quitflag.IsSet() {
			return nil
		}

		if workDur > 0 {
			if stopped {
				sendToLive(g, unix.SIGCONT)
				stopped = false
			}
			clock.Sleep(workDur)
		}

		if quitflag.IsSet() {
			return nil
		}

		if sleepDur > 0 {
			if !stopped {
				sendToLive(g, unix.SIGSTOP)
				stopped = true
			}
			clock.Sleep(sleepDur)
		}
	}
}

// reassessSlot recomputes the time slot from the 1-minute load average,
// low-passed against the previous slot so it doesn't jump abruptly.
func reassessSlot(slot time.Duration, numCPU float64) time.Duration {
	load, ok := loadAverage1()
	if !ok {
		return slot
	}
	newSlot := time.Duration(float64(slot) * load / (numCPU * 0.3))
	newSlot = clampDuration(newSlot, slotT0, slotMax)
	return time.Duration(0.6*float64(slot) + 0.4*float64(newSlot))
}

// sendToLive signals every PID currently in g.Live with sig. A PID whose
// send fails (vanished, permission changed) is dropped from the group; the
// PIDs are copied out of g.Live first, so removals do not disturb the loop.
func sendToLive(g *group.Group, sig unix.Signal) {
	pids := make([]int, len(g.Live))
	for i, r := range g.Live {
		pids[i] = r.PID
	}
	for _, pid := range pids {
		if err := unix.Kill(pid, sig); err != nil {
			g.RemovePID(pid)
		}
	}
}

// boostPriority raises the controller's own scheduling priority as high as
// permitted. Best-effort: refusal (not running as root, rlimit) is not
// fatal, same posture the teacher takes toward its own optional cgroup
// writes.
func boostPriority() {
	for nice := priorityBoost; nice <= 0; nice++ {
		if unix.Setpriority(unix.PRIO_PROCESS, 0, nice) == nil {
			return
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampDuration(v, lo, hi time.Duration) time.Duration {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
