// Package group implements the process-group tracker: it refreshes the live
// set every cycle from pkg/sysproc, keeps per-process smoothed CPU usage in
// a pkg/pidtable history across cycles, and exposes the aggregate usage the
// controller regulates toward.
package group

import (
	"fmt"
	"runtime"

	"github.com/ja7ad/cpulimiter/pkg/clock"
	"github.com/ja7ad/cpulimiter/pkg/pidtable"
	"github.com/ja7ad/cpulimiter/pkg/sysproc"
)

// minDT is the accuracy floor below which an elapsed interval is too short
// to trust for a usage sample; not user-tunable.
const minDT = 20.0 // ms

// alpha is the EMA smoothing constant for per-process usage.
const alpha = 0.08

// numCPU bounds a single process's usage sample at one core per logical
// CPU; read once since the host's CPU count doesn't change at runtime.
var numCPU = runtime.NumCPU()

// Group is the controller's view of a target plus (optionally) its
// descendants.
type Group struct {
	TargetPID          int
	IncludeDescendants bool
	Live               []*pidtable.Record

	history    *pidtable.Table
	lastUpdate clock.Time
}

// Init builds a Group for targetPID and performs the first Update so the
// caller sees a populated Live/history pair immediately.
func Init(targetPID int, includeDescendants bool) (*Group, error) {
	g := &Group{
		TargetPID:          targetPID,
		IncludeDescendants: includeDescendants,
		history:            pidtable.New(16),
		lastUpdate:         clock.Now(),
	}
	if err := g.Update(); err != nil {
		return nil, err
	}
	return g, nil
}

// Update refreshes Live from the current process table and advances every
// tracked record's smoothed CPU usage. It implements spec's numbered update
// algorithm verbatim, including the PID-reuse re-baseline branch.
func (g *Group) Update() error {
	tNow := clock.Now()
	dtMS := clock.ElapsedMS(tNow, g.lastUpdate)

	g.Live = g.Live[:0]

	it, err := sysproc.OpenIterator(sysproc.Filter{
		PID:                g.TargetPID,
		IncludeDescendants: g.IncludeDescendants,
		WantCommand:        false,
	})
	if err != nil {
		return fmt.Errorf("group: opening process iterator: %w", err)
	}
	defer it.Close()

	seen := make(map[int]struct{})

	for {
		s, ok := it.Next()
		if !ok {
			break
		}
		seen[s.PID] = struct{}{}

		r, found := g.history.Find(s.PID)
		if !found {
			r = &pidtable.Record{Snapshot: s}
			g.history.Insert(r)
			g.Live = append(g.Live, r)
			continue
		}
		g.Live = append(g.Live, r)

		if dtMS < minDT {
			continue
		}

		sample := float64(s.CumulativeCPUTimeMS-r.CumulativeCPUTimeMS) / dtMS
		if sample < 0 {
			// Cumulative counter went backward: PID was reused for a new
			// process instance. Re-baseline without producing a sample.
			r.Measured = false
			r.CPUUsage = 0
			r.CumulativeCPUTimeMS = s.CumulativeCPUTimeMS
			continue
		}
		if max := float64(numCPU); sample > max {
			sample = max
		}

		if !r.Measured {
			r.CPUUsage = sample
			r.Measured = true
		} else {
			r.CPUUsage = (1-alpha)*r.CPUUsage + alpha*sample
		}
		r.CumulativeCPUTimeMS = s.CumulativeCPUTimeMS
	}

	g.pruneAbsent(seen)

	if dtMS >= minDT || tNow.Before(g.lastUpdate) {
		g.lastUpdate = tNow
	}

	return nil
}

// pruneAbsent deletes every history record whose PID was not in the latest
// snapshot set. history owns those records; Live never held anything but
// borrowed pointers into it, so this is the only place a *Record dies.
func (g *Group) pruneAbsent(seen map[int]struct{}) {
	stale := make([]int, 0)
	g.history.Range(func(pid int) {
		if _, ok := seen[pid]; !ok {
			stale = append(stale, pid)
		}
	})
	for _, pid := range stale {
		g.history.Delete(pid)
	}
}

// AggregateCPUUsage sums CPUUsage over every measured record in Live, or
// returns -1 if none are measured yet.
func (g *Group) AggregateCPUUsage() float64 {
	total := 0.0
	any := false
	for _, r := range g.Live {
		if r.Measured {
			total += r.CPUUsage
			any = true
		}
	}
	if !any {
		return -1
	}
	return total
}

// RemovePID drops pid from both Live and history. Used by the controller
// when a signal send to pid fails (vanished process, permission changed):
// the live set must tolerate concurrent removal mid-iteration.
func (g *Group) RemovePID(pid int) {
	g.history.Delete(pid)
	for i, r := range g.Live {
		if r.PID == pid {
			g.Live = append(g.Live[:i], g.Live[i+1:]...)
			return
		}
	}
}

// Close tears down history and Live. The Group is unusable afterward.
func (g *Group) Close() {
	g.history.Destroy()
	g.Live = nil
}
