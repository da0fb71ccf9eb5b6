// Package pidtable is the only owner of *Record allocation: every record a
// Table hands out stays reachable until that same Table deletes or destroys
// it. Callers borrow pointers; they never free them directly.
package pidtable

import "github.com/ja7ad/cpulimiter/pkg/sysproc"

// Record is a tracked process: a snapshot plus cross-cycle state.
type Record struct {
	sysproc.Snapshot
	// CPUUsage is the EMA-smoothed usage fraction, a multiple of one core.
	// Unmeasured is the zero-value sentinel; callers check Measured first.
	CPUUsage float64
	Measured bool
}

// Table maps pid to *Record. Go's map already buckets and chains on hash
// collision internally; a churny, few-hundred-entry working set like this
// one needs no hand-rolled hash table layered on top of that.
type Table struct {
	m map[int]*Record
}

// New returns an empty Table. size is a capacity hint, not a hard limit.
func New(size int) *Table {
	if size < 0 {
		size = 0
	}
	return &Table{m: make(map[int]*Record, size)}
}

// Find returns the record for pid, if present.
func (t *Table) Find(pid int) (*Record, bool) {
	r, ok := t.m[pid]
	return r, ok
}

// Insert adds r under r.PID. It is a no-op, returning false, if that PID is
// already present — callers that want to replace must Delete first.
func (t *Table) Insert(r *Record) bool {
	if _, exists := t.m[r.PID]; exists {
		return false
	}
	t.m[r.PID] = r
	return true
}

// Delete removes pid's record, if any, freeing it for garbage collection.
func (t *Table) Delete(pid int) {
	delete(t.m, pid)
}

// Range calls fn with every PID currently held. fn must not mutate the
// Table; callers needing to delete while ranging should collect PIDs first.
func (t *Table) Range(fn func(pid int)) {
	for pid := range t.m {
		fn(pid)
	}
}

// Len returns the number of records currently held.
func (t *Table) Len() int {
	return len(t.m)
}

// Destroy drops every record. The Table is empty but usable afterward.
func (t *Table) Destroy() {
	t.m = make(map[int]*Record)
}
