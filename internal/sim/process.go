package sim

import (
	"sort"

	"github.com/me/cpusched/pkg/model"
)

// proc is the private, mutable simulation state of one process.
type proc struct {
	model.Process
	remaining int
	started   bool
	queue     *int // owning MLQ queue priority
}

// newProcs deep-copies input so the caller's slice is never aliased.
func newProcs(input []model.Process, queue *int) []*proc {
	out := make([]*proc, len(input))
	for i, p := range input {
		cp := p
		if p.Priority != nil {
			cp.Priority = model.IntPtr(*p.Priority)
		}
		out[i] = &proc{Process: cp, remaining: p.BurstTime, queue: queue}
	}
	return out
}

// sortByArrival orders procs by arrival time, keeping input order for ties.
func sortByArrival(procs []*proc) {
	sort.SliceStable(procs, func(i, j int) bool {
		return procs[i].ArrivalTime < procs[j].ArrivalTime
	})
}

// arrived returns the unfinished procs with ArrivalTime <= now, in pool order.
func arrived(pool []*proc, now int) []*proc {
	var ready []*proc
	for _, p := range pool {
		if p.ArrivalTime <= now && p.remaining > 0 {
			ready = append(ready, p)
		}
	}
	return ready
}

// nextArrival returns the earliest arrival strictly after now among the
// unfinished procs. ok is false when no such process exists.
func nextArrival(now int, pool []*proc) (next int, ok bool) {
	for _, p := range pool {
		if p.remaining == 0 || p.ArrivalTime <= now {
			continue
		}
		if !ok || p.ArrivalTime < next {
			next, ok = p.ArrivalTime, true
		}
	}
	return next, ok
}

// advanceIdle jumps the clock over a gap in which nothing is ready.
func advanceIdle(now int, pool []*proc, tr *tracer) (int, error) {
	if err := tr.step(); err != nil {
		return now, err
	}
	next, ok := nextArrival(now, pool)
	if !ok {
		return now, invariantf("no process ready at t=%d and none arriving later", now)
	}
	return next, nil
}

func remove(pool []*proc, target *proc) []*proc {
	for i, p := range pool {
		if p == target {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}

// tracer records the dispatch history of a single run.
type tracer struct {
	segments []model.Segment
	switches map[int]int
	last     *proc
	steps    int
	maxSteps int
}

func newTracer(opts Options) *tracer {
	limit := opts.MaxSteps
	if limit <= 0 {
		limit = DefaultMaxSteps
	}
	return &tracer{switches: make(map[int]int), maxSteps: limit}
}

func (t *tracer) step() error {
	t.steps++
	if t.steps > t.maxSteps {
		return ErrStepLimit
	}
	return nil
}

// dispatch runs p on the CPU over [start, end).
func (t *tracer) dispatch(p *proc, start, end int) error {
	if err := t.step(); err != nil {
		return err
	}
	if end <= start {
		return invariantf("empty segment [%d,%d) for process %d", start, end, p.ID)
	}
	if start < p.ArrivalTime {
		return invariantf("process %d dispatched at t=%d before arrival at t=%d", p.ID, start, p.ArrivalTime)
	}
	if end-start > p.remaining {
		return invariantf("process %d ran %d units with %d remaining", p.ID, end-start, p.remaining)
	}
	// A resume after another process held the CPU counts as a switch; a
	// continuation of the same process does not.
	if p.started && t.last != p {
		t.switches[p.ID]++
	}
	p.started = true
	p.remaining -= end - start
	t.last = p
	t.segments = append(t.segments, model.Segment{
		ProcessID:     p.ID,
		StartTime:     start,
		EndTime:       end,
		QueuePriority: p.queue,
	})
	return nil
}
