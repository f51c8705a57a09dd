package sim

import (
	"sort"

	"github.com/me/cpusched/pkg/model"
)

// MLQ schedules strictly prioritized queues. The pending queue with the
// lowest queue priority is always selected, whether or not any of its
// processes have arrived; if none has, the clock jumps to that queue's own
// next arrival (see Options.WorkConserving for the alternative). Each
// dispatch runs one unit of the queue's policy: a whole process for
// FCFS/SJF/Priority, one quantum for RR.
func MLQ(queues []model.QueueConfig, opts Options) (*model.Result, error) {
	levels, all, err := newLevels(queues)
	if err != nil {
		return nil, err
	}

	tr := newTracer(opts)
	now := 0
	for {
		sel := firstPending(levels)
		if sel == nil {
			break
		}
		if !sel.hasReady(now) {
			var alt *level
			if opts.WorkConserving {
				alt = firstReady(levels, now)
			}
			if alt == nil {
				if err := tr.step(); err != nil {
					return nil, err
				}
				next, ok := sel.earliestArrival()
				if opts.WorkConserving {
					next, ok = earliestPending(levels)
				}
				if !ok || next <= now {
					return nil, invariantf("queue %d has no ready process at t=%d and no later arrival", sel.priority, now)
				}
				now = next
				continue
			}
			sel = alt
		}
		if now, err = sel.dispatch(now, tr); err != nil {
			return nil, err
		}
	}
	return build(model.PolicyMLQ, all, tr)
}

// level is the runtime state of one MLQ queue.
type level struct {
	priority int
	policy   model.Policy
	pool     []*proc  // unexecuted processes, non-RR policies
	rr       *rrQueue // RR policy only
}

// newLevels validates the queue policies up front so an unsupported policy
// aborts the run before anything is simulated.
func newLevels(queues []model.QueueConfig) ([]*level, []*proc, error) {
	var all []*proc
	levels := make([]*level, 0, len(queues))
	for _, qc := range queues {
		prio := model.IntPtr(qc.QueuePriority)
		if !qc.Policy.QueueCompatible() {
			return nil, nil, &model.UnsupportedPolicyError{Policy: string(qc.Policy), Queue: prio}
		}
		procs := newProcs(qc.Processes, prio)
		all = append(all, procs...)

		l := &level{priority: qc.QueuePriority, policy: qc.Policy}
		switch qc.Policy {
		case model.PolicyRR:
			if qc.Quantum <= 0 {
				return nil, nil, invariantf("queue %d: round-robin quantum must be > 0, got %d", qc.QueuePriority, qc.Quantum)
			}
			l.rr = newRRQueue(procs, qc.Quantum)
		case model.PolicyFCFS:
			l.pool = append([]*proc(nil), procs...)
			sortByArrival(l.pool)
		default:
			l.pool = append([]*proc(nil), procs...)
		}
		levels = append(levels, l)
	}
	sort.SliceStable(levels, func(i, j int) bool {
		return levels[i].priority < levels[j].priority
	})
	return levels, all, nil
}

func firstPending(levels []*level) *level {
	for _, l := range levels {
		if l.pending() {
			return l
		}
	}
	return nil
}

func firstReady(levels []*level, now int) *level {
	for _, l := range levels {
		if l.pending() && l.hasReady(now) {
			return l
		}
	}
	return nil
}

func earliestPending(levels []*level) (next int, ok bool) {
	for _, l := range levels {
		if !l.pending() {
			continue
		}
		if t, found := l.earliestArrival(); found && (!ok || t < next) {
			next, ok = t, true
		}
	}
	return next, ok
}

func (l *level) pending() bool {
	if l.rr != nil {
		return !l.rr.drained()
	}
	return len(l.pool) > 0
}

func (l *level) hasReady(now int) bool {
	if l.rr != nil {
		l.rr.admit(now)
		return len(l.rr.ready) > 0
	}
	return len(arrived(l.pool, now)) > 0
}

// earliestArrival returns the minimum arrival among the queue's own
// unexecuted processes that have not yet arrived.
func (l *level) earliestArrival() (int, bool) {
	if l.rr != nil {
		return l.rr.earliestArrival()
	}
	var next int
	ok := false
	for _, p := range l.pool {
		if !ok || p.ArrivalTime < next {
			next, ok = p.ArrivalTime, true
		}
	}
	return next, ok
}

func (l *level) dispatch(now int, tr *tracer) (int, error) {
	if l.rr != nil {
		return l.rr.runSlice(now, tr)
	}
	p, err := selectNext(l.policy, arrived(l.pool, now))
	if err != nil {
		if upe, ok := err.(*model.UnsupportedPolicyError); ok {
			upe.Queue = model.IntPtr(l.priority)
		}
		return now, err
	}
	end := now + p.remaining
	if err := tr.dispatch(p, now, end); err != nil {
		return now, err
	}
	l.pool = remove(l.pool, p)
	return end, nil
}
