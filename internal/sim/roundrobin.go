package sim

import "github.com/me/cpusched/pkg/model"

// RoundRobin dispatches a FIFO ready queue, running each process for at most
// quantum time units before sending it to the back of the queue.
func RoundRobin(processes []model.Process, quantum int, opts Options) (*model.Result, error) {
	if quantum <= 0 {
		return nil, invariantf("round-robin quantum must be > 0, got %d", quantum)
	}
	all := newProcs(processes, nil)
	q := newRRQueue(all, quantum)

	tr := newTracer(opts)
	now := 0
	for !q.drained() {
		q.admit(now)
		if len(q.ready) == 0 {
			if err := tr.step(); err != nil {
				return nil, err
			}
			now = q.backlog[0].ArrivalTime
			continue
		}
		var err error
		if now, err = q.runSlice(now, tr); err != nil {
			return nil, err
		}
	}
	return build(model.PolicyRR, all, tr)
}

// rrQueue is the state of one round-robin ready queue: processes that have
// arrived wait in ready, the rest wait in backlog ordered by arrival.
type rrQueue struct {
	quantum int
	ready   []*proc
	backlog []*proc
}

func newRRQueue(procs []*proc, quantum int) *rrQueue {
	backlog := append([]*proc(nil), procs...)
	sortByArrival(backlog)
	return &rrQueue{quantum: quantum, backlog: backlog}
}

func (q *rrQueue) drained() bool {
	return len(q.ready) == 0 && len(q.backlog) == 0
}

// admit moves every backlog process that has arrived by now to the back of
// the ready queue.
func (q *rrQueue) admit(now int) {
	i := 0
	for i < len(q.backlog) && q.backlog[i].ArrivalTime <= now {
		i++
	}
	q.ready = append(q.ready, q.backlog[:i]...)
	q.backlog = q.backlog[i:]
}

// runSlice dispatches the head of the ready queue for one quantum and returns
// the new clock. Arrivals up to the end of the slice are queued before the
// preempted process is re-queued.
func (q *rrQueue) runSlice(now int, tr *tracer) (int, error) {
	if len(q.ready) == 0 {
		return now, invariantf("round-robin dispatch from an empty ready queue at t=%d", now)
	}
	p := q.ready[0]
	q.ready = q.ready[1:]

	end := now + min(p.remaining, q.quantum)
	if err := tr.dispatch(p, now, end); err != nil {
		return now, err
	}
	q.admit(end)
	if p.remaining > 0 {
		q.ready = append(q.ready, p)
	}
	return end, nil
}

// earliestArrival returns the arrival of the next backlog process.
func (q *rrQueue) earliestArrival() (int, bool) {
	if len(q.backlog) == 0 {
		return 0, false
	}
	return q.backlog[0].ArrivalTime, true
}
