package sim

import "github.com/me/cpusched/pkg/model"

// FCFS runs processes to completion in arrival order. Processes arriving at
// the same time keep their input order.
func FCFS(processes []model.Process, opts Options) (*model.Result, error) {
	return runNonPreemptive(model.PolicyFCFS, processes, opts)
}

// SJF runs the ready process with the smallest burst time to completion.
// Ties go to the first ready process in input order, not the earliest arrival.
func SJF(processes []model.Process, opts Options) (*model.Result, error) {
	return runNonPreemptive(model.PolicySJF, processes, opts)
}

// Priority runs the ready process with the lowest priority value to
// completion, with the same first-occurrence tie-break as SJF.
func Priority(processes []model.Process, opts Options) (*model.Result, error) {
	return runNonPreemptive(model.PolicyPriority, processes, opts)
}

func runNonPreemptive(policy model.Policy, processes []model.Process, opts Options) (*model.Result, error) {
	all := newProcs(processes, nil)
	pool := append([]*proc(nil), all...)
	if policy == model.PolicyFCFS {
		sortByArrival(pool)
	}

	tr := newTracer(opts)
	now := 0
	for len(pool) > 0 {
		ready := arrived(pool, now)
		if len(ready) == 0 {
			var err error
			if now, err = advanceIdle(now, pool, tr); err != nil {
				return nil, err
			}
			continue
		}
		p, err := selectNext(policy, ready)
		if err != nil {
			return nil, err
		}
		end := now + p.remaining
		if err := tr.dispatch(p, now, end); err != nil {
			return nil, err
		}
		now = end
		pool = remove(pool, p)
	}
	return build(policy, all, tr)
}

// selectNext is the single selection function of the non-preemptive family.
// ready must be non-empty and in pool order; the first process holding the
// minimal key wins.
func selectNext(policy model.Policy, ready []*proc) (*proc, error) {
	if len(ready) == 0 {
		return nil, invariantf("%s selection from an empty ready set", policy)
	}
	var key func(*proc) int
	switch policy {
	case model.PolicyFCFS:
		key = func(p *proc) int { return p.ArrivalTime }
	case model.PolicySJF:
		key = func(p *proc) int { return p.BurstTime }
	case model.PolicyPriority:
		key = func(p *proc) int { return p.PriorityValue() }
	default:
		return nil, &model.UnsupportedPolicyError{Policy: string(policy)}
	}

	best := ready[0]
	for _, p := range ready[1:] {
		if key(p) < key(best) {
			best = p
		}
	}
	return best, nil
}
