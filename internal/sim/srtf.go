package sim

import "github.com/me/cpusched/pkg/model"

// SRTF is fully preemptive: at every arrival and completion the ready process
// with the least remaining time takes the CPU. Segments therefore end only at
// arrivals or completions; ties go to the first ready process in input order.
func SRTF(processes []model.Process, opts Options) (*model.Result, error) {
	all := newProcs(processes, nil)

	tr := newTracer(opts)
	now := 0
	for done := 0; done < len(all); {
		ready := arrived(all, now)
		if len(ready) == 0 {
			var err error
			if now, err = advanceIdle(now, all, tr); err != nil {
				return nil, err
			}
			continue
		}

		best := ready[0]
		for _, p := range ready[1:] {
			if p.remaining < best.remaining {
				best = p
			}
		}

		run := best.remaining
		if next, ok := nextArrival(now, all); ok && next-now < run {
			run = next - now
		}
		if err := tr.dispatch(best, now, now+run); err != nil {
			return nil, err
		}
		now += run
		if best.remaining == 0 {
			done++
		}
	}
	return build(model.PolicySRTF, all, tr)
}
