// Package validate checks simulation requests before they reach the engine.
// It is used by both the HTTP server and the CLI's local mode.
package validate

import (
	"fmt"
	"math"

	"github.com/me/cpusched/pkg/model"
)

// Limits bounds the size of a single simulation.
type Limits struct {
	MaxProcesses int // 0 means unlimited
	MaxTime      int // bound on latest arrival plus total burst; 0 means unlimited
}

// DefaultLimits returns limits comfortably above classroom problem sizes.
func DefaultLimits() Limits {
	return Limits{MaxProcesses: 500, MaxTime: 1_000_000}
}

// Request validates req and returns nil when it may be simulated.
// The returned error carries one FieldError per problem; its code is
// UNSUPPORTED_POLICY when any policy name is unknown or misplaced.
func Request(req *model.SimulationRequest, limits Limits) *model.APIError {
	c := &checker{seen: make(map[int]string)}

	if !req.Policy.Valid() {
		c.unsupported("policy", fmt.Sprintf("unknown policy %q", req.Policy))
		return c.result()
	}

	if req.Policy == model.PolicyMLQ {
		c.queues(req)
	} else {
		if len(req.Queues) > 0 {
			c.add("queues", "only valid for policy mlq")
		}
		if len(req.Processes) == 0 {
			c.add("processes", "at least one process is required")
		}
		if req.Policy.RequiresQuantum() && req.Quantum <= 0 {
			c.add("quantum", "must be > 0 for policy rr")
		}
		c.processes("processes", req.Processes, req.Policy.RequiresPriority())
	}

	c.limits(req, limits)
	return c.result()
}

// Processes validates a bare process list for a single-level policy.
// It is used where several policies share one workload, as in comparisons.
func Processes(procs []model.Process, limits Limits) *model.APIError {
	c := &checker{seen: make(map[int]string)}
	if len(procs) == 0 {
		c.add("processes", "at least one process is required")
	}
	c.processes("processes", procs, false)
	c.limits(&model.SimulationRequest{Processes: procs}, limits)
	return c.result()
}

// AllHavePriority reports whether every process carries a priority.
func AllHavePriority(procs []model.Process) bool {
	for _, p := range procs {
		if p.Priority == nil {
			return false
		}
	}
	return len(procs) > 0
}

type checker struct {
	errs              []model.FieldError
	unsupportedPolicy bool
	seen              map[int]string // process ID -> field path of first use
}

func (c *checker) add(field, msg string) {
	c.errs = append(c.errs, model.FieldError{Field: field, Message: msg})
}

func (c *checker) unsupported(field, msg string) {
	c.unsupportedPolicy = true
	c.add(field, msg)
}

func (c *checker) result() *model.APIError {
	if len(c.errs) == 0 {
		return nil
	}
	if c.unsupportedPolicy {
		return &model.APIError{Code: model.ErrUnsupportedPolicy, Message: "unsupported policy", Details: c.errs}
	}
	return model.NewValidationError("invalid simulation request", c.errs...)
}

func (c *checker) queues(req *model.SimulationRequest) {
	if len(req.Processes) > 0 {
		c.add("processes", "policy mlq takes processes inside queues")
	}
	if len(req.Queues) == 0 {
		c.add("queues", "at least one queue is required for policy mlq")
		return
	}

	priorities := make(map[int]int)
	total := 0
	for i, q := range req.Queues {
		path := fmt.Sprintf("queues[%d]", i)
		if j, dup := priorities[q.QueuePriority]; dup {
			c.add(path+".queue_priority", fmt.Sprintf("duplicates queues[%d]", j))
		} else {
			priorities[q.QueuePriority] = i
		}

		switch {
		case !q.Policy.Valid():
			c.unsupported(path+".policy", fmt.Sprintf("unknown policy %q", q.Policy))
		case !q.Policy.QueueCompatible():
			c.unsupported(path+".policy", fmt.Sprintf("policy %q cannot be used in a queue (fcfs, sjf, rr, priority)", q.Policy))
		}
		if q.Policy.RequiresQuantum() && q.Quantum <= 0 {
			c.add(path+".quantum", "must be > 0 for policy rr")
		}

		c.processes(path+".processes", q.Processes, q.Policy.RequiresPriority())
		total += len(q.Processes)
	}
	if total == 0 {
		c.add("queues", "at least one process is required")
	}
}

func (c *checker) processes(path string, procs []model.Process, needPriority bool) {
	for i, p := range procs {
		field := fmt.Sprintf("%s[%d]", path, i)
		if p.ID == 0 {
			c.add(field+".id", "must be non-zero")
		} else if first, dup := c.seen[p.ID]; dup {
			c.add(field+".id", fmt.Sprintf("duplicate id %d (also %s)", p.ID, first))
		} else {
			c.seen[p.ID] = field
		}
		if p.ArrivalTime < 0 {
			c.add(field+".arrival_time", "must be >= 0")
		}
		if p.BurstTime <= 0 {
			c.add(field+".burst_time", "must be > 0")
		}
		if needPriority && p.Priority == nil {
			c.add(field+".priority", "required by policy priority")
		}
	}
}

func (c *checker) limits(req *model.SimulationRequest, limits Limits) {
	n := req.ProcessCount()
	if limits.MaxProcesses > 0 && n > limits.MaxProcesses {
		c.add("processes", fmt.Sprintf("%d processes exceeds the limit of %d", n, limits.MaxProcesses))
	}

	// Unlimited still means the horizon must fit in an int.
	maxTime := limits.MaxTime
	if maxTime <= 0 {
		maxTime = math.MaxInt
	}

	horizon, latest := 0, 0
	tooLong, saturated := false, false
	visit := func(path string, procs []model.Process) {
		for i, p := range procs {
			field := fmt.Sprintf("%s[%d]", path, i)
			if p.ArrivalTime > maxTime {
				c.add(field+".arrival_time", fmt.Sprintf("exceeds the time limit of %d", maxTime))
				tooLong = true
			}
			if p.BurstTime > maxTime {
				c.add(field+".burst_time", fmt.Sprintf("exceeds the time limit of %d", maxTime))
				tooLong = true
			}
			if p.BurstTime > 0 {
				if p.BurstTime > math.MaxInt-horizon {
					saturated = true
				} else {
					horizon += p.BurstTime
				}
			}
			latest = max(latest, p.ArrivalTime)
		}
	}
	visit("processes", req.Processes)
	for i, q := range req.Queues {
		visit(fmt.Sprintf("queues[%d].processes", i), q.Processes)
	}

	switch {
	case tooLong:
	case saturated || latest > math.MaxInt-horizon:
		c.add("processes", fmt.Sprintf("simulated horizon exceeds the limit of %d", maxTime))
	case horizon+latest > maxTime:
		c.add("processes", fmt.Sprintf("simulated horizon %d exceeds the limit of %d", horizon+latest, maxTime))
	}
}
