// Package sim computes exact CPU schedules for a set of processes under a
// chosen scheduling policy.
//
// Every entry point is a pure function of its input: processes are copied
// before simulation and no state survives between calls, so concurrent runs
// never share anything. Simulated time is an integer clock that jumps over
// idle gaps instead of advancing unit by unit.
package sim

import (
	"errors"
	"fmt"

	"github.com/me/cpusched/pkg/model"
)

var (
	// ErrInvariant marks an internal invariant violation. It indicates a
	// programming defect or input that bypassed validation, never a
	// transient condition.
	ErrInvariant = errors.New("scheduling invariant violated")

	// ErrStepLimit is returned when a run exceeds Options.MaxSteps.
	ErrStepLimit = errors.New("simulation step limit exceeded")
)

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...)
}

// Options tunes a simulation run.
type Options struct {
	// MaxSteps caps dispatches plus idle jumps. Zero means DefaultMaxSteps.
	MaxSteps int

	// WorkConserving changes MLQ behavior when the highest-priority pending
	// queue has nothing ready: instead of jumping the clock to that queue's
	// next arrival, the highest-priority queue with ready work is served.
	WorkConserving bool
}

// DefaultMaxSteps bounds a run when Options.MaxSteps is zero.
const DefaultMaxSteps = 1_000_000

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{MaxSteps: DefaultMaxSteps}
}

// Run simulates req under req.Policy. The request is assumed to have been
// validated; see package validate.
func Run(req *model.SimulationRequest, opts Options) (*model.Result, error) {
	if req.WorkConserving {
		opts.WorkConserving = true
	}
	switch req.Policy {
	case model.PolicyFCFS:
		return FCFS(req.Processes, opts)
	case model.PolicySJF:
		return SJF(req.Processes, opts)
	case model.PolicyPriority:
		return Priority(req.Processes, opts)
	case model.PolicyRR:
		return RoundRobin(req.Processes, req.Quantum, opts)
	case model.PolicySRTF:
		return SRTF(req.Processes, opts)
	case model.PolicyMLQ:
		return MLQ(req.Queues, opts)
	}
	return nil, &model.UnsupportedPolicyError{Policy: string(req.Policy)}
}
