// Package compare runs several scheduling policies over the same workload.
package compare

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/me/cpusched/internal/sim"
	"github.com/me/cpusched/internal/validate"
	"github.com/me/cpusched/pkg/model"
)

// Config configures a comparison.
type Config struct {
	// Workers limits concurrent simulations; <= 0 means one per policy.
	Workers int
	Options sim.Options
}

// Request is the input to a comparison.
type Request struct {
	Processes []model.Process `json:"processes" yaml:"processes"`
	Quantum   int             `json:"quantum,omitempty" yaml:"quantum,omitempty"`
	Policies  []model.Policy  `json:"policies,omitempty" yaml:"policies,omitempty"`
}

// DefaultPolicies picks the single-level policies that can run on procs:
// priority only when every process has one, rr only when a quantum is given.
func DefaultPolicies(procs []model.Process, quantum int) []model.Policy {
	policies := []model.Policy{model.PolicyFCFS, model.PolicySJF}
	if validate.AllHavePriority(procs) {
		policies = append(policies, model.PolicyPriority)
	}
	if quantum > 0 {
		policies = append(policies, model.PolicyRR)
	}
	return append(policies, model.PolicySRTF)
}

// Run simulates every requested policy on its own copy of the processes.
// A policy that fails is reported in its row; the others still complete.
// Rows are ordered by average waiting time, failed rows last.
func Run(ctx context.Context, req Request, cfg Config, logger *slog.Logger) (*model.Comparison, error) {
	logger = logger.With("component", "compare")
	policies := req.Policies
	if len(policies) == 0 {
		policies = DefaultPolicies(req.Processes, req.Quantum)
	}

	rows := make([]model.ComparisonRow, len(policies))
	sem := NewSemaphore(cfg.Workers)
	logger.Debug("comparing policies", "policies", len(policies), "workers", sem.Capacity())
	var wg sync.WaitGroup

	for i, policy := range policies {
		if !sem.Acquire(ctx) {
			break
		}
		wg.Add(1)
		go func(i int, policy model.Policy) {
			defer wg.Done()
			defer sem.Release()
			rows[i] = runOne(policy, req, cfg.Options)
			logger.Debug("policy simulated", "policy", policy, "error", rows[i].Error)
		}(i, policy)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stable: equal rows keep request order.
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.Metrics == nil) != (b.Metrics == nil) {
			return a.Metrics != nil
		}
		return a.Metrics != nil && a.Metrics.AvgWaitingTime < b.Metrics.AvgWaitingTime
	})
	return &model.Comparison{Rows: rows}, nil
}

func runOne(policy model.Policy, req Request, opts sim.Options) model.ComparisonRow {
	row := model.ComparisonRow{Policy: policy}
	simReq := &model.SimulationRequest{Policy: policy, Processes: req.Processes, Quantum: req.Quantum}
	if policy == model.PolicyMLQ {
		row.Error = "mlq needs queue configuration and cannot be compared on a flat process list"
		return row
	}
	if apiErr := validate.Request(simReq, validate.Limits{}); apiErr != nil {
		row.Error = apiErr.Details[0].String()
		return row
	}
	res, err := sim.Run(simReq, opts)
	if err != nil {
		row.Error = err.Error()
		return row
	}
	row.Metrics = res.Metrics
	row.Result = res
	return row
}
