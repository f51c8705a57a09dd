package model

import "time"

// SimulationRequest selects a policy and supplies its input.
// Processes and Quantum apply to single-level policies; Queues applies to MLQ.
type SimulationRequest struct {
	Policy         Policy        `json:"policy" yaml:"policy"`
	Label          string        `json:"label,omitempty" yaml:"label,omitempty"`
	Processes      []Process     `json:"processes,omitempty" yaml:"processes,omitempty"`
	Quantum        int           `json:"quantum,omitempty" yaml:"quantum,omitempty"`
	Queues         []QueueConfig `json:"queues,omitempty" yaml:"queues,omitempty"`
	WorkConserving bool          `json:"work_conserving,omitempty" yaml:"work_conserving,omitempty"`
}

// ProcessCount returns the number of processes across all levels.
func (r *SimulationRequest) ProcessCount() int {
	n := len(r.Processes)
	for _, q := range r.Queues {
		n += len(q.Processes)
	}
	return n
}

// SimulationRun is a persisted simulation: the request that produced it and its result.
type SimulationRun struct {
	ID        string            `json:"id"`
	Label     string            `json:"label,omitempty"`
	Policy    Policy            `json:"policy"`
	Request   SimulationRequest `json:"request"`
	Result    *Result           `json:"result"`
	CreatedAt time.Time         `json:"created_at"`
}

// ComparisonRow is the outcome of one policy within a comparison.
type ComparisonRow struct {
	Policy  Policy   `json:"policy"`
	Metrics *Metrics `json:"metrics,omitempty"`
	Result  *Result  `json:"result,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Comparison holds rows ordered by average waiting time.
type Comparison struct {
	Rows []ComparisonRow `json:"rows"`
}

// RunSummary is the listing view of a SimulationRun.
type RunSummary struct {
	ID                string    `json:"id"`
	Label             string    `json:"label,omitempty"`
	Policy            Policy    `json:"policy"`
	ProcessCount      int       `json:"process_count"`
	Makespan          int       `json:"makespan"`
	AvgWaitingTime    float64   `json:"avg_waiting_time"`
	AvgTurnaroundTime float64   `json:"avg_turnaround_time"`
	CreatedAt         time.Time `json:"created_at"`
}
