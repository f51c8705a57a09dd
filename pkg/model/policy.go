package model

import "strings"

// Policy identifies a CPU scheduling policy. The set is closed: every
// switch over Policy handles exactly the constants below.
type Policy string

const (
	PolicyFCFS     Policy = "fcfs"
	PolicySJF      Policy = "sjf"
	PolicyPriority Policy = "priority"
	PolicyRR       Policy = "rr"
	PolicySRTF     Policy = "srtf"
	PolicyMLQ      Policy = "mlq"
)

// AllPolicies lists every supported policy in catalogue order.
var AllPolicies = []Policy{PolicyFCFS, PolicySJF, PolicyPriority, PolicyRR, PolicySRTF, PolicyMLQ}

var policyAliases = map[string]Policy{
	"fcfs":                          PolicyFCFS,
	"fifo":                          PolicyFCFS,
	"first-come-first-served":       PolicyFCFS,
	"sjf":                           PolicySJF,
	"shortest-job-first":            PolicySJF,
	"priority":                      PolicyPriority,
	"rr":                            PolicyRR,
	"round-robin":                   PolicyRR,
	"srtf":                          PolicySRTF,
	"shortest-remaining-time-first": PolicySRTF,
	"mlq":                           PolicyMLQ,
	"multi-level-queue":             PolicyMLQ,
}

// ParsePolicy resolves a policy name. Matching is case-insensitive and
// accepts underscores or spaces in place of dashes.
func ParsePolicy(s string) (Policy, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "-", " ", "-").Replace(key)
	if p, ok := policyAliases[key]; ok {
		return p, nil
	}
	return "", &UnsupportedPolicyError{Policy: s}
}

// String returns the canonical policy name.
func (p Policy) String() string {
	return string(p)
}

// Valid reports whether p is one of the supported policies.
func (p Policy) Valid() bool {
	switch p {
	case PolicyFCFS, PolicySJF, PolicyPriority, PolicyRR, PolicySRTF, PolicyMLQ:
		return true
	}
	return false
}

// IsPreemptive reports whether a running process can lose the CPU before it finishes.
func (p Policy) IsPreemptive() bool {
	switch p {
	case PolicyRR, PolicySRTF, PolicyMLQ:
		return true
	}
	return false
}

// RequiresQuantum reports whether the policy needs a time quantum.
func (p Policy) RequiresQuantum() bool {
	return p == PolicyRR
}

// RequiresPriority reports whether every process needs a priority value.
func (p Policy) RequiresPriority() bool {
	return p == PolicyPriority
}

// QueueCompatible reports whether p may be configured on an MLQ queue.
func (p Policy) QueueCompatible() bool {
	switch p {
	case PolicyFCFS, PolicySJF, PolicyRR, PolicyPriority:
		return true
	}
	return false
}

// Description returns a one-line human-readable summary.
func (p Policy) Description() string {
	switch p {
	case PolicyFCFS:
		return "First-Come-First-Served: run in arrival order, each process to completion"
	case PolicySJF:
		return "Shortest-Job-First: run the ready process with the smallest burst to completion"
	case PolicyPriority:
		return "Priority: run the ready process with the lowest priority value to completion"
	case PolicyRR:
		return "Round-Robin: FIFO ready queue, each dispatch bounded by the time quantum"
	case PolicySRTF:
		return "Shortest-Remaining-Time-First: preempt whenever a ready process has less remaining time"
	case PolicyMLQ:
		return "Multi-Level-Queue: strictly prioritized queues, each with its own policy"
	}
	return ""
}
