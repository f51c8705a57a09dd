package model

// Process is one unit of simulated CPU work supplied by the caller.
type Process struct {
	ID          int  `json:"id" yaml:"id"`
	ArrivalTime int  `json:"arrival_time" yaml:"arrival_time"`
	BurstTime   int  `json:"burst_time" yaml:"burst_time"`
	Priority    *int `json:"priority,omitempty" yaml:"priority,omitempty"` // lower is more urgent
}

// PriorityValue returns the priority, or 0 when unset.
func (p Process) PriorityValue() int {
	if p.Priority == nil {
		return 0
	}
	return *p.Priority
}

// QueueConfig describes one level of a multi-level queue.
type QueueConfig struct {
	QueuePriority int       `json:"queue_priority" yaml:"queue_priority"` // lower is served first
	Policy        Policy    `json:"policy" yaml:"policy"`
	Quantum       int       `json:"quantum,omitempty" yaml:"quantum,omitempty"`
	Processes     []Process `json:"processes" yaml:"processes"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
