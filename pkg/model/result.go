package model

// ScheduleEntry is the outcome for one completed process.
type ScheduleEntry struct {
	ProcessID       int  `json:"process_id"`
	ArrivalTime     int  `json:"arrival_time"`
	BurstTime       int  `json:"burst_time"`
	StartTime       int  `json:"start_time"`
	CompletionTime  int  `json:"completion_time"`
	TurnaroundTime  int  `json:"turnaround_time"`
	WaitingTime     int  `json:"waiting_time"`
	ResponseTime    int  `json:"response_time"`
	ContextSwitches int  `json:"context_switches"`
	Priority        *int `json:"priority,omitempty"`
	QueuePriority   *int `json:"queue_priority,omitempty"`
}

// Segment is a half-open interval [StartTime, EndTime) during which one
// process occupies the CPU.
type Segment struct {
	ProcessID     int  `json:"process_id"`
	StartTime     int  `json:"start_time"`
	EndTime       int  `json:"end_time"`
	QueuePriority *int `json:"queue_priority,omitempty"`
}

// Duration returns the length of the segment.
func (s Segment) Duration() int {
	return s.EndTime - s.StartTime
}

// Metrics aggregates a completed schedule.
type Metrics struct {
	AvgTurnaroundTime float64 `json:"avg_turnaround_time"`
	AvgWaitingTime    float64 `json:"avg_waiting_time"`
	AvgResponseTime   float64 `json:"avg_response_time"`
	Makespan          int     `json:"makespan"`
	BusyTime          int     `json:"busy_time"`
	IdleTime          int     `json:"idle_time"`
	CPUUtilization    float64 `json:"cpu_utilization"`
	Throughput        float64 `json:"throughput"`
	ContextSwitches   int     `json:"context_switches"`
}

// Result is the complete output of one simulation.
//
// Timeline holds segments with adjacent same-process runs merged; Segments
// keeps the raw dispatch slices that metrics are derived from.
type Result struct {
	Policy   Policy          `json:"policy"`
	Schedule []ScheduleEntry `json:"schedule"`
	Timeline []Segment       `json:"timeline"`
	Segments []Segment       `json:"segments"`
	Metrics  *Metrics        `json:"metrics,omitempty"`
}

// Entry returns the schedule entry for a process ID.
func (r *Result) Entry(processID int) (ScheduleEntry, bool) {
	for _, e := range r.Schedule {
		if e.ProcessID == processID {
			return e, true
		}
	}
	return ScheduleEntry{}, false
}
