package sim

import (
	"sort"

	"github.com/me/cpusched/pkg/model"
)

// build turns a finished trace into a Result, checking the schedule
// invariants on the way: every process ran exactly its burst, never before
// its arrival, and no two segments overlap.
func build(policy model.Policy, procs []*proc, tr *tracer) (*model.Result, error) {
	type span struct {
		start, end, busy int
		seen             bool
	}
	spans := make(map[int]*span, len(procs))
	for _, p := range procs {
		spans[p.ID] = &span{}
	}

	prevEnd := 0
	for i, seg := range tr.segments {
		if i > 0 && seg.StartTime < prevEnd {
			return nil, invariantf("segment [%d,%d) of process %d overlaps previous segment ending at %d",
				seg.StartTime, seg.EndTime, seg.ProcessID, prevEnd)
		}
		prevEnd = seg.EndTime

		sp, ok := spans[seg.ProcessID]
		if !ok {
			return nil, invariantf("segment for unknown process %d", seg.ProcessID)
		}
		if !sp.seen {
			sp.start, sp.seen = seg.StartTime, true
		}
		sp.end = seg.EndTime
		sp.busy += seg.Duration()
	}

	entries := make([]model.ScheduleEntry, 0, len(procs))
	for _, p := range procs {
		sp := spans[p.ID]
		if p.remaining != 0 || sp.busy != p.BurstTime {
			return nil, invariantf("process %d ran %d of %d units", p.ID, sp.busy, p.BurstTime)
		}
		turnaround := sp.end - p.ArrivalTime
		entries = append(entries, model.ScheduleEntry{
			ProcessID:       p.ID,
			ArrivalTime:     p.ArrivalTime,
			BurstTime:       p.BurstTime,
			StartTime:       sp.start,
			CompletionTime:  sp.end,
			TurnaroundTime:  turnaround,
			WaitingTime:     turnaround - p.BurstTime,
			ResponseTime:    sp.start - p.ArrivalTime,
			ContextSwitches: tr.switches[p.ID],
			Priority:        p.Priority,
			QueuePriority:   p.queue,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CompletionTime < entries[j].CompletionTime
	})

	segments := append([]model.Segment(nil), tr.segments...)
	return &model.Result{
		Policy:   policy,
		Schedule: entries,
		Timeline: Merge(segments),
		Segments: segments,
		Metrics:  ComputeMetrics(entries, segments),
	}, nil
}

// Merge consolidates segments by start time, joining runs of the same
// process (and queue) that touch without a gap. The input is not modified.
func Merge(segments []model.Segment) []model.Segment {
	sorted := append([]model.Segment(nil), segments...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime < sorted[j].StartTime
	})

	merged := make([]model.Segment, 0, len(sorted))
	for _, seg := range sorted {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.ProcessID == seg.ProcessID && last.EndTime == seg.StartTime && sameQueue(last.QueuePriority, seg.QueuePriority) {
				last.EndTime = seg.EndTime
				continue
			}
		}
		merged = append(merged, seg)
	}
	return merged
}

func sameQueue(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ComputeMetrics derives averages and CPU usage from a schedule and its raw
// segments. Makespan runs from the first dispatch to the last completion.
func ComputeMetrics(entries []model.ScheduleEntry, segments []model.Segment) *model.Metrics {
	m := &model.Metrics{}
	if len(entries) == 0 {
		return m
	}

	var turnaround, waiting, response float64
	for _, e := range entries {
		turnaround += float64(e.TurnaroundTime)
		waiting += float64(e.WaitingTime)
		response += float64(e.ResponseTime)
	}
	n := float64(len(entries))
	m.AvgTurnaroundTime = turnaround / n
	m.AvgWaitingTime = waiting / n
	m.AvgResponseTime = response / n

	if len(segments) == 0 {
		return m
	}
	first, last := segments[0].StartTime, segments[0].EndTime
	for i, seg := range segments {
		m.BusyTime += seg.Duration()
		first = min(first, seg.StartTime)
		last = max(last, seg.EndTime)
		if i > 0 && segments[i-1].ProcessID != seg.ProcessID {
			m.ContextSwitches++
		}
	}
	m.Makespan = last - first
	m.IdleTime = m.Makespan - m.BusyTime
	if m.Makespan > 0 {
		m.CPUUtilization = float64(m.BusyTime) / float64(m.Makespan)
		m.Throughput = n / float64(m.Makespan)
	}
	return m
}
