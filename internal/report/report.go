// Package report renders simulation results as text: a schedule table,
// an ASCII Gantt chart and a policy comparison table.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/me/cpusched/pkg/model"
	"github.com/olekukonko/tablewriter"
)

// Result writes a titled Gantt chart, schedule table and summary for res.
func Result(w io.Writer, title string, res *model.Result) {
	if title == "" {
		title = string(res.Policy)
	}
	_, _ = fmt.Fprintln(w, title)
	_, _ = fmt.Fprintln(w, strings.Repeat("-", len(title)))
	_, _ = fmt.Fprintln(w, "Gantt schedule")
	Gantt(w, res.Timeline)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Schedule table")
	Schedule(w, res)
	if res.Metrics != nil {
		Summary(w, res.Metrics)
	}
}

// Schedule writes one row per process with averages in the footer.
// A Queue column is added when any entry belongs to an MLQ level.
func Schedule(w io.Writer, res *model.Result) {
	withQueue := false
	for _, e := range res.Schedule {
		if e.QueuePriority != nil {
			withQueue = true
			break
		}
	}

	header := []string{"ID"}
	if withQueue {
		header = append(header, "Queue")
	}
	header = append(header, "Priority", "Burst", "Arrival", "Start", "Completion", "Wait", "Turnaround", "Switches")

	rows := make([][]string, 0, len(res.Schedule))
	for _, e := range res.Schedule {
		row := []string{strconv.Itoa(e.ProcessID)}
		if withQueue {
			row = append(row, optional(e.QueuePriority))
		}
		row = append(row,
			optional(e.Priority),
			strconv.Itoa(e.BurstTime),
			strconv.Itoa(e.ArrivalTime),
			strconv.Itoa(e.StartTime),
			strconv.Itoa(e.CompletionTime),
			strconv.Itoa(e.WaitingTime),
			strconv.Itoa(e.TurnaroundTime),
			strconv.Itoa(e.ContextSwitches),
		)
		rows = append(rows, row)
	}

	table := newTable(w)
	table.SetHeader(header)
	table.AppendBulk(rows)
	if m := res.Metrics; m != nil {
		footer := make([]string, len(header))
		footer[len(footer)-3] = fmt.Sprintf("avg %.2f", m.AvgWaitingTime)
		footer[len(footer)-2] = fmt.Sprintf("avg %.2f", m.AvgTurnaroundTime)
		footer[len(footer)-1] = strconv.Itoa(m.ContextSwitches)
		table.SetFooter(footer)
	}
	table.Render()
}

// Summary writes the aggregate metrics that do not fit the table footer.
func Summary(w io.Writer, m *model.Metrics) {
	_, _ = fmt.Fprintf(w, "Makespan %d, busy %d, idle %d, CPU utilization %.1f%%, throughput %.3f/t, avg response %.2f\n",
		m.Makespan, m.BusyTime, m.IdleTime, m.CPUUtilization*100, m.Throughput, m.AvgResponseTime)
}

// Gantt writes the timeline as a bar of labelled cells with the time of
// each boundary underneath. Gaps between segments, including any before
// the first one, are drawn as idle cells.
func Gantt(w io.Writer, timeline []model.Segment) {
	if len(timeline) == 0 {
		_, _ = fmt.Fprintln(w, "(no execution)")
		return
	}

	type cell struct {
		label      string
		start, end int
	}
	var cells []cell
	now := 0
	for _, seg := range timeline {
		if seg.StartTime > now {
			cells = append(cells, cell{"idle", now, seg.StartTime})
		}
		cells = append(cells, cell{"P" + strconv.Itoa(seg.ProcessID), seg.StartTime, seg.EndTime})
		now = seg.EndTime
	}

	var top, bottom strings.Builder
	top.WriteString("|")
	bottom.WriteString(strconv.Itoa(cells[0].start))
	for _, c := range cells {
		width := max(len(c.label)+2, len(strconv.Itoa(c.start))+1)
		left := (width - len(c.label)) / 2
		top.WriteString(strings.Repeat(" ", left) + c.label + strings.Repeat(" ", width-len(c.label)-left) + "|")

		// The end time sits under the closing bar of the cell.
		bottom.WriteString(strings.Repeat(" ", top.Len()-1-bottom.Len()))
		bottom.WriteString(strconv.Itoa(c.end))
	}
	_, _ = fmt.Fprintln(w, top.String())
	_, _ = fmt.Fprintln(w, bottom.String())
}

// Comparison writes one row per policy in the comparison's order.
func Comparison(w io.Writer, cmp *model.Comparison) {
	table := newTable(w)
	table.SetHeader([]string{"Policy", "Avg Wait", "Avg Turnaround", "Avg Response", "Makespan", "CPU Util", "Switches", "Error"})
	for _, row := range cmp.Rows {
		if row.Metrics == nil {
			table.Append([]string{string(row.Policy), "-", "-", "-", "-", "-", "-", row.Error})
			continue
		}
		m := row.Metrics
		table.Append([]string{
			string(row.Policy),
			fmt.Sprintf("%.2f", m.AvgWaitingTime),
			fmt.Sprintf("%.2f", m.AvgTurnaroundTime),
			fmt.Sprintf("%.2f", m.AvgResponseTime),
			strconv.Itoa(m.Makespan),
			fmt.Sprintf("%.1f%%", m.CPUUtilization*100),
			strconv.Itoa(m.ContextSwitches),
			"",
		})
	}
	table.Render()
}

func newTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

// Policies writes the policy catalogue.
func Policies(w io.Writer) {
	table := newTable(w)
	table.SetHeader([]string{"Policy", "Description", "Preemptive", "Needs"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, p := range model.AllPolicies {
		var needs []string
		if p.RequiresQuantum() {
			needs = append(needs, "quantum")
		}
		if p.RequiresPriority() {
			needs = append(needs, "priorities")
		}
		if p == model.PolicyMLQ {
			needs = append(needs, "queues")
		}
		table.Append([]string{string(p), p.Description(), yesNo(p.IsPreemptive()), strings.Join(needs, ", ")})
	}
	table.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
