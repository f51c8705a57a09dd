package compare

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/me/cpusched/internal/sim"
	"github.com/me/cpusched/pkg/model"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func workload() []model.Process {
	return []model.Process{
		{ID: 1, ArrivalTime: 0, BurstTime: 8, Priority: model.IntPtr(3)},
		{ID: 2, ArrivalTime: 1, BurstTime: 4, Priority: model.IntPtr(1)},
		{ID: 3, ArrivalTime: 2, BurstTime: 9, Priority: model.IntPtr(4)},
		{ID: 4, ArrivalTime: 3, BurstTime: 5, Priority: model.IntPtr(2)},
	}
}

func TestDefaultPolicies(t *testing.T) {
	tests := []struct {
		name    string
		procs   []model.Process
		quantum int
		want    []model.Policy
	}{
		{"all", workload(), 2, []model.Policy{model.PolicyFCFS, model.PolicySJF, model.PolicyPriority, model.PolicyRR, model.PolicySRTF}},
		{"no quantum", workload(), 0, []model.Policy{model.PolicyFCFS, model.PolicySJF, model.PolicyPriority, model.PolicySRTF}},
		{"no priorities", []model.Process{{ID: 1, BurstTime: 1}}, 0, []model.Policy{model.PolicyFCFS, model.PolicySJF, model.PolicySRTF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DefaultPolicies(tt.procs, tt.quantum)
			if len(got) != len(tt.want) {
				t.Fatalf("DefaultPolicies() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("DefaultPolicies()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRun_OrdersByAverageWaiting(t *testing.T) {
	procs := workload()
	cmp, err := Run(context.Background(), Request{Processes: procs, Quantum: 2}, Config{Workers: 2, Options: sim.DefaultOptions()}, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(cmp.Rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(cmp.Rows))
	}
	for i, row := range cmp.Rows {
		if row.Error != "" {
			t.Fatalf("row %s failed: %s", row.Policy, row.Error)
		}
		if i > 0 && row.Metrics.AvgWaitingTime < cmp.Rows[i-1].Metrics.AvgWaitingTime {
			t.Errorf("rows not ordered: %s (%.2f) after %s (%.2f)", row.Policy, row.Metrics.AvgWaitingTime,
				cmp.Rows[i-1].Policy, cmp.Rows[i-1].Metrics.AvgWaitingTime)
		}
	}
	if cmp.Rows[0].Policy != model.PolicySRTF {
		t.Errorf("best policy = %s, want srtf", cmp.Rows[0].Policy)
	}
	if cmp.Rows[0].Metrics.AvgWaitingTime != 6.5 {
		t.Errorf("srtf avg waiting = %v, want 6.5", cmp.Rows[0].Metrics.AvgWaitingTime)
	}

	// Each policy ran on its own copy.
	if *procs[0].Priority != 3 || procs[0].BurstTime != 8 {
		t.Errorf("input mutated: %+v", procs[0])
	}
}

func TestRun_FailedPoliciesLast(t *testing.T) {
	procs := []model.Process{{ID: 1, BurstTime: 3}, {ID: 2, ArrivalTime: 1, BurstTime: 1}}
	req := Request{Processes: procs, Policies: []model.Policy{model.PolicyMLQ, model.PolicyPriority, model.PolicyFCFS, model.PolicyRR}}
	cmp, err := Run(context.Background(), req, Config{}, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cmp.Rows[0].Policy != model.PolicyFCFS || cmp.Rows[0].Error != "" {
		t.Fatalf("first row = %+v, want successful fcfs", cmp.Rows[0])
	}
	wantErr := map[model.Policy]string{
		model.PolicyMLQ:      "queue configuration",
		model.PolicyPriority: "priority",
		model.PolicyRR:       "quantum",
	}
	for _, row := range cmp.Rows[1:] {
		if row.Metrics != nil {
			t.Errorf("row %s has metrics despite failing", row.Policy)
		}
		if !strings.Contains(row.Error, wantErr[row.Policy]) {
			t.Errorf("row %s error = %q, want mention of %q", row.Policy, row.Error, wantErr[row.Policy])
		}
	}
	// Failed rows keep request order.
	if cmp.Rows[1].Policy != model.PolicyMLQ || cmp.Rows[2].Policy != model.PolicyPriority || cmp.Rows[3].Policy != model.PolicyRR {
		t.Errorf("failed row order = %s, %s, %s", cmp.Rows[1].Policy, cmp.Rows[2].Policy, cmp.Rows[3].Policy)
	}
}

func TestRun_TiesKeepRequestOrder(t *testing.T) {
	// One process: every policy produces the same schedule.
	req := Request{
		Processes: []model.Process{{ID: 1, BurstTime: 4}},
		Policies:  []model.Policy{model.PolicySJF, model.PolicyFCFS, model.PolicySJF, model.PolicySRTF},
	}
	cmp, err := Run(context.Background(), req, Config{Workers: 2}, quietLogger())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var got []model.Policy
	for _, row := range cmp.Rows {
		got = append(got, row.Policy)
	}
	want := []model.Policy{model.PolicySJF, model.PolicyFCFS, model.PolicySJF, model.PolicySRTF}
	if len(got) != len(want) {
		t.Fatalf("rows = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rows = %v, want %v", got, want)
		}
	}
}

func TestRun_LogsWorkerBound(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	if _, err := Run(context.Background(), Request{Processes: workload()}, Config{Workers: 2}, logger); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "comparing policies") || !strings.Contains(out, "workers=2") || !strings.Contains(out, "component=compare") {
		t.Errorf("expected worker bound in log, got:\n%s", out)
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Request{Processes: workload()}, Config{Workers: 1}, quietLogger())
	if err == nil {
		t.Fatal("expected context error")
	}
}

func TestSemaphore_LimitsConcurrency(t *testing.T) {
	sem := NewSemaphore(3)

	var maxConcurrent int32
	var current int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !sem.Acquire(context.Background()) {
				t.Error("Acquire failed unexpectedly")
				return
			}
			c := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&maxConcurrent)
				if c <= old || atomic.CompareAndSwapInt32(&maxConcurrent, old, c) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			sem.Release()
		}()
	}
	wg.Wait()

	if maxConcurrent > 3 {
		t.Errorf("max concurrent %d exceeded semaphore limit 3", maxConcurrent)
	}
	if sem.Capacity() != 3 {
		t.Errorf("Capacity() = %d, want 3", sem.Capacity())
	}
}

func TestSemaphore_Nil(t *testing.T) {
	var sem *Semaphore
	if !sem.Acquire(context.Background()) {
		t.Error("nil semaphore Acquire should return true")
	}
	sem.Release()
	if sem.Capacity() != 0 {
		t.Errorf("nil semaphore capacity should be 0, got %d", sem.Capacity())
	}
	if NewSemaphore(0) != nil {
		t.Error("NewSemaphore(0) should be nil")
	}
}

func TestSemaphore_ContextCancellation(t *testing.T) {
	sem := NewSemaphore(1)
	sem.Acquire(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if sem.Acquire(ctx) {
		t.Error("Acquire should fail on a cancelled context when full")
	}
}
