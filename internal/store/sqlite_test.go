package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/me/cpusched/pkg/model"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
	st, err := NewSQLiteStore(":memory:", logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRun(id string, policy model.Policy, createdAt time.Time) *model.SimulationRun {
	req := model.SimulationRequest{
		Policy:  policy,
		Label:   "lecture",
		Quantum: 2,
		Processes: []model.Process{
			{ID: 1, ArrivalTime: 0, BurstTime: 5, Priority: model.IntPtr(2)},
			{ID: 2, ArrivalTime: 1, BurstTime: 3},
		},
	}
	return &model.SimulationRun{
		ID:      id,
		Label:   req.Label,
		Policy:  policy,
		Request: req,
		Result: &model.Result{
			Policy: policy,
			Schedule: []model.ScheduleEntry{
				{ProcessID: 1, ArrivalTime: 0, BurstTime: 5, StartTime: 0, CompletionTime: 5, TurnaroundTime: 5, Priority: model.IntPtr(2)},
				{ProcessID: 2, ArrivalTime: 1, BurstTime: 3, StartTime: 5, CompletionTime: 8, TurnaroundTime: 7, WaitingTime: 4, ResponseTime: 4},
			},
			Timeline: []model.Segment{{ProcessID: 1, StartTime: 0, EndTime: 5}, {ProcessID: 2, StartTime: 5, EndTime: 8}},
			Segments: []model.Segment{{ProcessID: 1, StartTime: 0, EndTime: 5}, {ProcessID: 2, StartTime: 5, EndTime: 8}},
			Metrics:  &model.Metrics{AvgTurnaroundTime: 6, AvgWaitingTime: 2, Makespan: 8, BusyTime: 8, CPUUtilization: 1, ContextSwitches: 1},
		},
		CreatedAt: createdAt,
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	st := testStore(t)
	// Migrate a second time; the label column already exists.
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestCreateAndGetRun(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	run := sampleRun("sim_1", model.PolicyFCFS, now)

	if err := st.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	got, err := st.GetRun(ctx, "sim_1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got == nil {
		t.Fatal("GetRun returned nil")
	}
	if got.Label != "lecture" || got.Policy != model.PolicyFCFS {
		t.Errorf("Label/Policy = %q/%q", got.Label, got.Policy)
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
	if got.Request.Quantum != 2 || len(got.Request.Processes) != 2 {
		t.Errorf("Request = %+v", got.Request)
	}
	if p := got.Request.Processes[0].Priority; p == nil || *p != 2 {
		t.Errorf("process 1 priority lost: %v", p)
	}
	if got.Request.Processes[1].Priority != nil {
		t.Error("process 2 priority should stay unset")
	}
	if got.Result == nil || got.Result.Metrics == nil {
		t.Fatal("Result or Metrics missing")
	}
	if len(got.Result.Schedule) != 2 || got.Result.Schedule[1].WaitingTime != 4 {
		t.Errorf("Schedule = %+v", got.Result.Schedule)
	}
	if got.Result.Metrics.Makespan != 8 || got.Result.Metrics.AvgWaitingTime != 2 {
		t.Errorf("Metrics = %+v", got.Result.Metrics)
	}
}

func TestCreateRun_DuplicateID(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	run := sampleRun("sim_dup", model.PolicySJF, time.Now())
	if err := st.CreateRun(ctx, run); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.CreateRun(ctx, run); err == nil {
		t.Error("expected error inserting a duplicate id")
	}
}

func TestGetRun_NotFound(t *testing.T) {
	st := testStore(t)
	got, err := st.GetRun(context.Background(), "sim_nonexistent")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestListRuns_Empty(t *testing.T) {
	st := testStore(t)
	runs, total, err := st.ListRuns(context.Background(), model.DefaultListOptions())
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if total != 0 || len(runs) != 0 {
		t.Errorf("total = %d, len = %d, want 0, 0", total, len(runs))
	}
}

func TestListRuns_PaginationAndOrder(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		run := sampleRun(fmt.Sprintf("sim_%d", i), model.PolicyRR, base.Add(time.Duration(i)*time.Minute))
		if err := st.CreateRun(ctx, run); err != nil {
			t.Fatalf("CreateRun %d: %v", i, err)
		}
	}

	runs, total, err := st.ListRuns(ctx, model.ListOptions{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(runs) != 2 {
		t.Fatalf("len = %d, want 2", len(runs))
	}
	// Newest first; offset 1 skips sim_4.
	if runs[0].ID != "sim_3" || runs[1].ID != "sim_2" {
		t.Errorf("ids = %s, %s, want sim_3, sim_2", runs[0].ID, runs[1].ID)
	}
	sum := runs[0]
	if sum.ProcessCount != 2 || sum.Makespan != 8 || sum.AvgWaitingTime != 2 || sum.AvgTurnaroundTime != 6 {
		t.Errorf("summary = %+v", sum)
	}
	if !sum.CreatedAt.Equal(base.Add(3 * time.Minute)) {
		t.Errorf("CreatedAt = %v", sum.CreatedAt)
	}
}

func TestListRuns_PolicyFilter(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	now := time.Now()
	for i, p := range []model.Policy{model.PolicyFCFS, model.PolicySRTF, model.PolicyFCFS} {
		if err := st.CreateRun(ctx, sampleRun(fmt.Sprintf("sim_%d", i), p, now)); err != nil {
			t.Fatalf("CreateRun: %v", err)
		}
	}

	runs, total, err := st.ListRuns(ctx, model.ListOptions{Limit: 10, Policy: model.PolicyFCFS})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if total != 2 || len(runs) != 2 {
		t.Errorf("total = %d, len = %d, want 2, 2", total, len(runs))
	}
	for _, r := range runs {
		if r.Policy != model.PolicyFCFS {
			t.Errorf("run %s has policy %s", r.ID, r.Policy)
		}
	}
}

func TestDeleteRun(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	if err := st.CreateRun(ctx, sampleRun("sim_del", model.PolicyFCFS, time.Now())); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := st.DeleteRun(ctx, "sim_del"); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	got, _ := st.GetRun(ctx, "sim_del")
	if got != nil {
		t.Error("run still present after delete")
	}
}

func TestDeleteRun_NotFound(t *testing.T) {
	st := testStore(t)
	err := st.DeleteRun(context.Background(), "sim_nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRunsBefore(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	cutoff := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// Sub-second offsets on both sides of the cutoff.
	times := map[string]time.Time{
		"sim_old":    cutoff.Add(-48 * time.Hour),
		"sim_recent": cutoff.Add(-500 * time.Millisecond),
		"sim_exact":  cutoff,
		"sim_new":    cutoff.Add(1500 * time.Millisecond),
	}
	for id, ts := range times {
		if err := st.CreateRun(ctx, sampleRun(id, model.PolicySJF, ts)); err != nil {
			t.Fatalf("CreateRun %s: %v", id, err)
		}
	}

	n, err := st.DeleteRunsBefore(ctx, cutoff)
	if err != nil {
		t.Fatalf("DeleteRunsBefore: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}
	for id, wantPresent := range map[string]bool{"sim_old": false, "sim_recent": false, "sim_exact": true, "sim_new": true} {
		got, err := st.GetRun(ctx, id)
		if err != nil {
			t.Fatalf("GetRun %s: %v", id, err)
		}
		if (got != nil) != wantPresent {
			t.Errorf("%s present = %v, want %v", id, got != nil, wantPresent)
		}
	}
}
