package store

import (
	"context"
	"errors"
	"time"

	"github.com/me/cpusched/pkg/model"
)

// ErrNotFound is returned by mutations that target a missing run.
var ErrNotFound = errors.New("not found")

// Store defines the persistence layer for simulation runs.
type Store interface {
	// Simulation runs
	CreateRun(ctx context.Context, run *model.SimulationRun) error
	GetRun(ctx context.Context, id string) (*model.SimulationRun, error)
	ListRuns(ctx context.Context, opts model.ListOptions) ([]*model.RunSummary, int, error)
	DeleteRun(ctx context.Context, id string) error
	DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
