package ports

import (
	"context"

	"datasplit/internal/domain"
)

// Journal persists split runs so an interrupted run can be resumed
// instead of re-allocated.
type Journal interface {
	// LoadRun returns the run recorded for a concept base directory, or nil
	LoadRun(ctx context.Context, baseDir string) (*domain.Run, error)

	// BeginTx starts a transaction for recording a new run
	BeginTx(ctx context.Context) (JournalTx, error)

	// Progress updates
	MarkMoveApplied(ctx context.Context, runID string, seq int) error
	RecordNegatives(ctx context.Context, runID string, stage domain.Stage, rec domain.NegativeRecord) error
	CompleteRun(ctx context.Context, runID string) error

	// DiscardRun removes a run and its plan
	DiscardRun(ctx context.Context, runID string) error

	Close() error
}

// JournalTx records a run and its plan atomically
type JournalTx interface {
	InsertRun(run *domain.Run) error
	InsertMove(runID string, seq int, move domain.Move) error

	Commit() error
	Rollback() error
}
