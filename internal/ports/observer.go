package ports

import "datasplit/internal/domain"

// Observer receives progress events from a split run.
// Calls happen on the splitter's goroutine, in step order.
type Observer interface {
	StepStarted(step domain.Step)
	MoveApplied(move domain.Move, done, total int)
	// MoveSkipped reports a planned move that an earlier run already applied
	MoveSkipped(move domain.Move, done, total int)
	NegativesFetched(stage domain.Stage, requested, present int)
	ManifestWritten(summary domain.ManifestSummary)
}
