package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// Errors reported by idempotent moves
var (
	ErrDestinationExists = errors.New("destination already exists")
	ErrSourceMissing     = errors.New("source and destination both missing")
)

// Move relocates one positive image into a bucket
type Move struct {
	Source      string
	Destination string
	Bucket      Bucket
}

// Plan is the full allocation of a positive snapshot, computed before any mutation
type Plan struct {
	SourceDir string
	Counts    Counts
	Moves     []Move
}

// BuildPlan assigns the first counts.TrainPositive snapshot entries to
// train/positive and the rest to test/positive, keeping snapshot order.
func BuildPlan(layout Layout, sourceDir string, snapshot []string, counts Counts) (Plan, error) {
	if counts.TotalPositive() != len(snapshot) {
		return Plan{}, fmt.Errorf("counts cover %d positives but snapshot has %d", counts.TotalPositive(), len(snapshot))
	}

	moves := make([]Move, 0, len(snapshot))
	for i, name := range snapshot {
		bucket := TrainPositive
		if i >= counts.TrainPositive {
			bucket = TestPositive
		}
		moves = append(moves, Move{
			Source:      filepath.Join(sourceDir, name),
			Destination: filepath.Join(layout.BucketDir(bucket), name),
			Bucket:      bucket,
		})
	}

	return Plan{
		SourceDir: sourceDir,
		Counts:    counts,
		Moves:     moves,
	}, nil
}

// NegativeRecord tracks negative acquisition for one stage
type NegativeRecord struct {
	Requested int
	Fetched   int
	Done      bool
}

// Run is the journaled state of one split for one concept
type Run struct {
	ID        string
	Concept   string
	BaseDir   string
	Plan      Plan
	Applied   map[int]bool
	Negatives map[Stage]NegativeRecord
	Complete  bool
	CreatedAt time.Time
}

// NewRun starts a run record for a plan
func NewRun(id, concept string, layout Layout, plan Plan, now time.Time) *Run {
	return &Run{
		ID:        id,
		Concept:   concept,
		BaseDir:   layout.Base,
		Plan:      plan,
		Applied:   make(map[int]bool),
		Negatives: make(map[Stage]NegativeRecord),
		CreatedAt: now,
	}
}

// PendingMoves returns the number of plan entries not yet marked applied
func (r *Run) PendingMoves() int {
	n := 0
	for i := range r.Plan.Moves {
		if !r.Applied[i] {
			n++
		}
	}
	return n
}
