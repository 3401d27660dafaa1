package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"datasplit/internal/application"
	"datasplit/internal/domain"
	"datasplit/internal/ports"
)

// SplitResult contains the result of a split run
type SplitResult struct {
	RunID      string
	Concept    string
	Resumed    bool
	Counts     domain.Counts
	Shortfalls []application.NegativeFetchShortfall
	Manifests  []domain.ManifestSummary
	Message    string
}

// Manifest returns the summary written for a stage
func (r *SplitResult) Manifest(stage domain.Stage) (domain.ManifestSummary, bool) {
	for _, m := range r.Manifests {
		if m.Stage == stage {
			return m, true
		}
	}
	return domain.ManifestSummary{}, false
}

// SplitOption configures a SplitCommand
type SplitOption func(*SplitCommand)

// WithObserver sets the progress observer
func WithObserver(o ports.Observer) SplitOption {
	return func(c *SplitCommand) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) SplitOption {
	return func(c *SplitCommand) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the clock used to stamp new runs
func WithClock(now func() time.Time) SplitOption {
	return func(c *SplitCommand) {
		if now != nil {
			c.now = now
		}
	}
}

// SplitCommand allocates positives into train/test buckets, fills the
// negative buckets and writes one manifest per stage.
type SplitCommand struct {
	repo      ports.DatasetRepository
	negatives ports.NegativeSource
	journal   ports.Journal
	observer  ports.Observer
	logger    *slog.Logger
	now       func() time.Time
	SplitRequest
}

// NewSplitCommand creates a new SplitCommand
func NewSplitCommand(repo ports.DatasetRepository, negatives ports.NegativeSource, journal ports.Journal, req SplitRequest, opts ...SplitOption) *SplitCommand {
	c := &SplitCommand{
		repo:         repo,
		negatives:    negatives,
		journal:      journal,
		observer:     application.NopObserver{},
		logger:       slog.Default(),
		now:          time.Now,
		SplitRequest: req,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs the split, resuming a journaled run for the same concept
// when one exists
func (c *SplitCommand) Execute(ctx context.Context) (*SplitResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	layout, err := resolveLayout(c.DataRoot, c.Concept)
	if err != nil {
		return nil, err
	}

	c.observer.StepStarted(domain.StepResolveSource)
	run, err := c.loadRun(ctx, layout)
	if err != nil {
		return nil, err
	}

	resumed := run != nil
	if run == nil {
		if run, err = c.startRun(ctx, layout); err != nil {
			return nil, err
		}
	} else {
		c.logger.Info("resuming split",
			"run", run.ID,
			"concept", run.Concept,
			"pending_moves", run.PendingMoves(),
			"complete", run.Complete)
	}

	dirs := append(layout.BucketDirs(), layout.CategoriesDir())
	if err := c.repo.EnsureDirs(dirs...); err != nil {
		return nil, err
	}

	if run.Complete {
		c.warnUnplannedImages(run)
	} else {
		if err := c.allocate(ctx, run); err != nil {
			return nil, err
		}
		if err := c.verifyAllocation(run); err != nil {
			return nil, err
		}
	}

	shortfalls, err := c.fetchNegatives(ctx, run, layout)
	if err != nil {
		return nil, err
	}

	manifests, err := c.writeManifests(layout)
	if err != nil {
		return nil, err
	}

	if !run.Complete {
		if err := c.journal.CompleteRun(ctx, run.ID); err != nil {
			return nil, fmt.Errorf("failed to complete run: %w", err)
		}
		run.Complete = true
	}
	c.observer.StepStarted(domain.StepDone)

	return &SplitResult{
		RunID:      run.ID,
		Concept:    run.Concept,
		Resumed:    resumed,
		Counts:     run.Plan.Counts,
		Shortfalls: shortfalls,
		Manifests:  manifests,
		Message:    splitMessage(run, resumed, manifests, shortfalls),
	}, nil
}

// loadRun returns the journaled run for the layout. A run whose bucket
// directories are all gone was abandoned and is discarded.
func (c *SplitCommand) loadRun(ctx context.Context, layout domain.Layout) (*domain.Run, error) {
	run, err := c.journal.LoadRun(ctx, layout.Base)
	if err != nil {
		return nil, fmt.Errorf("failed to load journal: %w", err)
	}
	if run == nil {
		return nil, nil
	}

	for _, dir := range layout.BucketDirs() {
		ok, err := c.repo.DirExists(dir)
		if err != nil {
			return nil, err
		}
		if ok {
			return run, nil
		}
	}

	c.logger.Warn("discarding stale journal run", "run", run.ID, "base", layout.Base)
	if err := c.journal.DiscardRun(ctx, run.ID); err != nil {
		return nil, fmt.Errorf("failed to discard stale run: %w", err)
	}
	return nil, nil
}

// startRun plans a fresh split and records it before anything moves
func (c *SplitCommand) startRun(ctx context.Context, layout domain.Layout) (*domain.Run, error) {
	if err := c.refusePopulatedBuckets(layout); err != nil {
		return nil, err
	}

	c.observer.StepStarted(domain.StepPlan)
	plan, err := buildPlan(c.repo, layout, c.Ratios)
	if err != nil {
		return nil, err
	}

	run := domain.NewRun(uuid.NewString(), c.Concept, layout, plan, c.now())
	if err := c.recordRun(ctx, run); err != nil {
		return nil, err
	}

	c.logger.Info("planned split",
		"run", run.ID,
		"concept", run.Concept,
		"source", plan.SourceDir,
		"counts", plan.Counts.String())
	return run, nil
}

// refusePopulatedBuckets rejects a dataset that was split without a journal record
func (c *SplitCommand) refusePopulatedBuckets(layout domain.Layout) error {
	files := 0
	for _, dir := range layout.BucketDirs() {
		paths, err := c.repo.ListFiles(dir)
		if err != nil {
			return err
		}
		files += len(paths)
	}
	if files > 0 {
		return &application.AlreadyProcessedError{Dir: layout.ImagesDir(), Files: files}
	}
	return nil
}

func (c *SplitCommand) recordRun(ctx context.Context, run *domain.Run) error {
	tx, err := c.journal.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin journal transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.InsertRun(run); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	for seq, move := range run.Plan.Moves {
		if err := tx.InsertMove(run.ID, seq, move); err != nil {
			return fmt.Errorf("failed to record move %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// allocate applies every pending move. Moves already applied by an
// interrupted run are reported as skipped.
func (c *SplitCommand) allocate(ctx context.Context, run *domain.Run) error {
	c.observer.StepStarted(domain.StepAllocate)

	total := len(run.Plan.Moves)
	moved := 0
	for seq, move := range run.Plan.Moves {
		if run.Applied[seq] {
			c.observer.MoveSkipped(move, seq+1, total)
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		ok, err := c.repo.Move(move.Source, move.Destination)
		if err != nil {
			return moveError(move, err)
		}
		if err := c.journal.MarkMoveApplied(ctx, run.ID, seq); err != nil {
			return fmt.Errorf("failed to record move %d: %w", seq, err)
		}
		run.Applied[seq] = true

		if ok {
			moved++
			c.observer.MoveApplied(move, seq+1, total)
		} else {
			c.observer.MoveSkipped(move, seq+1, total)
		}
	}

	c.logger.Info("allocated positives", "moved", moved, "planned", total)
	return nil
}

func moveError(move domain.Move, err error) error {
	switch {
	case errors.Is(err, domain.ErrDestinationExists):
		return &application.MoveError{
			Source:      move.Source,
			Destination: move.Destination,
			Reason:      "destination already holds a file",
		}
	case errors.Is(err, domain.ErrSourceMissing):
		return &application.MoveError{
			Source:      move.Source,
			Destination: move.Destination,
			Reason:      "image is missing from both source and bucket",
		}
	}
	return fmt.Errorf("failed to move %s: %w", move.Source, err)
}

// verifyAllocation checks that the source was emptied. A file that
// appeared after the snapshot is not in the plan and is left behind.
func (c *SplitCommand) verifyAllocation(run *domain.Run) error {
	remaining, err := c.repo.ListFiles(run.Plan.SourceDir)
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return &application.AllocationMismatchError{Dir: run.Plan.SourceDir, Remaining: remaining}
	}
	return nil
}

func (c *SplitCommand) warnUnplannedImages(run *domain.Run) {
	remaining, err := c.repo.ListFiles(run.Plan.SourceDir)
	if err != nil || len(remaining) == 0 {
		return
	}
	c.logger.Warn("source holds images outside the completed split",
		"dir", run.Plan.SourceDir,
		"images", len(remaining))
}

// fetchNegatives tops up each negative bucket to its quota. A stage whose
// fetch already finished is not fetched again.
func (c *SplitCommand) fetchNegatives(ctx context.Context, run *domain.Run, layout domain.Layout) ([]application.NegativeFetchShortfall, error) {
	c.observer.StepStarted(domain.StepFetchNegatives)

	var shortfalls []application.NegativeFetchShortfall
	for _, stage := range domain.Stages {
		rec, ok := run.Negatives[stage]
		if !ok || !rec.Done {
			var err error
			if rec, err = c.fetchStage(ctx, run, layout, stage); err != nil {
				return nil, err
			}
			run.Negatives[stage] = rec
		}

		c.observer.NegativesFetched(stage, rec.Requested, rec.Fetched)
		if rec.Fetched < rec.Requested {
			shortfall := application.NegativeFetchShortfall{
				Stage:     stage,
				Requested: rec.Requested,
				Fetched:   rec.Fetched,
			}
			c.logger.Warn("negative fetch shortfall",
				"stage", stage,
				"requested", rec.Requested,
				"fetched", rec.Fetched,
				"missing", shortfall.Missing())
			shortfalls = append(shortfalls, shortfall)
		}
	}
	return shortfalls, nil
}

// fetchStage asks the negative source for whatever the bucket still lacks.
// The recorded count is what is on disk afterwards, not what the source claims.
func (c *SplitCommand) fetchStage(ctx context.Context, run *domain.Run, layout domain.Layout, stage domain.Stage) (domain.NegativeRecord, error) {
	bucket := domain.Bucket{Stage: stage, Label: domain.LabelNegative}
	dir := layout.BucketDir(bucket)
	requested := run.Plan.Counts.Quota(bucket)

	present, err := c.countFiles(dir)
	if err != nil {
		return domain.NegativeRecord{}, err
	}

	if need := requested - present; need > 0 {
		fetched, err := c.negatives.FetchNegatives(ctx, run.Concept, need, dir)
		if err != nil {
			return domain.NegativeRecord{}, fmt.Errorf("failed to fetch %s negatives from %s: %w", stage, c.negatives.Name(), err)
		}
		c.logger.Info("fetched negatives",
			"stage", stage,
			"source", c.negatives.Name(),
			"requested", need,
			"fetched", fetched)

		if present, err = c.countFiles(dir); err != nil {
			return domain.NegativeRecord{}, err
		}
	}

	rec := domain.NegativeRecord{Requested: requested, Fetched: present, Done: true}
	if err := c.journal.RecordNegatives(ctx, run.ID, stage, rec); err != nil {
		return domain.NegativeRecord{}, fmt.Errorf("failed to record %s negatives: %w", stage, err)
	}
	return rec, nil
}

func (c *SplitCommand) countFiles(dir string) (int, error) {
	paths, err := c.repo.ListFiles(dir)
	if err != nil {
		return 0, err
	}
	return len(paths), nil
}

// writeManifests rewrites both manifests from the bucket contents,
// positives before negatives
func (c *SplitCommand) writeManifests(layout domain.Layout) ([]domain.ManifestSummary, error) {
	c.observer.StepStarted(domain.StepWriteManifests)

	summaries := make([]domain.ManifestSummary, 0, len(domain.Stages))
	for _, stage := range domain.Stages {
		positives, err := c.repo.ListFiles(layout.BucketDir(domain.Bucket{Stage: stage, Label: domain.LabelPositive}))
		if err != nil {
			return nil, err
		}
		negatives, err := c.repo.ListFiles(layout.BucketDir(domain.Bucket{Stage: stage, Label: domain.LabelNegative}))
		if err != nil {
			return nil, err
		}

		summary := domain.ManifestSummary{
			Stage:    stage,
			Path:     layout.ManifestPath(stage),
			Positive: len(positives),
			Negative: len(negatives),
		}
		data, err := formatManifest(summary, positives, negatives)
		if err != nil {
			return nil, err
		}
		if err := c.repo.WriteFileAtomic(summary.Path, data); err != nil {
			return nil, err
		}
		if err := c.verifyManifest(summary); err != nil {
			return nil, err
		}

		c.logger.Info("wrote manifest",
			"stage", stage,
			"path", summary.Path,
			"positive", summary.Positive,
			"negative", summary.Negative)
		c.observer.ManifestWritten(summary)
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// formatManifest renders the manifest and checks it parses back to one
// entry per bucket file before anything reaches disk
func formatManifest(summary domain.ManifestSummary, positives, negatives []string) ([]byte, error) {
	for _, path := range append(append([]string(nil), positives...), negatives...) {
		if err := domain.CheckManifestPath(path); err != nil {
			return nil, &application.InvalidImageNameError{Path: path}
		}
	}
	data := domain.FormatManifest(domain.BuildManifest(positives, negatives))
	if err := checkManifest(summary, data); err != nil {
		return nil, err
	}
	return data, nil
}

// verifyManifest re-reads a written manifest and checks it lists every bucket file
func (c *SplitCommand) verifyManifest(summary domain.ManifestSummary) error {
	data, err := c.repo.ReadFile(summary.Path)
	if err != nil {
		return err
	}
	return checkManifest(summary, data)
}

func checkManifest(summary domain.ManifestSummary, data []byte) error {
	entries, err := domain.ParseManifest(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", summary.Path, err)
	}
	if len(entries) != summary.Lines() {
		return &application.ManifestMismatchError{
			Stage: summary.Stage,
			Lines: len(entries),
			Files: summary.Lines(),
		}
	}
	return nil
}

func splitMessage(run *domain.Run, resumed bool, manifests []domain.ManifestSummary, shortfalls []application.NegativeFetchShortfall) string {
	var b strings.Builder
	verb := "Split"
	if resumed {
		verb = "Resumed split of"
	}
	fmt.Fprintf(&b, "%s %s: %s", verb, run.Concept, run.Plan.Counts)
	for _, m := range manifests {
		fmt.Fprintf(&b, "\n  %s (%d lines)", m.Path, m.Lines())
	}
	for _, s := range shortfalls {
		fmt.Fprintf(&b, "\n  warning: %s", s.Error())
	}
	return b.String()
}
