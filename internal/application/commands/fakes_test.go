package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"datasplit/internal/domain"
	"datasplit/internal/ports"
)

// memJournal keeps runs in memory, keyed by base dir
type memJournal struct {
	mu   sync.Mutex
	runs map[string]*domain.Run

	failMarkAfter int // fail MarkMoveApplied after this many calls when > 0
	marks         int
}

var _ ports.Journal = (*memJournal)(nil)

func newMemJournal() *memJournal {
	return &memJournal{runs: make(map[string]*domain.Run)}
}

func (j *memJournal) LoadRun(_ context.Context, baseDir string) (*domain.Run, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	run, ok := j.runs[baseDir]
	if !ok {
		return nil, nil
	}
	return cloneRun(run), nil
}

func (j *memJournal) BeginTx(context.Context) (ports.JournalTx, error) {
	return &memTx{j: j}, nil
}

func (j *memJournal) find(runID string) (*domain.Run, error) {
	for _, r := range j.runs {
		if r.ID == runID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("run %s not found", runID)
}

func (j *memJournal) MarkMoveApplied(_ context.Context, runID string, seq int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.failMarkAfter > 0 && j.marks >= j.failMarkAfter {
		return errors.New("journal unavailable")
	}
	j.marks++
	run, err := j.find(runID)
	if err != nil {
		return err
	}
	run.Applied[seq] = true
	return nil
}

func (j *memJournal) RecordNegatives(_ context.Context, runID string, stage domain.Stage, rec domain.NegativeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	run, err := j.find(runID)
	if err != nil {
		return err
	}
	run.Negatives[stage] = rec
	return nil
}

func (j *memJournal) CompleteRun(_ context.Context, runID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	run, err := j.find(runID)
	if err != nil {
		return err
	}
	run.Complete = true
	return nil
}

func (j *memJournal) DiscardRun(_ context.Context, runID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for base, r := range j.runs {
		if r.ID == runID {
			delete(j.runs, base)
		}
	}
	return nil
}

func (j *memJournal) Close() error { return nil }

type memTx struct {
	j     *memJournal
	run   *domain.Run
	moves []domain.Move
	done  bool
}

func (t *memTx) InsertRun(run *domain.Run) error {
	t.run = cloneRun(run)
	t.run.Plan.Moves = nil
	return nil
}

func (t *memTx) InsertMove(_ string, seq int, move domain.Move) error {
	if seq != len(t.moves) {
		return fmt.Errorf("move %d out of order", seq)
	}
	t.moves = append(t.moves, move)
	return nil
}

func (t *memTx) Commit() error {
	t.j.mu.Lock()
	defer t.j.mu.Unlock()
	t.run.Plan.Moves = t.moves
	t.j.runs[t.run.BaseDir] = t.run
	t.done = true
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return nil
}

func cloneRun(r *domain.Run) *domain.Run {
	c := *r
	c.Plan.Moves = append([]domain.Move(nil), r.Plan.Moves...)
	c.Applied = make(map[int]bool, len(r.Applied))
	for k, v := range r.Applied {
		c.Applied[k] = v
	}
	c.Negatives = make(map[domain.Stage]domain.NegativeRecord, len(r.Negatives))
	for k, v := range r.Negatives {
		c.Negatives[k] = v
	}
	return &c
}

// poolSource writes placeholder negatives, never more than available in total
type poolSource struct {
	available int
	calls     []int
	err       error
	prefix    string // file name prefix, "neg" when empty
}

var _ ports.NegativeSource = (*poolSource)(nil)

func (p *poolSource) Name() string { return "pool" }

func (p *poolSource) FetchNegatives(_ context.Context, concept string, count int, destDir string) (int, error) {
	p.calls = append(p.calls, count)
	if p.err != nil {
		return 0, p.err
	}
	n := min(count, p.available)
	for i := 0; i < n; i++ {
		prefix := p.prefix
		if prefix == "" {
			prefix = "neg"
		}
		name := fmt.Sprintf("%s-%d-%d.jpg", prefix, len(p.calls), i)
		if err := os.WriteFile(filepath.Join(destDir, name), []byte("neg"), 0644); err != nil {
			return i, err
		}
	}
	p.available -= n
	return n, nil
}

// recordingObserver keeps every event it sees
type recordingObserver struct {
	steps     []domain.Step
	moves     int
	skipped   int
	manifests []domain.ManifestSummary
}

func (o *recordingObserver) StepStarted(step domain.Step)            { o.steps = append(o.steps, step) }
func (o *recordingObserver) MoveApplied(domain.Move, int, int)       { o.moves++ }
func (o *recordingObserver) MoveSkipped(domain.Move, int, int)       { o.skipped++ }
func (o *recordingObserver) NegativesFetched(domain.Stage, int, int) {}
func (o *recordingObserver) ManifestWritten(s domain.ManifestSummary) {
	o.manifests = append(o.manifests, s)
}

// seedImages creates n positive images under <root>/<concept>/images/<sub>
func seedImages(t *testing.T, root, concept, sub string, n int) string {
	t.Helper()
	dir := filepath.Join(root, concept, domain.ImagesDirName, sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("img_%04d.jpg", i))
		if err := os.WriteFile(path, []byte("pos"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func countDir(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	if err != nil {
		t.Fatal(err)
	}
	return len(entries)
}

func readManifest(t *testing.T, path string) []domain.ManifestEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := domain.ParseManifest(strings.NewReader(string(data)))
	if err != nil {
		t.Fatal(err)
	}
	return entries
}
