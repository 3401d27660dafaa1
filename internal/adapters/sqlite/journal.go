package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"datasplit/internal/domain"
	"datasplit/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "1"

// Journal implements ports.Journal using SQLite
type Journal struct {
	db     *sql.DB
	dbPath string
}

// Ensure Journal implements Journal
var _ ports.Journal = (*Journal)(nil)

// NewJournal creates a new SQLite journal
func NewJournal() *Journal {
	return &Journal{}
}

// Open opens or creates the journal database at path
func (j *Journal) Open(path string) error {
	// Expand ~ in path
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	j.dbPath = path

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	j.db = db

	_, err = db.Exec(`
		PRAGMA synchronous = FULL;

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			base_dir TEXT NOT NULL UNIQUE,
			concept TEXT NOT NULL,
			source_dir TEXT NOT NULL,
			train_positive INTEGER NOT NULL,
			test_positive INTEGER NOT NULL,
			train_negative INTEGER NOT NULL,
			test_negative INTEGER NOT NULL,
			complete INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS moves (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			stage TEXT NOT NULL,
			label TEXT NOT NULL,
			applied INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, seq)
		);
		CREATE TABLE IF NOT EXISTS negatives (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			stage TEXT NOT NULL,
			requested INTEGER NOT NULL,
			fetched INTEGER NOT NULL,
			done INTEGER NOT NULL,
			PRIMARY KEY (run_id, stage)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', '` + schemaVersion + `');
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to setup journal: %w", err)
	}

	return nil
}

// Path returns the database file backing the journal
func (j *Journal) Path() string {
	return j.dbPath
}

// Close closes the database connection
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// DefaultPath returns the journal location for a data root, outside the
// dataset so that planning never writes into it
func DefaultPath(dataRoot string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	if abs, err := filepath.Abs(dataRoot); err == nil {
		dataRoot = abs
	}
	return filepath.Join(dataHome, "datasplit", hashPath(dataRoot)+".db")
}

// hashPath returns a short hash of a path
func hashPath(path string) string {
	h := sha256.Sum256([]byte(path))
	return hex.EncodeToString(h[:8])
}

// LoadRun returns the run recorded for baseDir with its full plan
func (j *Journal) LoadRun(ctx context.Context, baseDir string) (*domain.Run, error) {
	run := &domain.Run{
		Applied:   make(map[int]bool),
		Negatives: make(map[domain.Stage]domain.NegativeRecord),
	}
	var complete int
	var createdAt int64
	err := j.db.QueryRowContext(ctx, `
		SELECT id, base_dir, concept, source_dir,
			train_positive, test_positive, train_negative, test_negative,
			complete, created_at
		FROM runs WHERE base_dir = ?
	`, baseDir).Scan(
		&run.ID, &run.BaseDir, &run.Concept, &run.Plan.SourceDir,
		&run.Plan.Counts.TrainPositive, &run.Plan.Counts.TestPositive,
		&run.Plan.Counts.TrainNegative, &run.Plan.Counts.TestNegative,
		&complete, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	run.Complete = complete != 0
	run.CreatedAt = time.Unix(createdAt, 0)

	if err := j.loadMoves(ctx, run); err != nil {
		return nil, err
	}
	if err := j.loadNegatives(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (j *Journal) loadMoves(ctx context.Context, run *domain.Run) error {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, source, destination, stage, label, applied
		FROM moves WHERE run_id = ? ORDER BY seq
	`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var seq, applied int
		var m domain.Move
		var stage, label string
		if err := rows.Scan(&seq, &m.Source, &m.Destination, &stage, &label, &applied); err != nil {
			return err
		}
		if seq != len(run.Plan.Moves) {
			return fmt.Errorf("journal run %s has a gap at move %d", run.ID, len(run.Plan.Moves))
		}
		m.Bucket = domain.Bucket{Stage: domain.Stage(stage), Label: domain.Label(label)}
		run.Plan.Moves = append(run.Plan.Moves, m)
		if applied != 0 {
			run.Applied[seq] = true
		}
	}
	return rows.Err()
}

func (j *Journal) loadNegatives(ctx context.Context, run *domain.Run) error {
	rows, err := j.db.QueryContext(ctx, `
		SELECT stage, requested, fetched, done FROM negatives WHERE run_id = ?
	`, run.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var stage string
		var done int
		var rec domain.NegativeRecord
		if err := rows.Scan(&stage, &rec.Requested, &rec.Fetched, &done); err != nil {
			return err
		}
		rec.Done = done != 0
		run.Negatives[domain.Stage(stage)] = rec
	}
	return rows.Err()
}

// BeginTx starts a new transaction for recording a run
func (j *Journal) BeginTx(ctx context.Context) (ports.JournalTx, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &journalTx{tx: tx}, nil
}

// MarkMoveApplied records that a planned move has been performed
func (j *Journal) MarkMoveApplied(ctx context.Context, runID string, seq int) error {
	return j.execOne(ctx, `UPDATE moves SET applied = 1 WHERE run_id = ? AND seq = ?`, runID, seq)
}

// RecordNegatives stores the negative acquisition state of a stage
func (j *Journal) RecordNegatives(ctx context.Context, runID string, stage domain.Stage, rec domain.NegativeRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO negatives (run_id, stage, requested, fetched, done)
		VALUES (?, ?, ?, ?, ?)
	`, runID, string(stage), rec.Requested, rec.Fetched, boolInt(rec.Done))
	return err
}

// CompleteRun marks a run finished
func (j *Journal) CompleteRun(ctx context.Context, runID string) error {
	return j.execOne(ctx, `UPDATE runs SET complete = 1 WHERE id = ?`, runID)
}

// DiscardRun deletes a run; its moves and negatives cascade
func (j *Journal) DiscardRun(ctx context.Context, runID string) error {
	_, err := j.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	return err
}

// execOne runs an update that must touch exactly one row
func (j *Journal) execOne(ctx context.Context, query string, args ...any) error {
	res, err := j.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("journal update matched %d rows", n)
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
