package sqlite

import (
	"database/sql"

	"datasplit/internal/domain"
	"datasplit/internal/ports"
)

// journalTx implements ports.JournalTx
type journalTx struct {
	tx *sql.Tx
}

// Ensure journalTx implements JournalTx
var _ ports.JournalTx = (*journalTx)(nil)

// InsertRun adds a run with its planned counts
func (t *journalTx) InsertRun(run *domain.Run) error {
	c := run.Plan.Counts
	_, err := t.tx.Exec(`
		INSERT INTO runs (id, base_dir, concept, source_dir,
			train_positive, test_positive, train_negative, test_negative,
			complete, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.BaseDir, run.Concept, run.Plan.SourceDir,
		c.TrainPositive, c.TestPositive, c.TrainNegative, c.TestNegative,
		boolInt(run.Complete), run.CreatedAt.Unix())
	return err
}

// InsertMove adds one planned move
func (t *journalTx) InsertMove(runID string, seq int, move domain.Move) error {
	_, err := t.tx.Exec(`
		INSERT INTO moves (run_id, seq, source, destination, stage, label)
		VALUES (?, ?, ?, ?, ?, ?)
	`, runID, seq, move.Source, move.Destination, string(move.Bucket.Stage), string(move.Bucket.Label))
	return err
}

// Commit commits the transaction
func (t *journalTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *journalTx) Rollback() error {
	return t.tx.Rollback()
}
