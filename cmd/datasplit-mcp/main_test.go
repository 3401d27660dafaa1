package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/server"

	"datasplit/internal/config"
)

func TestRun_ClosesJournalWhenServeFails(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "journal.db")
	t.Setenv(config.EnvJournal, journalPath)
	stopped := errors.New("stdin closed")

	walOpen := false
	err := run([]string{"--data-root", t.TempDir()}, func(*server.MCPServer, ...server.StdioOption) error {
		_, statErr := os.Stat(journalPath + "-wal")
		walOpen = statErr == nil
		return stopped
	})

	if !errors.Is(err, stopped) {
		t.Fatalf("run() error = %v, want the serve error", err)
	}
	if !walOpen {
		t.Fatal("journal was not open while serving")
	}
	if _, statErr := os.Stat(journalPath + "-wal"); !os.IsNotExist(statErr) {
		t.Error("journal still open after run returned")
	}
}

func TestRun_InvalidFlags(t *testing.T) {
	err := run([]string{"--no-such-flag"}, func(*server.MCPServer, ...server.StdioOption) error {
		t.Fatal("serve called despite bad flags")
		return nil
	})
	if err == nil {
		t.Fatal("expected a flag error")
	}
}
