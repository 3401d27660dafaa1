package bootstrap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasplit/internal/config"
	"datasplit/internal/logging"
)

func TestNegativeSource(t *testing.T) {
	tests := []struct {
		name     string
		negs     config.NegativesConfig
		wantName string
		wantErr  bool
	}{
		{"none", config.NegativesConfig{Kind: config.NegativesNone}, "none", false},
		{"localpool", config.NegativesConfig{Kind: config.NegativesLocalPool, PoolRoot: "/pool"}, "localpool", false},
		{"bad pool pattern", config.NegativesConfig{Kind: config.NegativesLocalPool, PoolPatterns: []string{"[a"}}, "", true},
		{"http", config.NegativesConfig{Kind: config.NegativesHTTP, IndexURL: "http://index.local/list"}, "http", false},
		{"missing fetcher", config.NegativesConfig{Kind: config.NegativesCommand, Command: "/nonexistent/fetch-negatives"}, "", true},
		{"unknown", config.NegativesConfig{Kind: "ftp"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Negatives = tt.negs

			source, err := NegativeSource(cfg, logging.Discard())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, source.Name())
		})
	}
}

func TestBuild(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataRoot = t.TempDir()
	cfg.JournalPath = filepath.Join(t.TempDir(), "state", "journal.db")

	deps, err := Build(cfg, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { deps.Close() })

	assert.Equal(t, cfg.JournalPath, deps.Journal.Path())
	assert.Equal(t, cfg.WNID, deps.Request.Concept)
	assert.Equal(t, cfg.DataRoot, deps.Request.DataRoot)
	assert.NoError(t, deps.Request.Validate())
}
