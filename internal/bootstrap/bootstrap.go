// Package bootstrap assembles the adapters shared by the datasplit binaries
// from a validated configuration.
package bootstrap

import (
	"fmt"
	"log/slog"
	"net/http"

	"datasplit/internal/adapters/filesystem"
	"datasplit/internal/adapters/negatives"
	"datasplit/internal/adapters/sqlite"
	"datasplit/internal/application/commands"
	"datasplit/internal/config"
	"datasplit/internal/ports"
)

// Deps holds the wired adapters for one data root
type Deps struct {
	Repo      *filesystem.Repository
	Negatives ports.NegativeSource
	Journal   *sqlite.Journal
	Request   commands.SplitRequest
}

// Build wires the repository, negative source and journal. Close the
// returned Deps to release the journal.
func Build(cfg *config.Config, logger *slog.Logger) (*Deps, error) {
	source, err := NegativeSource(cfg, logger)
	if err != nil {
		return nil, err
	}

	journalPath := cfg.JournalPath
	if journalPath == "" {
		journalPath = sqlite.DefaultPath(cfg.DataRoot)
	}
	journal := sqlite.NewJournal()
	if err := journal.Open(journalPath); err != nil {
		return nil, err
	}
	logger.Debug("journal opened", "path", journal.Path())

	return &Deps{
		Repo:      filesystem.NewRepository(),
		Negatives: source,
		Journal:   journal,
		Request: commands.SplitRequest{
			Concept:  cfg.WNID,
			DataRoot: cfg.DataRoot,
			Ratios:   cfg.SplitRatios(),
		},
	}, nil
}

// Close releases the journal
func (d *Deps) Close() error {
	return d.Journal.Close()
}

// NegativeSource builds the source named by negatives.kind
func NegativeSource(cfg *config.Config, logger *slog.Logger) (ports.NegativeSource, error) {
	n := cfg.Negatives
	switch n.Kind {
	case "", config.NegativesNone:
		return negatives.None{}, nil

	case config.NegativesLocalPool:
		matcher, err := cfg.ImageMatcher()
		if err != nil {
			return nil, err
		}
		root := n.PoolRoot
		if root == "" {
			root = cfg.DataRoot
		}
		opts := []negatives.PoolOption{negatives.WithMatcher(matcher)}
		if len(n.PoolPatterns) > 0 {
			opts = append(opts, negatives.WithPatterns(n.PoolPatterns...))
		}
		return negatives.NewLocalPool(root, opts...)

	case config.NegativesCommand:
		c := negatives.NewCommand(n.Command, n.Args...)
		if !c.IsAvailable() {
			return nil, fmt.Errorf("negative fetcher %q not found", n.Command)
		}
		return c, nil

	case config.NegativesHTTP:
		return negatives.NewHTTPIndex(n.IndexURL,
			negatives.WithHTTPClient(&http.Client{Timeout: n.Timeout}),
			negatives.WithLogger(logger),
		)

	default:
		return nil, fmt.Errorf("unknown negative source %q", n.Kind)
	}
}
