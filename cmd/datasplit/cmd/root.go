package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"datasplit/internal/adapters/editor"
	"datasplit/internal/adapters/metrics"
	"datasplit/internal/adapters/tui"
	"datasplit/internal/adapters/tui/views"
	"datasplit/internal/application"
	"datasplit/internal/application/commands"
	"datasplit/internal/bootstrap"
	"datasplit/internal/config"
	"datasplit/internal/domain"
	"datasplit/internal/logging"
	"datasplit/internal/ports"
)

type options struct {
	configPath string

	wnid        string
	dataRoot    string
	trainToTest domain.Ratio
	negTrain    domain.Ratio
	negTest     domain.Ratio
	negatives   string
	journal     string
	metricsFile string
	logLevel    string

	dryRun      bool
	interactive bool
	review      bool
}

// NewRootCmd builds the datasplit command
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(opts *options) *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "datasplit",
		Short: "Split a concept's images into detector training and test sets",
		Long: `datasplit prepares the dataset of a binary detector for one ImageNet concept.

Positive images under <data-root>/<wnid>/images/cropped (preferred) or
images/all are moved into train/positive and test/positive. Negatives are
fetched into train/negative and test/negative, and train.txt and test.txt
list every image with its label (1 positive, 0 negative).

An interrupted split resumes where it stopped when run again.

Examples:
  datasplit --wnid n07840804 --dry-run
  datasplit --data-root data/imagenet --negatives localpool
  datasplit --interactive --review`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	f.StringVar(&opts.wnid, "wnid", defaults.WNID, "WordNet concept ID of the positive class")
	f.StringVar(&opts.dataRoot, "data-root", defaults.DataRoot, "directory holding one folder per concept")
	opts.trainToTest = defaults.TrainToTestRatio
	f.Var(&opts.trainToTest, "train-to-test-ratio", "training positives per test positive")
	opts.negTrain = defaults.NegativeToPositiveTrainRatio
	f.Var(&opts.negTrain, "negative-to-positive-train-ratio", "negatives per positive in train")
	opts.negTest = defaults.NegativeToPositiveTestRatio
	f.Var(&opts.negTest, "negative-to-positive-test-ratio", "negatives per positive in test")
	f.StringVar(&opts.negatives, "negatives", defaults.Negatives.Kind, "negative source: none, localpool, command or http")
	f.StringVar(&opts.journal, "journal", "", "resume journal path (default: per data root under $XDG_DATA_HOME/datasplit)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus text metrics to this file")
	f.StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "debug, info, warn or error")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the allocation without touching the dataset")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "show progress in a terminal UI")
	f.BoolVar(&opts.review, "review", false, "open train.txt in $EDITOR after the split")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "interactive")
	cmd.MarkFlagsMutuallyExclusive("dry-run", "review")

	return cmd
}

// Execute runs the root command and exits 1 on error
func Execute(ctx context.Context) {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "datasplit: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the config file, the environment and the
// flags the user set, in that order
func loadConfig(flags *pflag.FlagSet, opts *options) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadFromFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	overrides := map[string]func(){
		"wnid":                             func() { cfg.WNID = opts.wnid },
		"data-root":                        func() { cfg.DataRoot = opts.dataRoot },
		"train-to-test-ratio":              func() { cfg.TrainToTestRatio = opts.trainToTest },
		"negative-to-positive-train-ratio": func() { cfg.NegativeToPositiveTrainRatio = opts.negTrain },
		"negative-to-positive-test-ratio":  func() { cfg.NegativeToPositiveTestRatio = opts.negTest },
		"negatives":                        func() { cfg.Negatives.Kind = opts.negatives },
		"journal":                          func() { cfg.JournalPath = opts.journal },
		"metrics-file":                     func() { cfg.MetricsFile = opts.metricsFile },
		"log-level":                        func() { cfg.LogLevel = opts.logLevel },
	}
	for name, apply := range overrides {
		if flags.Changed(name) {
			apply()
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd.Flags(), opts)
	if err != nil {
		return err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}

	deps, err := bootstrap.Build(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if opts.dryRun {
		result, err := commands.NewPlanCommand(deps.Repo, deps.Request).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result.Message)
		return nil
	}

	recorder := metrics.NewRecorder()
	split := func(ctx context.Context, obs ports.Observer) (*commands.SplitResult, error) {
		return commands.NewSplitCommand(deps.Repo, deps.Negatives, deps.Journal, deps.Request,
			commands.WithObserver(application.MultiObserver{recorder, obs}),
			commands.WithLogger(logger),
		).Execute(ctx)
	}

	var result *commands.SplitResult
	if opts.interactive {
		result, err = runInteractive(ctx, cfg, split)
	} else {
		result, err = split(ctx, nil)
	}

	writeMetrics(logger, recorder, cfg.MetricsFile)

	if err != nil {
		return err
	}

	if opts.interactive {
		fmt.Fprintln(out, views.RenderSummary(result))
	} else {
		fmt.Fprintln(out, result.Message)
	}

	if opts.review {
		return review(result)
	}
	return nil
}

func runInteractive(ctx context.Context, cfg *config.Config, split tui.SplitFunc) (*commands.SplitResult, error) {
	dataRoot, err := filepath.Abs(cfg.DataRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data root: %w", err)
	}
	layout, err := domain.NewLayout(dataRoot, cfg.WNID)
	if err != nil {
		return nil, err
	}
	result, err := tui.Run(ctx, layout, split, editor.NewOpener())
	if err == nil && result == nil {
		return nil, errors.New("split interrupted")
	}
	return result, err
}

func review(result *commands.SplitResult) error {
	train, ok := result.Manifest(domain.StageTrain)
	if !ok {
		return errors.New("no train manifest to review")
	}
	var reviewer ports.ManifestReviewer = editor.NewOpener()
	return reviewer.OpenManifest(train.Path, views.FirstNegativeLine(train))
}

func writeMetrics(logger *slog.Logger, recorder *metrics.Recorder, path string) {
	if path == "" {
		return
	}
	if err := recorder.WriteTextfile(path); err != nil {
		logger.Warn("metrics not written", "path", path, "error", err)
		return
	}
	logger.Debug("metrics written", "path", path)
}
