// Package config provides configuration loading for datasplit.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"datasplit/internal/domain"
)

const (
	// DefaultWNID is the WordNet id for eggs
	DefaultWNID = "n07840804"
	// DefaultDataRoot is where concept directories live
	DefaultDataRoot = "data/imagenet"
)

// Environment variables consulted by ApplyEnv
const (
	EnvWNID     = "DATASPLIT_WNID"
	EnvDataRoot = "DATASPLIT_DATA_ROOT"
	EnvJournal  = "DATASPLIT_JOURNAL"
)

// Negative source kinds
const (
	NegativesNone      = "none"
	NegativesLocalPool = "localpool"
	NegativesCommand   = "command"
	NegativesHTTP      = "http"
)

// Config represents the complete datasplit configuration
type Config struct {
	WNID     string `yaml:"wnid"`
	DataRoot string `yaml:"data_root"`

	TrainToTestRatio             domain.Ratio `yaml:"train_to_test_ratio"`
	NegativeToPositiveTrainRatio domain.Ratio `yaml:"negative_to_positive_train_ratio"`
	NegativeToPositiveTestRatio  domain.Ratio `yaml:"negative_to_positive_test_ratio"`

	// ImagePatterns select which pool files the localpool negative source copies
	// (empty = jpg/jpeg/png). Positives are never filtered.
	ImagePatterns []string `yaml:"image_patterns"`

	Negatives NegativesConfig `yaml:"negatives"`

	// JournalPath is the resume journal (empty = per data root under XDG_DATA_HOME)
	JournalPath string `yaml:"journal_path"`
	// MetricsFile receives Prometheus text metrics after a run (empty = disabled)
	MetricsFile string `yaml:"metrics_file"`
	LogLevel    string `yaml:"log_level"`

	Detector DetectorConfig `yaml:"detector"`
}

// NegativesConfig selects and configures the negative image source
type NegativesConfig struct {
	Kind string `yaml:"kind"`

	// PoolRoot is the localpool tree (empty = the data root)
	PoolRoot     string   `yaml:"pool_root"`
	PoolPatterns []string `yaml:"pool_patterns"`

	// Command and Args run an external fetcher
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`

	// IndexURL lists image URLs for the http source
	IndexURL string        `yaml:"index_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// DetectorConfig carries the downstream detector's tuning constants.
// They are not used by the splitter.
type DetectorConfig struct {
	NumFrames              int     `yaml:"n_frames"`
	NumFirstFramesSkipped  int     `yaml:"num_first_frames_skipped"`
	NMSOverlapThreshold    float64 `yaml:"nms_overlap_threshold"`
	PositiveScoreThreshold float64 `yaml:"positive_prediction_score_threshold"`
	TopPercentage          float64 `yaml:"top_percentage"`
}

// DefaultConfig returns a Config with the defaults of the original pipeline
func DefaultConfig() *Config {
	ratios := domain.DefaultSplitRatios()
	return &Config{
		WNID:                         DefaultWNID,
		DataRoot:                     DefaultDataRoot,
		TrainToTestRatio:             ratios.TrainToTest,
		NegativeToPositiveTrainRatio: ratios.NegativeToPositiveTrain,
		NegativeToPositiveTestRatio:  ratios.NegativeToPositiveTest,
		Negatives: NegativesConfig{
			Kind:    NegativesNone,
			Timeout: 30 * time.Second,
		},
		LogLevel: "info",
		Detector: DetectorConfig{
			NumFrames:              7,
			NumFirstFramesSkipped:  1,
			NMSOverlapThreshold:    0.1,
			PositiveScoreThreshold: 0.7,
			TopPercentage:          0.005,
		},
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides fields from DATASPLIT_* environment variables
func (c *Config) ApplyEnv() {
	if env := os.Getenv(EnvWNID); env != "" {
		c.WNID = env
	}
	if env := os.Getenv(EnvDataRoot); env != "" {
		c.DataRoot = env
	}
	if env := os.Getenv(EnvJournal); env != "" {
		c.JournalPath = env
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if err := domain.ValidateConceptID(c.WNID); err != nil {
		return fmt.Errorf("wnid: %w", err)
	}
	if strings.TrimSpace(c.DataRoot) == "" {
		return fmt.Errorf("data_root is required")
	}
	if !c.TrainToTestRatio.IsPositive() {
		return fmt.Errorf("train_to_test_ratio must be greater than 0")
	}
	if !c.NegativeToPositiveTrainRatio.IsPositive() {
		return fmt.Errorf("negative_to_positive_train_ratio must be greater than 0")
	}
	if !c.NegativeToPositiveTestRatio.IsPositive() {
		return fmt.Errorf("negative_to_positive_test_ratio must be greater than 0")
	}
	if _, err := domain.NewImageMatcher(c.ImagePatterns); err != nil {
		return fmt.Errorf("image_patterns: %w", err)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if err := c.Negatives.validate(); err != nil {
		return err
	}
	return c.Detector.validate()
}

func (n NegativesConfig) validate() error {
	switch n.Kind {
	case NegativesNone, NegativesLocalPool:
	case NegativesCommand:
		if n.Command == "" {
			return fmt.Errorf("negatives.command is required for kind %q", n.Kind)
		}
	case NegativesHTTP:
		if n.IndexURL == "" {
			return fmt.Errorf("negatives.index_url is required for kind %q", n.Kind)
		}
	default:
		return fmt.Errorf("unknown negatives.kind %q (want none, localpool, command or http)", n.Kind)
	}
	if n.Timeout < 0 {
		return fmt.Errorf("negatives.timeout must not be negative")
	}
	return nil
}

func (d DetectorConfig) validate() error {
	if d.NumFrames <= 0 {
		return fmt.Errorf("detector.n_frames must be greater than 0")
	}
	if d.NumFirstFramesSkipped < 0 {
		return fmt.Errorf("detector.num_first_frames_skipped must not be negative")
	}
	for name, v := range map[string]float64{
		"nms_overlap_threshold":               d.NMSOverlapThreshold,
		"positive_prediction_score_threshold": d.PositiveScoreThreshold,
		"top_percentage":                      d.TopPercentage,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("detector.%s must be between 0 and 1", name)
		}
	}
	return nil
}

// SplitRatios returns the three ratios as a domain value
func (c *Config) SplitRatios() domain.SplitRatios {
	return domain.SplitRatios{
		TrainToTest:             c.TrainToTestRatio,
		NegativeToPositiveTrain: c.NegativeToPositiveTrainRatio,
		NegativeToPositiveTest:  c.NegativeToPositiveTestRatio,
	}
}

// ImageMatcher builds the matcher for ImagePatterns
func (c *Config) ImageMatcher() (domain.ImageMatcher, error) {
	return domain.NewImageMatcher(c.ImagePatterns)
}

// ParseLogLevel maps debug, info, warn and error to slog levels
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", s)
	}
	return level, nil
}
