package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"datasplit/internal/domain"
	"datasplit/internal/ports"
)

const namespace = "datasplit"

// Recorder implements ports.Observer by counting split progress in a
// Prometheus registry
type Recorder struct {
	registry  *prometheus.Registry
	allocated *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	requested *prometheus.CounterVec
	fetched   *prometheus.CounterVec
	shortfall *prometheus.CounterVec
	entries   *prometheus.GaugeVec
}

// Ensure Recorder implements Observer
var _ ports.Observer = (*Recorder)(nil)

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		allocated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_allocated_total",
			Help:      "Positive images placed into a bucket.",
		}, []string{"bucket"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moves_skipped_total",
			Help:      "Planned moves found already applied by an earlier run.",
		}, []string{"bucket"}),
		requested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negatives_requested_total",
			Help:      "Negative images required by the split ratios.",
		}, []string{"stage"}),
		fetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negatives_fetched_total",
			Help:      "Negative images present after acquisition.",
		}, []string{"stage"}),
		shortfall: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negative_shortfall_total",
			Help:      "Negative images the source could not supply.",
		}, []string{"stage"}),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "manifest_entries",
			Help:      "Lines in the last written manifest.",
		}, []string{"stage", "label"}),
	}
	r.registry.MustRegister(r.allocated, r.skipped, r.requested, r.fetched, r.shortfall, r.entries)
	return r
}

// Gatherer exposes the registry
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

func (r *Recorder) StepStarted(domain.Step) {}

func (r *Recorder) MoveApplied(move domain.Move, _, _ int) {
	r.allocated.WithLabelValues(move.Bucket.String()).Inc()
}

func (r *Recorder) MoveSkipped(move domain.Move, _, _ int) {
	r.skipped.WithLabelValues(move.Bucket.String()).Inc()
}

func (r *Recorder) NegativesFetched(stage domain.Stage, requested, present int) {
	r.requested.WithLabelValues(string(stage)).Add(float64(requested))
	r.fetched.WithLabelValues(string(stage)).Add(float64(present))
	if missing := requested - present; missing > 0 {
		r.shortfall.WithLabelValues(string(stage)).Add(float64(missing))
	} else {
		r.shortfall.WithLabelValues(string(stage)).Add(0)
	}
}

func (r *Recorder) ManifestWritten(s domain.ManifestSummary) {
	r.entries.WithLabelValues(string(s.Stage), string(domain.LabelPositive)).Set(float64(s.Positive))
	r.entries.WithLabelValues(string(s.Stage), string(domain.LabelNegative)).Set(float64(s.Negative))
}

// WriteTextfile writes the registry in the text exposition format, for
// node_exporter's textfile collector
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
