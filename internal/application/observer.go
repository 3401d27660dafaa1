package application

import (
	"datasplit/internal/domain"
	"datasplit/internal/ports"
)

// NopObserver ignores all progress events
type NopObserver struct{}

var _ ports.Observer = NopObserver{}

func (NopObserver) StepStarted(domain.Step)                 {}
func (NopObserver) MoveApplied(domain.Move, int, int)       {}
func (NopObserver) MoveSkipped(domain.Move, int, int)       {}
func (NopObserver) NegativesFetched(domain.Stage, int, int) {}
func (NopObserver) ManifestWritten(domain.ManifestSummary)  {}

// MultiObserver fans events out to several observers; nil entries are skipped
type MultiObserver []ports.Observer

var _ ports.Observer = MultiObserver(nil)

func (m MultiObserver) StepStarted(step domain.Step) {
	for _, o := range m {
		if o != nil {
			o.StepStarted(step)
		}
	}
}

func (m MultiObserver) MoveApplied(move domain.Move, done, total int) {
	for _, o := range m {
		if o != nil {
			o.MoveApplied(move, done, total)
		}
	}
}

func (m MultiObserver) MoveSkipped(move domain.Move, done, total int) {
	for _, o := range m {
		if o != nil {
			o.MoveSkipped(move, done, total)
		}
	}
}

func (m MultiObserver) NegativesFetched(stage domain.Stage, requested, present int) {
	for _, o := range m {
		if o != nil {
			o.NegativesFetched(stage, requested, present)
		}
	}
}

func (m MultiObserver) ManifestWritten(summary domain.ManifestSummary) {
	for _, o := range m {
		if o != nil {
			o.ManifestWritten(summary)
		}
	}
}
