package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"datasplit/internal/adapters/editor"
	"datasplit/internal/adapters/tui/views"
	"datasplit/internal/application/commands"
	"datasplit/internal/domain"
	"datasplit/internal/ports"
)

// SplitFunc runs a split, reporting progress to obs
type SplitFunc func(ctx context.Context, obs ports.Observer) (*commands.SplitResult, error)

// sender is the part of tea.Program the observer needs
type sender interface {
	Send(msg tea.Msg)
}

// programObserver forwards split progress into the bubbletea program
type programObserver struct {
	p sender
}

var _ ports.Observer = (*programObserver)(nil)

func (o *programObserver) StepStarted(step domain.Step) {
	o.p.Send(views.StepMsg{Step: step})
}

func (o *programObserver) MoveApplied(_ domain.Move, done, total int) {
	o.p.Send(views.MoveMsg{Done: done, Total: total})
}

func (o *programObserver) MoveSkipped(_ domain.Move, done, total int) {
	o.p.Send(views.MoveMsg{Done: done, Total: total})
}

func (o *programObserver) NegativesFetched(stage domain.Stage, requested, present int) {
	o.p.Send(views.NegativesMsg{Stage: stage, Requested: requested, Present: present})
}

func (o *programObserver) ManifestWritten(summary domain.ManifestSummary) {
	o.p.Send(views.ManifestMsg{Summary: summary})
}

// Run shows split progress in a full-screen TUI. Quitting before the split
// ends cancels it; Run returns only after the split goroutine has stopped.
func Run(ctx context.Context, layout domain.Layout, split SplitFunc, ed *editor.Opener) (*commands.SplitResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewApp(layout, ed), tea.WithAltScreen())

	var (
		result   *commands.SplitResult
		splitErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, splitErr = split(ctx, &programObserver{p: p})
		p.Send(views.SplitDoneMsg{Result: result, Err: splitErr})
	}()

	_, err := p.Run()
	cancel()
	<-done

	if err != nil {
		return nil, fmt.Errorf("run tui: %w", err)
	}
	return result, splitErr
}
