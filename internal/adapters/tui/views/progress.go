package views

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"datasplit/internal/adapters/tui/styles"
	"datasplit/internal/application/commands"
	"datasplit/internal/domain"
)

// ProgressKeyMap defines key bindings for the progress view
type ProgressKeyMap struct {
	Quit   key.Binding
	Copy   key.Binding
	Review key.Binding
	Help   key.Binding
}

var ProgressKeys = ProgressKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Copy: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "copy train.txt path"),
	),
	Review: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "review train.txt"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

var progressSteps = []domain.Step{
	domain.StepResolveSource,
	domain.StepPlan,
	domain.StepAllocate,
	domain.StepFetchNegatives,
	domain.StepWriteManifests,
}

type negativeCount struct {
	requested int
	present   int
}

// ProgressModel shows a running split and its outcome
type ProgressModel struct {
	StatusLine
	concept string

	spinner spinner.Model
	bar     progress.Model

	step      domain.Step
	started   bool
	moved     int
	planned   int
	negatives map[domain.Stage]negativeCount
	manifests []domain.ManifestSummary

	finished bool
	result   *commands.SplitResult
	err      error

	copyToClipboard func(string) error
}

// NewProgressModel creates a progress view for a concept
func NewProgressModel(concept string) *ProgressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return &ProgressModel{
		concept:         concept,
		spinner:         s,
		bar:             progress.New(progress.WithDefaultGradient()),
		negatives:       make(map[domain.Stage]negativeCount),
		copyToClipboard: clipboard.WriteAll,
	}
}

// Init starts the spinner
func (m *ProgressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Finished reports whether the split has ended
func (m *ProgressModel) Finished() bool {
	return m.finished
}

// Outcome returns the split result or error once finished
func (m *ProgressModel) Outcome() (*commands.SplitResult, error) {
	return m.result, m.err
}

// Update handles messages for the progress view
func (m *ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-8, 10), 60)
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StepMsg:
		m.step = msg.Step
		m.started = true
		return m, nil

	case MoveMsg:
		m.moved = msg.Done
		m.planned = msg.Total
		return m, nil

	case NegativesMsg:
		m.negatives[msg.Stage] = negativeCount{requested: msg.Requested, present: msg.Present}
		return m, nil

	case ManifestMsg:
		m.manifests = append(m.manifests, msg.Summary)
		return m, nil

	case SplitDoneMsg:
		m.finished = true
		m.result = msg.Result
		m.err = msg.Err
		if m.err != nil {
			m.SetMessage(m.err.Error(), true)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *ProgressModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, ProgressKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, ProgressKeys.Help):
		return m, func() tea.Msg { return SwitchToHelpMsg{} }

	case key.Matches(msg, ProgressKeys.Copy):
		summary, ok := m.trainManifest()
		if !ok {
			return m, nil
		}
		if err := m.copyToClipboard(summary.Path); err != nil {
			m.SetMessage(fmt.Sprintf("Copy failed: %v", err), true)
		} else {
			m.SetMessage("Copied "+summary.Path, false)
		}
		return m, nil

	case key.Matches(msg, ProgressKeys.Review):
		summary, ok := m.trainManifest()
		if !ok || !m.finished {
			return m, nil
		}
		m.ClearMessage()
		return m, func() tea.Msg {
			return OpenEditorMsg{Path: summary.Path, Line: FirstNegativeLine(summary)}
		}
	}
	return m, nil
}

func (m *ProgressModel) trainManifest() (domain.ManifestSummary, bool) {
	for _, s := range m.manifests {
		if s.Stage == domain.StageTrain {
			return s, true
		}
	}
	return domain.ManifestSummary{}, false
}

// FirstNegativeLine returns the 1-based line where negatives start, or 1
// when the manifest has none
func FirstNegativeLine(s domain.ManifestSummary) int {
	if s.Negative == 0 {
		return 1
	}
	return s.Positive + 1
}

// View renders the progress view
func (m *ProgressModel) View() string {
	v := NewViewBuilder()
	v.Title("datasplit " + m.concept)

	for _, step := range progressSteps {
		v.Line(m.renderStep(step))
	}
	v.BlankLine()

	if m.planned > 0 {
		v.Line(m.bar.ViewAs(float64(m.moved) / float64(m.planned)))
		v.Muted(fmt.Sprintf("%d / %d positives allocated", m.moved, m.planned))
		v.BlankLine()
	}

	for _, stage := range domain.Stages {
		if n, ok := m.negatives[stage]; ok {
			v.Line(RenderNegatives(stage, n.requested, n.present))
		}
	}

	if m.finished && m.result != nil {
		v.BlankLine()
		v.Raw(RenderSummary(m.result))
		v.BlankLine()
	}

	v.BlankLine()
	v.Message(m.Message, m.MessageErr)

	if m.finished {
		v.Help(ProgressKeys.Copy, ProgressKeys.Review, ProgressKeys.Help, ProgressKeys.Quit)
	} else {
		v.Help(ProgressKeys.Help, ProgressKeys.Quit)
	}
	return v.String()
}

func (m *ProgressModel) renderStep(step domain.Step) string {
	switch {
	case m.finished && m.err == nil, m.started && step < m.step:
		return styles.StepDone.Render("✓ " + step.String())
	case m.started && step == m.step && !m.finished:
		return m.spinner.View() + " " + styles.StepActive.Render(step.String())
	case m.finished && step == m.step:
		return styles.ErrorMsg.Render("✗ " + step.String())
	default:
		return styles.StepPending.Render("  " + step.String())
	}
}
