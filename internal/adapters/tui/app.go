package tui

import (
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"datasplit/internal/adapters/editor"
	"datasplit/internal/adapters/tui/views"
	"datasplit/internal/domain"
)

// ViewState represents the current view
type ViewState int

const (
	ViewProgress ViewState = iota
	ViewHelp
)

var forceQuit = key.NewBinding(key.WithKeys("ctrl+c"))

// App is the main TUI application model
type App struct {
	editor *editor.Opener

	state    ViewState
	progress *views.ProgressModel
	help     *views.HelpModel
}

// NewApp creates the TUI for one split; ed may be nil to disable review
func NewApp(layout domain.Layout, ed *editor.Opener) *App {
	return &App{
		editor:   ed,
		state:    ViewProgress,
		progress: views.NewProgressModel(filepath.Base(layout.Base)),
		help:     views.NewHelpModel(layout),
	}
}

func (a *App) Init() tea.Cmd {
	return a.progress.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.progress.Update(msg)
		a.help.Update(msg)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, forceQuit) {
			return a, tea.Quit
		}

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToProgressMsg:
		a.state = ViewProgress
		return a, nil

	case views.OpenEditorMsg:
		return a, a.openEditor(msg.Path, msg.Line)

	case editorFinishedMsg:
		if msg.err != nil {
			a.progress.SetMessage("Editor: "+msg.err.Error(), true)
		}
		return a, nil

	case views.StepMsg, views.MoveMsg, views.NegativesMsg, views.ManifestMsg, views.SplitDoneMsg:
		// progress events arrive regardless of the visible view
		_, cmd := a.progress.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	switch a.state {
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	default:
		_, cmd = a.progress.Update(msg)
	}
	return a, cmd
}

type editorFinishedMsg struct{ err error }

func (a *App) openEditor(path string, line int) tea.Cmd {
	if a.editor == nil {
		return nil
	}

	cmd, err := a.editor.Command(path, line)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// View renders the current view
func (a *App) View() string {
	if a.state == ViewHelp {
		return a.help.View()
	}
	return a.progress.View()
}
