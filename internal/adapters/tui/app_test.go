package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"datasplit/internal/adapters/tui/views"
	"datasplit/internal/domain"
)

type recordingSender struct {
	msgs []tea.Msg
}

func (s *recordingSender) Send(msg tea.Msg) {
	s.msgs = append(s.msgs, msg)
}

func testLayout(t *testing.T) domain.Layout {
	t.Helper()
	layout, err := domain.NewLayout("/data", "n07840804")
	if err != nil {
		t.Fatal(err)
	}
	return layout
}

func TestProgramObserver_ForwardsEvents(t *testing.T) {
	s := &recordingSender{}
	obs := &programObserver{p: s}

	obs.StepStarted(domain.StepPlan)
	obs.MoveApplied(domain.Move{}, 3, 110)
	obs.NegativesFetched(domain.StageTest, 100, 90)
	obs.ManifestWritten(domain.ManifestSummary{Stage: domain.StageTest})

	if len(s.msgs) != 4 {
		t.Fatalf("got %d messages, want 4", len(s.msgs))
	}
	if m, ok := s.msgs[1].(views.MoveMsg); !ok || m.Done != 3 || m.Total != 110 {
		t.Errorf("unexpected move message %#v", s.msgs[1])
	}
	if m, ok := s.msgs[2].(views.NegativesMsg); !ok || m.Present != 90 {
		t.Errorf("unexpected negatives message %#v", s.msgs[2])
	}
}

func TestApp_SwitchesViews(t *testing.T) {
	app := NewApp(testLayout(t), nil)

	app.Update(views.SwitchToHelpMsg{})
	if app.state != ViewHelp {
		t.Fatalf("state = %v, want help", app.state)
	}
	if !strings.Contains(app.View(), "datasplit help") {
		t.Error("expected help view")
	}

	// progress keeps updating behind the help screen
	app.Update(views.MoveMsg{Done: 5, Total: 10})
	app.Update(views.SwitchToProgressMsg{})
	if !strings.Contains(app.View(), "5 / 10 positives allocated") {
		t.Errorf("progress lost while help was shown:\n%s", app.View())
	}
}

func TestApp_CtrlCQuitsFromHelp(t *testing.T) {
	app := NewApp(testLayout(t), nil)
	app.Update(views.SwitchToHelpMsg{})

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestApp_OpenEditorWithoutEditor(t *testing.T) {
	app := NewApp(testLayout(t), nil)

	if _, cmd := app.Update(views.OpenEditorMsg{Path: "/data/n07840804/train.txt", Line: 1}); cmd != nil {
		t.Error("expected no command without an editor")
	}
}
