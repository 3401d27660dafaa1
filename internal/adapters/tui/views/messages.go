package views

import (
	"datasplit/internal/application/commands"
	"datasplit/internal/domain"
)

// Progress messages sent by the split observer

type StepMsg struct {
	Step domain.Step
}

type MoveMsg struct {
	Done  int
	Total int
}

type NegativesMsg struct {
	Stage     domain.Stage
	Requested int
	Present   int
}

type ManifestMsg struct {
	Summary domain.ManifestSummary
}

// SplitDoneMsg ends the run; exactly one of Result and Err is set
type SplitDoneMsg struct {
	Result *commands.SplitResult
	Err    error
}

// View switching messages

type SwitchToHelpMsg struct{}

type SwitchToProgressMsg struct{}

// OpenEditorMsg asks the app to open a manifest at a line
type OpenEditorMsg struct {
	Path string
	Line int
}
