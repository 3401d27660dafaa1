package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"datasplit/internal/adapters/tui/styles"
	"datasplit/internal/domain"
)

var HelpClose = key.NewBinding(
	key.WithKeys("esc", "q", "?"),
	key.WithHelp("esc/q/?", "close"),
)

// HelpModel explains the keys and the dataset layout
type HelpModel struct {
	layout domain.Layout
}

func NewHelpModel(layout domain.Layout) *HelpModel {
	return &HelpModel{layout: layout}
}

func (m *HelpModel) Init() tea.Cmd {
	return nil
}

func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, HelpClose) {
		return m, func() tea.Msg { return SwitchToProgressMsg{} }
	}
	return m, nil
}

func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("datasplit help"))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Keys"))
	b.WriteString("\n")
	for _, binding := range []key.Binding{ProgressKeys.Copy, ProgressKeys.Review, ProgressKeys.Help, ProgressKeys.Quit} {
		h := binding.Help()
		b.WriteString(helpLine(h.Key, h.Desc))
	}
	b.WriteString(styles.MutedText.Render("  quitting during a run interrupts it; rerun to resume"))
	b.WriteString("\n\n")

	b.WriteString(styles.InputLabel.Render("Buckets"))
	b.WriteString("\n")
	for _, bucket := range domain.Buckets {
		b.WriteString(helpLine(bucket.String(), m.layout.BucketDir(bucket)))
	}
	b.WriteString("\n")

	b.WriteString(styles.InputLabel.Render("Manifests"))
	b.WriteString("\n")
	for _, stage := range domain.Stages {
		b.WriteString(helpLine(fmt.Sprintf("%s.txt", stage), m.layout.ManifestPath(stage)))
	}
	b.WriteString(styles.MutedText.Render("  positives first, then negatives; one absolute path per line"))
	b.WriteString("\n\n")

	b.WriteString(RenderHelpLine(HelpClose))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
