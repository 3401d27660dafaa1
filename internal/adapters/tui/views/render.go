package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"datasplit/internal/adapters/tui/styles"
	"datasplit/internal/application/commands"
	"datasplit/internal/domain"
)

// RenderHelpLine renders key bindings separated by bullets
func RenderHelpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderMessage styles a status message, or returns "" for none
func RenderMessage(message string, isError bool) string {
	switch {
	case message == "":
		return ""
	case isError:
		return styles.ErrorMsg.Render(message)
	default:
		return styles.Success.Render(message)
	}
}

func renderLabel(label domain.Label) string {
	if label == domain.LabelNegative {
		return styles.Negative.Render(string(label))
	}
	return styles.Positive.Render(string(label))
}

// RenderNegatives renders the fetch status of one negative stage
func RenderNegatives(stage domain.Stage, requested, present int) string {
	line := fmt.Sprintf("%-5s %s %d / %d", stage, renderLabel(domain.LabelNegative), present, requested)
	if present < requested {
		return line + " " + styles.WarningMsg.Render(fmt.Sprintf("(short by %d)", requested-present))
	}
	return line
}

// RenderSummary renders the bucket counts and manifests of a finished split
func RenderSummary(r *commands.SplitResult) string {
	var b strings.Builder

	heading := "Split " + r.Concept
	if r.Resumed {
		heading += " (resumed)"
	}
	b.WriteString(styles.Title.UnsetMarginBottom().Render(heading))
	b.WriteString("\n")

	for _, bucket := range domain.Buckets {
		fmt.Fprintf(&b, "%-5s %-17s %6d\n", bucket.Stage, renderLabel(bucket.Label), r.Counts.Quota(bucket))
	}

	for _, m := range r.Manifests {
		fmt.Fprintf(&b, "%s %s\n", styles.InputLabel.Render(string(m.Stage)+".txt:"), m.Path)
	}

	for _, s := range r.Shortfalls {
		b.WriteString(styles.WarningMsg.Render(s.Error()))
		b.WriteString("\n")
	}

	return styles.Summary.Render(strings.TrimRight(b.String(), "\n"))
}

// ViewBuilder assembles a view line by line
type ViewBuilder struct {
	b strings.Builder
}

func NewViewBuilder() *ViewBuilder {
	return &ViewBuilder{}
}

func (v *ViewBuilder) Title(title string) *ViewBuilder {
	v.b.WriteString(styles.Title.Render(title))
	v.b.WriteString("\n\n")
	return v
}

func (v *ViewBuilder) Line(text string) *ViewBuilder {
	v.b.WriteString(text)
	v.b.WriteString("\n")
	return v
}

func (v *ViewBuilder) BlankLine() *ViewBuilder {
	v.b.WriteString("\n")
	return v
}

func (v *ViewBuilder) Muted(text string) *ViewBuilder {
	return v.Line(styles.MutedText.Render(text))
}

// Message adds a status message; empty messages add nothing
func (v *ViewBuilder) Message(message string, isError bool) *ViewBuilder {
	if message == "" {
		return v
	}
	v.b.WriteString(RenderMessage(message, isError))
	v.b.WriteString("\n\n")
	return v
}

func (v *ViewBuilder) Help(bindings ...key.Binding) *ViewBuilder {
	v.b.WriteString(RenderHelpLine(bindings...))
	return v
}

func (v *ViewBuilder) Raw(text string) *ViewBuilder {
	v.b.WriteString(text)
	return v
}

// String returns the view wrapped in the app style
func (v *ViewBuilder) String() string {
	return styles.App.Render(v.b.String())
}
