package document

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/studybuddy/studybuddy/internal/flowchart"
	"github.com/studybuddy/studybuddy/internal/history"
	"github.com/studybuddy/studybuddy/internal/roadmap"
	"github.com/studybuddy/studybuddy/internal/screens/result"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

// Body renders an item's content for reading.
func Body(it history.Item, width int) string {
	text := lipgloss.NewStyle().Foreground(theme.Text).Width(width).PaddingLeft(2)
	dim := lipgloss.NewStyle().Foreground(theme.TextDim).Width(width).PaddingLeft(2)
	heading := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).PaddingLeft(2)

	switch p := it.Payload.(type) {
	case history.Summary:
		return text.Render(p.Content)
	case history.AudioSummary:
		return text.Render(p.Content)
	case history.LabReport:
		return text.Render(p.Content)
	case history.CodeExplanation:
		return heading.Render("Code") + "\n" + dim.Render(p.SourceCode) + "\n\n" +
			heading.Render("Explanation") + "\n" + text.Render(p.Content)
	case history.Diagram:
		out := heading.Render("Prompt") + "\n" + dim.Render(p.Prompt)
		if p.Mermaid != "" {
			out += "\n\n" + heading.Render("Mermaid") + "\n" + text.Render(p.Mermaid)
		}
		if p.ImageURL != "" {
			out += "\n\n" + dim.Render("Image: "+p.ImageURL)
		}
		return out
	case history.Quiz:
		return result.Review(p.Result, width)
	case history.Roadmap:
		var b strings.Builder
		roadmap.Walk(p.Nodes, func(n roadmap.Node, depth int) bool {
			b.WriteString(fmt.Sprintf("%s- [%s] %s\n", strings.Repeat("  ", depth), n.Status, n.Title))
			return true
		})
		return text.Render(b.String())
	case history.CodeFlowchart:
		run, err := flowchart.Walk(p.FlowchartData)
		if err != nil {
			var b strings.Builder
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Error).Render("  Flowchart is broken: " + err.Error()))
			for _, is := range flowchart.Validate(p.FlowchartData) {
				b.WriteString("\n" + dim.Render("• "+is.String()))
			}
			return b.String()
		}
		return lipgloss.NewStyle().PaddingLeft(2).Render(flowchart.Render(run, theme.FlowchartStyles()))
	case history.Chat:
		var b strings.Builder
		for _, m := range p.Messages {
			who := "You"
			style := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
			if m.Role == history.RoleModel {
				who = "Tutor"
				style = lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
			}
			b.WriteString(style.PaddingLeft(2).Render(who))
			b.WriteString("\n")
			b.WriteString(text.Render(m.Content))
			b.WriteString("\n\n")
		}
		return b.String()
	default:
		panic(fmt.Sprintf("document: unhandled payload %T", p))
	}
}
