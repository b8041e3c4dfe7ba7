package flowchart

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Styles controls how Render draws each node type.
type Styles struct {
	Start    lipgloss.Style
	End      lipgloss.Style
	Process  lipgloss.Style
	Decision lipgloss.Style
	IO       lipgloss.Style
	Label    lipgloss.Style
	BackRef  lipgloss.Style
	Edge     lipgloss.Style
}

// PlainStyles draws without colour, for piped output and tests.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{
		Start: s, End: s, Process: s, Decision: s, IO: s,
		Label: s, BackRef: s, Edge: s,
	}
}

func (s Styles) node(t NodeType) lipgloss.Style {
	switch t {
	case Start:
		return s.Start
	case End:
		return s.End
	case Decision:
		return s.Decision
	case IO:
		return s.IO
	default:
		return s.Process
	}
}

var shapes = map[NodeType][2]string{
	Start:    {"(", ")"},
	End:      {"(", ")"},
	Process:  {"[", "]"},
	Decision: {"<", ">?"},
	IO:       {"/", "/"},
}

// Render draws a walked run as an indented text tree.
func Render(run Run, st Styles) string {
	var b strings.Builder
	renderRun(&b, run, st, "")
	return strings.TrimRight(b.String(), "\n")
}

func renderRun(b *strings.Builder, run Run, st Styles, indent string) {
	for i, step := range run {
		if i > 0 {
			b.WriteString(indent + st.Edge.Render("│") + "\n")
		}
		if step.BackRef {
			b.WriteString(indent + st.BackRef.Render("↺ connects back to "+step.Node.Content) + "\n")
			continue
		}
		shape, ok := shapes[step.Node.Type]
		if !ok {
			shape = shapes[Process]
		}
		b.WriteString(indent + st.node(step.Node.Type).Render(shape[0]+step.Node.Content+shape[1]) + "\n")

		for j, br := range step.Branches {
			branch, child := "├─", "│  "
			if j == len(step.Branches)-1 {
				branch, child = "└─", "   "
			}
			label := br.Label
			if label == "" {
				label = "next"
			}
			b.WriteString(indent + st.Edge.Render(branch) + " " + st.Label.Render(label) + "\n")
			renderRun(b, br.Run, st, indent+st.Edge.Render(child))
		}
	}
}
