package app

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/studybuddy/studybuddy/internal/router"
	"github.com/studybuddy/studybuddy/internal/screen"
	"github.com/studybuddy/studybuddy/internal/screens/home"
	"github.com/studybuddy/studybuddy/internal/screens/shared"
	"github.com/studybuddy/studybuddy/internal/ui/layout"
	"github.com/studybuddy/studybuddy/internal/ui/theme"
)

// Options configures the TUI.
type Options struct {
	Deps *shared.Deps

	// Offline marks the header when no Generator is configured.
	Offline bool

	// Start, when set, is pushed above the home screen on launch.
	Start screen.Screen
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	deps    *shared.Deps
	offline bool
	start   screen.Screen
	width   int
	height  int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	return AppModel{
		router:  router.New(home.New(opts.Deps)),
		deps:    opts.Deps,
		offline: opts.Offline,
		start:   opts.Start,
	}
}

// reminderMsg redraws the header each minute so the daily reminder shows
// up once its time passes.
type reminderMsg time.Time

func reminderTick() tea.Cmd {
	return tea.Every(time.Minute, func(t time.Time) tea.Msg { return reminderMsg(t) })
}

func (m AppModel) Init() tea.Cmd {
	cmd := tea.Batch(m.router.Active().Init(), reminderTick())
	if m.start != nil {
		return tea.Batch(cmd, m.router.Push(m.start))
	}
	return cmd
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case reminderMsg:
		return m, reminderTick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if !m.activeHandlesEscape() {
				if m.router.Depth() > 1 {
					return m, func() tea.Msg { return router.PopScreenMsg{} }
				}
				return m, nil
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

// activeHandlesEscape reports whether the active screen uses esc itself,
// e.g. to cancel a prompt.
func (m AppModel) activeHandlesEscape() bool {
	h, ok := m.router.Active().(screen.EscapeHandler)
	return ok && h.HandlesEscape()
}

func (m AppModel) status() layout.Status {
	ws := m.deps.Workspace
	p := ws.Progress()
	return layout.Status{
		User:     ws.User(),
		Streak:   p.Streaks.Current,
		Badges:   len(p.Badges),
		Offline:  m.offline,
		Reminder: ws.ReminderDue(),
	}
}

func (m AppModel) footerHints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		return append(p.KeyHints(), layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the frame for the current terminal size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	title := ""
	if active := m.router.Active(); active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status(), m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// Run starts the Bubble Tea program and blocks until it exits. Time spent
// in the app is added to the learner's study time.
func Run(ctx context.Context, opts Options) error {
	deps := opts.Deps
	theme.Use(theme.ByName(deps.Workspace.Settings().Theme))

	started := deps.Workspace.Now()
	p := tea.NewProgram(newAppModel(opts), tea.WithContext(ctx))
	_, err := p.Run()
	deps.Guard.CancelAll()

	recordSession(deps, started)
	return err
}

// recordSession credits the time since started as study time. This is
// the only place study time is added; screens such as the quiz do not
// credit their own share.
func recordSession(deps *shared.Deps, started time.Time) {
	elapsed := deps.Workspace.Now().Sub(started)
	if err := deps.Workspace.AddStudyTime(context.Background(), elapsed.Truncate(time.Second)); err != nil {
		deps.Logger().Warn("record study time", zap.Error(err))
	}
}
