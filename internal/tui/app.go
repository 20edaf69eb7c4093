package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codequiz/internal/tui/layout"
)

// App is the root Bubble Tea model.
type App struct {
	screens *stack
	width   int
	height  int
}

// NewApp creates the root model with root as the bottom screen.
func NewApp(root Screen) App {
	return App{screens: newStack(root)}
}

func (m App) Init() tea.Cmd {
	return m.screens.active().Init()
}

func (m App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.screens.depth() > 1 {
				return m, Pop
			}
			return m, tea.Quit
		}
	}

	return m, m.screens.update(msg)
}

func (m App) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.screens.active()

	status := ""
	if sp, ok := active.(StatusProvider); ok {
		status = sp.Status()
	}
	header := layout.RenderHeader(active.Title(), status, m.width)

	hints := []layout.KeyHint{
		{Key: "Esc", Description: "Quit"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if m.screens.depth() > 1 {
		hints[0].Description = "Back"
	}
	if hp, ok := active.(KeyHintProvider); ok {
		hints = hp.KeyHints()
	}
	footer := layout.RenderFooter(hints, m.width)

	content := active.View(m.width, layout.ContentHeight(header, footer, m.height))
	v.SetContent(layout.RenderFrame(header, content, footer, m.width, m.height))
	return v
}

// Run starts the terminal program and blocks until the user quits.
func Run(root Screen) error {
	_, err := tea.NewProgram(NewApp(root)).Run()
	return err
}
