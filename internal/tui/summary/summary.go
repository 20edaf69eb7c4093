// Package summary shows the score for the current conversation.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/codequiz/internal/session"
	"github.com/abhisek/codequiz/internal/tui"
	"github.com/abhisek/codequiz/internal/tui/layout"
	"github.com/abhisek/codequiz/internal/tui/theme"
)

// Screen displays a snapshot of a conversation's progress.
type Screen struct {
	state *session.State
}

var _ tui.Screen = (*Screen)(nil)
var _ tui.KeyHintProvider = (*Screen)(nil)

// New creates a summary of st. st is cloned so later turns do not change it.
func New(st *session.State) *Screen {
	return &Screen{state: st.Clone()}
}

func (s *Screen) Init() tea.Cmd { return nil }

func (s *Screen) Title() string { return "Summary" }

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Back to quiz"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (s *Screen) Update(msg tea.Msg) (tui.Screen, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok && k.String() == "enter" {
		return s, tui.Pop
	}
	return s, nil
}

// Accuracy is the share of graded answers that were correct.
func Accuracy(st *session.State) float64 {
	if st.Answered == 0 {
		return 0
	}
	return float64(st.Correct) / float64(st.Answered)
}

func (s *Screen) View(width, height int) string {
	st := s.state
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(center.Inherit(theme.Title).Render("Your progress"))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Answers: %d        Correct: %d        Accuracy: %.0f%%",
		st.Answered, st.Correct, Accuracy(st)*100)
	b.WriteString(center.Foreground(theme.Text).Render(stats))
	b.WriteString("\n\n")

	current := "No question is loaded."
	if st.HasQuestion() {
		current = fmt.Sprintf("Current question #%d: %s (attempt %d of %d)",
			st.QuestionID, st.Question, st.Attempts+1, session.MaxAttempts)
	}
	b.WriteString(center.Foreground(theme.TextDim).Render(current))
	b.WriteString("\n\n")

	if st.Model != "" {
		b.WriteString(center.Foreground(theme.TextDim).Render("Grader: " + st.Model))
		b.WriteString("\n")
	}
	return b.String()
}
