package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/codequiz/internal/session"
	"github.com/abhisek/codequiz/internal/tui/theme"
)

func (s *Screen) View(width, height int) string {
	if s.state == nil && s.errMsg == "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Fetching a question...")
	}

	var bottom strings.Builder
	bottom.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	bottom.WriteString("\n")
	if s.errMsg != "" {
		bottom.WriteString(theme.Incorrect.Render("  " + s.errMsg))
		bottom.WriteString("\n")
	}
	switch {
	case s.busy:
		bottom.WriteString(theme.Hint.Render("  Checking..."))
	default:
		bottom.WriteString("  " + s.input.View())
	}
	foot := bottom.String()

	lines := s.transcript(max(width-4, 20))
	avail := max(height-lipgloss.Height(foot)-1, 0)
	if len(lines) > avail {
		lines = lines[len(lines)-avail:]
	}

	return strings.Join(lines, "\n") + strings.Repeat("\n", max(avail-len(lines), 0)+1) + foot
}

// transcript renders the conversation as wrapped lines, oldest first.
func (s *Screen) transcript(width int) []string {
	var out []string
	if s.state != nil {
		verdict := s.verdictIndex()
		for i, m := range s.state.Messages {
			style := theme.Body
			if i == verdict {
				style = s.outcomeStyle()
			}
			out = append(out, renderMessage(m.Role, m.Text, style, width)...)
			out = append(out, "")
		}
	}
	if s.pending != "" {
		out = append(out, renderMessage(session.RoleUser, s.pending, theme.Body, width)...)
	}
	return out
}

// verdictIndex is the position of the reply to the latest user message, or -1.
func (s *Screen) verdictIndex() int {
	for i := len(s.state.Messages) - 1; i >= 0; i-- {
		if s.state.Messages[i].Role == session.RoleUser {
			if i+1 < len(s.state.Messages) {
				return i + 1
			}
			return -1
		}
	}
	return -1
}

func (s *Screen) outcomeStyle() lipgloss.Style {
	switch s.state.LastOutcome {
	case session.OutcomeCorrect:
		return theme.Correct
	case session.OutcomeRetry, session.OutcomeExhausted:
		return theme.Incorrect
	}
	return theme.Body
}

func renderMessage(role session.Role, text string, body lipgloss.Style, width int) []string {
	label := theme.AssistantLabel.Render("Quiz")
	if role == session.RoleUser {
		label = theme.UserLabel.Render("You")
	}
	wrapped := body.Width(width - 2).Render(text)

	lines := []string{fmt.Sprintf("  %s", label)}
	for _, l := range strings.Split(wrapped, "\n") {
		lines = append(lines, "  "+l)
	}
	return lines
}
