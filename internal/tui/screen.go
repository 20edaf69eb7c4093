// Package tui is the terminal front end: a stack of screens inside a shared
// header and footer frame.
package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codequiz/internal/tui/layout"
)

// Screen is one page of the terminal UI.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View renders the content area, excluding header and footer.
	View(width, height int) string
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider lets a screen fill the right side of the header.
type StatusProvider interface {
	Status() string
}

// PushMsg asks the app to show a screen on top of the current one.
type PushMsg struct {
	Screen Screen
}

// PopMsg asks the app to return to the previous screen.
type PopMsg struct{}

// Push is a command that emits PushMsg.
func Push(s Screen) tea.Cmd {
	return func() tea.Msg { return PushMsg{Screen: s} }
}

// Pop is a command that emits PopMsg.
func Pop() tea.Msg { return PopMsg{} }

// stack holds the navigation history. The bottom screen is never popped.
type stack struct {
	screens []Screen
}

func newStack(root Screen) *stack {
	return &stack{screens: []Screen{root}}
}

func (s *stack) push(sc Screen) tea.Cmd {
	s.screens = append(s.screens, sc)
	return sc.Init()
}

func (s *stack) pop() {
	if len(s.screens) > 1 {
		s.screens = s.screens[:len(s.screens)-1]
	}
}

func (s *stack) active() Screen {
	return s.screens[len(s.screens)-1]
}

func (s *stack) depth() int {
	return len(s.screens)
}

// update routes navigation messages and forwards the rest to the active
// screen.
func (s *stack) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case PushMsg:
		return s.push(msg.Screen)
	case PopMsg:
		s.pop()
		return nil
	}
	next, cmd := s.active().Update(msg)
	s.screens[len(s.screens)-1] = next
	return cmd
}
