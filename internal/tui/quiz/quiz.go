// Package quiz is the chat screen where the user answers questions.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codequiz/internal/session"
	"github.com/abhisek/codequiz/internal/tui"
	"github.com/abhisek/codequiz/internal/tui/layout"
	"github.com/abhisek/codequiz/internal/tui/summary"
)

// Options configure a quiz screen.
type Options struct {
	Controller      *session.Controller
	SessionID       string
	StartQuestionID int
	Model           string
	// OnSave, when set, persists the state after every successful turn.
	OnSave func(ctx context.Context, st *session.State) error
}

// Screen is the conversation screen.
type Screen struct {
	ctx     context.Context
	opts    Options
	state   *session.State
	input   textinput.Model
	pending string // user text awaiting a reply
	busy    bool
	errMsg  string
}

var _ tui.Screen = (*Screen)(nil)
var _ tui.KeyHintProvider = (*Screen)(nil)
var _ tui.StatusProvider = (*Screen)(nil)

// New creates the quiz screen. ctx bounds every controller call.
func New(ctx context.Context, opts Options) *Screen {
	ti := textinput.New()
	ti.Placeholder = "Type your answer..."
	ti.CharLimit = 2000
	ti.Focus()

	return &Screen{ctx: ctx, opts: opts, input: ti, busy: true}
}

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.start(), s.input.Focus())
}

func (s *Screen) Title() string {
	if s.state != nil && s.state.HasQuestion() {
		return s.state.Question
	}
	return "Quiz"
}

func (s *Screen) Status() string {
	if s.state == nil {
		return ""
	}
	return fmt.Sprintf("Q%d  %d/%d correct", s.state.QuestionID, s.state.Correct, s.state.Answered)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+S", Description: "Summary"},
		{Key: "Esc", Description: "Quit"},
	}
}

// State returns the current conversation, or nil before the first question.
func (s *Screen) State() *session.State {
	return s.state
}

func (s *Screen) Update(msg tea.Msg) (tui.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		s.busy = false
		if msg.Err != nil {
			s.errMsg = describe(msg.Err)
			return s, nil
		}
		s.errMsg = ""
		s.state = msg.State
		return s, nil

	case turnDoneMsg:
		s.busy = false
		if msg.Err != nil {
			// The turn left no trace; restore the text so it can be resent.
			s.errMsg = describe(msg.Err)
			s.input.SetValue(s.pending)
			s.pending = ""
			return s, nil
		}
		s.pending = ""
		s.errMsg = ""
		s.state = msg.State
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			return s, s.submit()
		case "ctrl+s":
			if s.state != nil {
				return s, tui.Push(summary.New(s.state))
			}
			return s, nil
		}
	}

	if s.busy {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) submit() tea.Cmd {
	if s.busy {
		return nil
	}
	if s.state == nil {
		// The first question failed to load; retry it.
		s.busy = true
		s.errMsg = ""
		return s.start()
	}
	text := strings.TrimSpace(s.input.Value())
	if text == "" {
		return nil
	}
	s.input.Reset()
	s.pending = text
	s.busy = true
	s.errMsg = ""
	return s.turn(s.state, text)
}

func (s *Screen) start() tea.Cmd {
	ctrl := s.opts.Controller
	st := session.New(s.opts.SessionID, s.opts.StartQuestionID, s.opts.Model)
	ctx := s.ctx
	save := s.opts.OnSave
	return func() tea.Msg {
		next, err := ctrl.Start(ctx, st)
		if err == nil && save != nil {
			err = save(ctx, next)
		}
		return startedMsg{State: next, Err: err}
	}
}

func (s *Screen) turn(st *session.State, text string) tea.Cmd {
	ctrl := s.opts.Controller
	ctx := s.ctx
	save := s.opts.OnSave
	return func() tea.Msg {
		next, err := ctrl.Turn(ctx, st, text)
		if err == nil && save != nil {
			err = save(ctx, next)
		}
		return turnDoneMsg{State: next, Err: err}
	}
}

// describe turns an error into text for the transcript. Provider details
// stay in the log.
func describe(err error) string {
	switch {
	case errors.Is(err, session.ErrModelUnavailable):
		return "The grader is unavailable right now. Press Enter to try again."
	case errors.Is(err, session.ErrStoreUnavailable):
		return "The question store is unavailable right now. Press Enter to try again."
	case errors.Is(err, session.ErrEmptyAnswer):
		return "Type an answer first."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	}
	return "Something went wrong. Press Enter to try again."
}
