package quiz

import "github.com/abhisek/codequiz/internal/session"

// startedMsg carries the result of presenting the first question.
type startedMsg struct {
	State *session.State
	Err   error
}

// turnDoneMsg carries the result of one user turn.
type turnDoneMsg struct {
	State *session.State
	Err   error
}
