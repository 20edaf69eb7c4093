package summary

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/codequiz/internal/session"
	"github.com/abhisek/codequiz/internal/tui"
)

func testState() *session.State {
	st := session.New("s1", 4, "stub")
	st.Node = session.NodeCheckAnswer
	st.Question = "Fizz Buzz"
	st.Answered = 4
	st.Correct = 3
	st.Attempts = 1
	return st
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		answered, correct int
		want              float64
	}{
		{0, 0, 0},
		{4, 3, 0.75},
		{2, 2, 1},
	}
	for _, tt := range tests {
		st := session.New("s", 1, "")
		st.Answered, st.Correct = tt.answered, tt.correct
		if got := Accuracy(st); got != tt.want {
			t.Errorf("Accuracy(%d/%d) = %v, want %v", tt.correct, tt.answered, got, tt.want)
		}
	}
}

func TestView(t *testing.T) {
	s := New(testState())
	view := s.View(80, 20)
	for _, want := range []string{"Answers: 4", "Correct: 3", "75%", "Fizz Buzz", "attempt 2 of 2", "stub"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	st := testState()
	s := New(st)
	st.Correct = 99
	if strings.Contains(s.View(80, 20), "99") {
		t.Error("summary changed after the source state was modified")
	}
}

func TestEnterPops(t *testing.T) {
	s := New(testState())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(tui.PopMsg); !ok {
		t.Error("expected PopMsg")
	}
}
