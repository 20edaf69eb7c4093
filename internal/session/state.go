// Package session holds one quiz conversation's state and the controller
// that advances it turn by turn.
package session

import (
	"time"

	"github.com/abhisek/codequiz/internal/questions"
)

// MaxAttempts is the number of answers a user gets per question.
const MaxAttempts = 2

// Role is the author of a transcript message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. The transcript is append-only.
type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Node names a step of the conversation graph.
type Node string

const (
	NodeGenerateQuestion Node = "generate_question"
	NodeCheckAnswer      Node = "check_answer"
)

// Outcome is the structured result of the most recent step. The edge out of
// check_answer is chosen from it, never from transcript text.
type Outcome string

const (
	OutcomeNone       Outcome = ""
	OutcomeCorrect    Outcome = "correct"
	OutcomeRetry      Outcome = "retry"
	OutcomeExhausted  Outcome = "exhausted"
	OutcomeNoQuestion Outcome = "no_question"
)

// State is one conversation. A State is owned by a single conversation and
// must not be shared between goroutines without external locking.
type State struct {
	ID            string    `json:"id"`
	Model         string    `json:"model,omitempty"`
	QuestionID    int       `json:"question_id"`
	LookupKey     string    `json:"lookup_key,omitempty"`
	Question      string    `json:"question"`
	Description   string    `json:"description"`
	CorrectAnswer string    `json:"correct_answer"`
	Attempts      int       `json:"attempts"`
	Messages      []Message `json:"messages"`
	Node          Node      `json:"node"`
	LastOutcome   Outcome   `json:"last_outcome,omitempty"`
	Answered      int       `json:"answered"`
	Correct       int       `json:"correct"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// New creates a conversation positioned at the entry node with an empty
// transcript. An empty model selects the registry default.
func New(id string, startQuestionID int, model string) *State {
	now := time.Now().UTC()
	return &State{
		ID:         id,
		Model:      model,
		QuestionID: startQuestionID,
		Node:       NodeGenerateQuestion,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.Messages = make([]Message, len(s.Messages))
	copy(c.Messages, s.Messages)
	return &c
}

// Record returns the active question as a record.
func (s *State) Record() questions.Record {
	return questions.Record{Title: s.Question, Description: s.Description, Answer: s.CorrectAnswer}
}

// HasQuestion reports whether a real question is active.
func (s *State) HasQuestion() bool {
	return s.Node == NodeCheckAnswer && s.Record().Available()
}

// LastMessage returns the newest transcript entry, or false if there is none.
func (s *State) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

func (s *State) append(role Role, text string, at time.Time) {
	s.Messages = append(s.Messages, Message{Role: role, Text: text, At: at})
	s.UpdatedAt = at
}
