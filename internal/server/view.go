package server

import (
	"time"

	"github.com/abhisek/codequiz/internal/session"
)

type createSessionRequest struct {
	QuestionID *int   `json:"question_id,omitempty"`
	Model      string `json:"model,omitempty"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageView struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// sessionView is the client-facing shape of a session. The canonical answer
// is never included.
type sessionView struct {
	ID          string        `json:"id"`
	Model       string        `json:"model"`
	QuestionID  int           `json:"question_id"`
	Question    string        `json:"question"`
	Description string        `json:"description"`
	Available   bool          `json:"available"`
	Attempts    int           `json:"attempts"`
	MaxAttempts int           `json:"max_attempts"`
	Node        string        `json:"node"`
	LastOutcome string        `json:"last_outcome,omitempty"`
	Answered    int           `json:"answered"`
	Correct     int           `json:"correct"`
	Replies     []messageView `json:"replies,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

func newSessionView(st *session.State, model string) sessionView {
	if st.Model != "" {
		model = st.Model
	}
	return sessionView{
		ID:          st.ID,
		Model:       model,
		QuestionID:  st.QuestionID,
		Question:    st.Question,
		Description: st.Description,
		Available:   st.HasQuestion(),
		Attempts:    st.Attempts,
		MaxAttempts: session.MaxAttempts,
		Node:        string(st.Node),
		LastOutcome: string(st.LastOutcome),
		Answered:    st.Answered,
		Correct:     st.Correct,
		CreatedAt:   st.CreatedAt,
		UpdatedAt:   st.UpdatedAt,
	}
}

func messagesView(msgs []session.Message) []messageView {
	out := make([]messageView, len(msgs))
	for i, m := range msgs {
		out[i] = messageView{Role: string(m.Role), Text: m.Text, At: m.At}
	}
	return out
}
