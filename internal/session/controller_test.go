package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/codequiz/internal/grading"
	"github.com/abhisek/codequiz/internal/llm"
	"github.com/abhisek/codequiz/internal/questions"
)

// fakeQuestions serves records by id and counts fetches.
type fakeQuestions struct {
	records map[int]questions.Record
	err     error
	fetches []int
}

func (f *fakeQuestions) Fetch(_ context.Context, id int) (questions.Record, error) {
	f.fetches = append(f.fetches, id)
	if f.err != nil {
		return questions.Record{}, f.err
	}
	if r, ok := f.records[id]; ok {
		return r, nil
	}
	return questions.NoQuestion, nil
}

type fakeModels struct {
	p   llm.Provider
	err error
}

func (f fakeModels) Get(string) (llm.Provider, error) { return f.p, f.err }

func bank() map[int]questions.Record {
	m := make(map[int]questions.Record)
	for i := 1; i <= 6; i++ {
		m[i] = questions.Record{
			Title:       fmt.Sprintf("Question %d", i),
			Description: fmt.Sprintf("Describe %d.", i),
			Answer:      fmt.Sprintf("answer-%d", i),
		}
	}
	return m
}

func newTestController(qs questions.Store, replies ...string) (*Controller, *llm.MockProvider) {
	var resps []llm.MockResponse
	for _, r := range replies {
		resps = append(resps, llm.TextResponse(r))
	}
	mock := llm.NewMockProvider(resps...)
	c := NewController(qs, grading.New(nil, grading.DefaultConfig()), fakeModels{p: mock}, ControllerConfig{})
	return c, mock
}

func started(t *testing.T, c *Controller, id int) *State {
	t.Helper()
	st, err := c.Start(context.Background(), New("s1", id, ""))
	require.NoError(t, err)
	return st
}

func TestStart_PresentsQuestion(t *testing.T) {
	c, _ := newTestController(&fakeQuestions{records: bank()})
	st := started(t, c, 5)

	assert.Equal(t, 0, st.Attempts)
	assert.Equal(t, "Question 5", st.Question)
	assert.Equal(t, "Describe 5.", st.Description)
	assert.Equal(t, "answer-5", st.CorrectAnswer)
	assert.Equal(t, "LoLju0t00s5", st.LookupKey)
	assert.Equal(t, NodeCheckAnswer, st.Node)
	require.Len(t, st.Messages, 1)
	assert.Equal(t, Message{Role: RoleAssistant, Text: "Question 5\n\nDescribe 5.", At: st.Messages[0].At}, st.Messages[0])
}

func TestStart_NoQuestion(t *testing.T) {
	c, _ := newTestController(&fakeQuestions{records: bank()})
	st := started(t, c, 99)

	assert.Equal(t, 0, st.Attempts)
	assert.Equal(t, "No question available", st.Question)
	assert.Equal(t, "Please try again later", st.Description)
	assert.Equal(t, "", st.CorrectAnswer)
	assert.Equal(t, 99, st.QuestionID)
	assert.Equal(t, OutcomeNoQuestion, st.LastOutcome)
	require.Len(t, st.Messages, 1)
	assert.Equal(t, NoQuestionMessage, st.Messages[0].Text)
	assert.False(t, st.HasQuestion())
}

func TestStart_DoesNotMutateInput(t *testing.T) {
	c, _ := newTestController(&fakeQuestions{records: bank()})
	in := New("s1", 1, "")
	_, err := c.Start(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, in.Messages)
	assert.Equal(t, NodeGenerateQuestion, in.Node)
}

func TestTurn_CorrectAdvances(t *testing.T) {
	qs := &fakeQuestions{records: bank()}
	c, mock := newTestController(qs, "Correct! Brilliant work.")
	st := started(t, c, 2)

	next, err := c.Turn(context.Background(), st, "answer-2")
	require.NoError(t, err)

	assert.Equal(t, 3, next.QuestionID)
	assert.Equal(t, 0, next.Attempts)
	assert.Equal(t, OutcomeCorrect, next.LastOutcome)
	assert.Equal(t, "Question 3", next.Question)
	assert.Equal(t, []int{2, 3}, qs.fetches)
	assert.Equal(t, 1, mock.CallCount())

	texts := transcript(next)
	assert.Equal(t, []string{
		"Question 2\n\nDescribe 2.",
		"answer-2",
		"Correct! Brilliant work.",
		"Question 3\n\nDescribe 3.",
	}, texts)
	assert.Equal(t, 1, next.Answered)
	assert.Equal(t, 1, next.Correct)
}

func TestTurn_TwoIncorrectRevealsAnswer(t *testing.T) {
	qs := &fakeQuestions{records: bank()}
	c, _ := newTestController(qs,
		"Not quite, think about the loop bounds.",
		"Still wrong, the index starts at zero.",
	)
	st := started(t, c, 4)

	st1, err := c.Turn(context.Background(), st, "first try")
	require.NoError(t, err)
	assert.Equal(t, 1, st1.Attempts)
	assert.Equal(t, OutcomeRetry, st1.LastOutcome)
	last, _ := st1.LastMessage()
	assert.Equal(t, "Not quite, think about the loop bounds. You have one more attempt.", last.Text)
	assert.NotContains(t, last.Text, "answer-4")

	st2, err := c.Turn(context.Background(), st1, "second try")
	require.NoError(t, err)
	assert.Equal(t, OutcomeExhausted, st2.LastOutcome)
	assert.Equal(t, 4, st2.QuestionID, "identifier unchanged after exhausted attempts")
	assert.Equal(t, 0, st2.Attempts, "reset by generate_question")

	texts := transcript(st2)
	reveal := texts[len(texts)-2]
	assert.Equal(t, "Still wrong, the index starts at zero. The correct answer was: answer-4. Let's move on to the next question.", reveal)
	assert.True(t, strings.HasSuffix(reveal, "Let's move on to the next question."))
	assert.Equal(t, "Question 4\n\nDescribe 4.", texts[len(texts)-1])
	assert.Equal(t, []int{4, 4}, qs.fetches)
}

func TestTurn_SubstringFalsePositiveAdvances(t *testing.T) {
	c, _ := newTestController(&fakeQuestions{records: bank()}, "That is not correct.")
	st := started(t, c, 1)

	next, err := c.Turn(context.Background(), st, "wrong")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCorrect, next.LastOutcome)
	assert.Equal(t, 2, next.QuestionID)
}

func TestTurn_AttemptsStayInRange(t *testing.T) {
	c, _ := newTestController(&fakeQuestions{records: bank()},
		"no", "no", "no", "Correct!", "no", "no",
	)
	st := started(t, c, 1)

	for i := 0; i < 6; i++ {
		next, err := c.Turn(context.Background(), st, fmt.Sprintf("answer %d", i))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, next.Attempts, 0)
		assert.LessOrEqual(t, next.Attempts, MaxAttempts)
		if next.QuestionID != st.QuestionID {
			assert.Equal(t, 0, next.Attempts)
		}
		st = next
	}
}

func TestTurn_ModelFailureLeavesStateUntouched(t *testing.T) {
	qs := &fakeQuestions{records: bank()}
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("502")}})
	c := NewController(qs, grading.New(nil, grading.DefaultConfig()), fakeModels{p: mock}, ControllerConfig{})
	st := started(t, c, 1)
	before := st.Clone()

	next, err := c.Turn(context.Background(), st, "my answer")
	require.Error(t, err)
	assert.Nil(t, next)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.Equal(t, before, st)
}

func TestTurn_UnknownModel(t *testing.T) {
	c := NewController(&fakeQuestions{records: bank()}, grading.New(nil, grading.DefaultConfig()),
		fakeModels{err: llm.ErrUnknownModel}, ControllerConfig{})
	st := started(t, c, 1)

	_, err := c.Turn(context.Background(), st, "x")
	assert.ErrorIs(t, err, llm.ErrUnknownModel)
}

func TestTurn_StoreFailure(t *testing.T) {
	qs := &fakeQuestions{records: bank()}
	c, _ := newTestController(qs, "Correct!")
	st := started(t, c, 1)

	qs.err = errors.New("bolt: connection reset")
	_, err := c.Turn(context.Background(), st, "answer-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, 1, st.QuestionID)
	assert.Len(t, st.Messages, 1)
}

func TestTurn_FailedTurnIsNotReported(t *testing.T) {
	var graded []Graded
	var failures []Node

	qs := &fakeQuestions{records: bank()}
	mock := llm.NewMockProvider(llm.TextResponse("Correct!"), llm.TextResponse("Correct! Again."))
	c := NewController(qs, grading.New(nil, grading.DefaultConfig()), fakeModels{p: mock}, ControllerConfig{
		Hooks: Hooks{
			OnGraded: func(_ context.Context, _ *State, g Graded) { graded = append(graded, g) },
			OnError:  func(_ context.Context, _ *State, n Node, _ error) { failures = append(failures, n) },
		},
	})
	st := started(t, c, 1)

	qs.err = errors.New("bolt: connection reset")
	_, err := c.Turn(context.Background(), st, "answer-1")
	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Empty(t, graded)
	assert.Equal(t, []Node{NodeGenerateQuestion}, failures)
	assert.Equal(t, 0, st.Answered)

	qs.err = nil
	next, err := c.Turn(context.Background(), st, "answer-1")
	require.NoError(t, err)

	assert.Equal(t, 2, mock.CallCount())
	assert.Equal(t, 1, next.Answered)
	assert.Equal(t, 2, next.QuestionID)
	require.Len(t, graded, 1)
	assert.Equal(t, 1, graded[0].QuestionID)
	assert.Equal(t, 1, graded[0].Attempt)
	assert.Equal(t, OutcomeCorrect, graded[0].Outcome)
}

func TestTurn_NoQuestionRetriesFetch(t *testing.T) {
	qs := &fakeQuestions{records: map[int]questions.Record{}}
	c, mock := newTestController(qs)
	st := started(t, c, 7)
	require.False(t, st.HasQuestion())

	qs.records[7] = questions.Record{Title: "Late", Description: "Arrived.", Answer: "a"}
	next, err := c.Turn(context.Background(), st, "hello?")
	require.NoError(t, err)

	assert.Equal(t, 0, mock.CallCount(), "nothing to grade")
	assert.Equal(t, 7, next.QuestionID)
	assert.True(t, next.HasQuestion())
	assert.Equal(t, []string{NoQuestionMessage, "hello?", "Late\n\nArrived."}, transcript(next))
}

func TestTurn_EmptyAnswer(t *testing.T) {
	c, mock := newTestController(&fakeQuestions{records: bank()})
	st := started(t, c, 1)

	_, err := c.Turn(context.Background(), st, "   ")
	assert.ErrorIs(t, err, ErrEmptyAnswer)
	assert.Equal(t, 0, mock.CallCount())
}

func TestTurn_GradingRequest(t *testing.T) {
	c, mock := newTestController(&fakeQuestions{records: bank()}, "Correct!")
	st := started(t, c, 3)

	_, err := c.Turn(context.Background(), st, "  my answer  ")
	require.NoError(t, err)

	req := mock.Calls[0]
	require.Len(t, req.Messages, 1)
	assert.Equal(t, llm.RoleUser, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "Question: Question 3\n")
	assert.Contains(t, req.Messages[0].Content, "Correct answer(s): answer-3\n")
	assert.Contains(t, req.Messages[0].Content, "User's answer: my answer\n")
	assert.NotEmpty(t, req.System)
}

func TestHooks(t *testing.T) {
	var presented []string
	var graded []Graded
	var failures []Node

	qs := &fakeQuestions{records: bank()}
	mock := llm.NewMockProvider(llm.TextResponse("nope"), llm.TextResponse("Correct!"), llm.MockResponse{Err: &llm.ErrRateLimit{}})
	c := NewController(qs, grading.New(nil, grading.DefaultConfig()), fakeModels{p: mock}, ControllerConfig{
		Hooks: Hooks{
			OnQuestion: func(_ context.Context, _ *State, r questions.Record) { presented = append(presented, r.Title) },
			OnGraded:   func(_ context.Context, _ *State, g Graded) { graded = append(graded, g) },
			OnError:    func(_ context.Context, _ *State, n Node, _ error) { failures = append(failures, n) },
		},
	})

	st := started(t, c, 1)
	st, err := c.Turn(context.Background(), st, "a")
	require.NoError(t, err)
	st, err = c.Turn(context.Background(), st, "b")
	require.NoError(t, err)
	_, err = c.Turn(context.Background(), st, "c")
	require.Error(t, err)

	assert.Equal(t, []string{"Question 1", "Question 2"}, presented)
	require.Len(t, graded, 2)
	assert.Equal(t, Graded{QuestionID: 1, LookupKey: "LoLju0t00s1", Attempt: 1, UserAnswer: "a",
		Judgement: grading.Judgement{Verdict: grading.Incorrect, Text: "nope"}, Outcome: OutcomeRetry}, graded[0])
	assert.Equal(t, 1, graded[1].QuestionID)
	assert.Equal(t, 2, graded[1].Attempt)
	assert.Equal(t, OutcomeCorrect, graded[1].Outcome)
	assert.Equal(t, []Node{NodeCheckAnswer}, failures)
}

func TestStateClone(t *testing.T) {
	st := New("s", 1, "gpt-4o")
	st.append(RoleUser, "hi", st.CreatedAt)
	c := st.Clone()
	c.Messages[0].Text = "changed"
	c.append(RoleAssistant, "more", st.CreatedAt)

	assert.Equal(t, "hi", st.Messages[0].Text)
	assert.Len(t, st.Messages, 1)
}

func transcript(st *State) []string {
	out := make([]string, len(st.Messages))
	for i, m := range st.Messages {
		out[i] = m.Text
	}
	return out
}
