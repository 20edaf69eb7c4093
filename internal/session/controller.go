package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/codequiz/internal/grading"
	"github.com/abhisek/codequiz/internal/llm"
	"github.com/abhisek/codequiz/internal/questions"
)

// NoQuestionMessage is shown when the store has no question for the id.
const NoQuestionMessage = "Sorry, no question is available at the moment."

var (
	// ErrModelUnavailable is returned when grading fails.
	ErrModelUnavailable = grading.ErrModelUnavailable

	// ErrStoreUnavailable is returned when the question store fails.
	ErrStoreUnavailable = questions.ErrStoreUnavailable

	// ErrEmptyAnswer is returned for a blank user message.
	ErrEmptyAnswer = errors.New("answer is empty")
)

// ModelResolver maps a conversation's model key to a provider.
type ModelResolver interface {
	Get(key string) (llm.Provider, error)
}

// Graded describes one graded answer. QuestionID and LookupKey refer to the
// question that was answered, before any advance.
type Graded struct {
	QuestionID int
	LookupKey  string
	Attempt    int // 1-based
	UserAnswer string
	Judgement  grading.Judgement
	Outcome    Outcome
}

// Hooks observe controller transitions. Every field is optional.
type Hooks struct {
	OnQuestion func(ctx context.Context, st *State, rec questions.Record)
	OnGraded   func(ctx context.Context, st *State, g Graded)
	OnError    func(ctx context.Context, st *State, node Node, err error)
}

// ControllerConfig configures a Controller.
type ControllerConfig struct {
	KeyTemplate string
	Hooks       Hooks
	Logger      *zap.Logger
}

// Controller drives the two-node conversation graph:
//
//	generate_question -> check_answer
//	check_answer -continue-> check_answer
//	check_answer -new_question-> generate_question
//
// It is stateless between calls and safe for concurrent use on distinct
// States.
type Controller struct {
	questions questions.Store
	grader    *grading.Grader
	models    ModelResolver
	cfg       ControllerConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewController wires a controller to its question store, grader and model
// registry.
func NewController(qs questions.Store, g *grading.Grader, models ModelResolver, cfg ControllerConfig) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		questions: qs,
		grader:    g,
		models:    models,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start runs the entry node and returns the state with the first question
// presented. st is not modified.
func (c *Controller) Start(ctx context.Context, st *State) (*State, error) {
	next := st.Clone()
	if err := c.generateQuestion(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Turn appends the user's message and advances the graph until it waits for
// the next user message. On error st is left untouched and nothing is
// written to the transcript.
func (c *Controller) Turn(ctx context.Context, st *State, userText string) (*State, error) {
	answer := strings.TrimSpace(userText)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	next := st.Clone()

	// Nothing to grade: either the conversation has not started or the
	// last fetch found no question. Retry the fetch on this turn.
	if !next.HasQuestion() {
		next.append(RoleUser, answer, c.now())
		if err := c.generateQuestion(ctx, next); err != nil {
			return nil, err
		}
		return next, nil
	}

	next.append(RoleUser, answer, c.now())

	graded, err := c.checkAnswer(ctx, next, answer)
	if err != nil {
		return nil, err
	}

	if edgeFor(graded.Outcome) == EdgeNewQuestion {
		if err := c.generateQuestion(ctx, next); err != nil {
			return nil, err
		}
	}

	// Only a committed turn is reported; a failed one is resent and regraded.
	if c.cfg.Hooks.OnGraded != nil {
		c.cfg.Hooks.OnGraded(ctx, next, graded)
	}
	return next, nil
}

// generateQuestion fetches the record for st.QuestionID, resets attempts and
// presents it.
func (c *Controller) generateQuestion(ctx context.Context, st *State) error {
	st.Node = NodeGenerateQuestion
	key := questions.LookupKey(c.cfg.KeyTemplate, st.QuestionID)

	rec, err := c.questions.Fetch(ctx, st.QuestionID)
	if err != nil {
		if !errors.Is(err, questions.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", questions.ErrStoreUnavailable, err)
		}
		c.fail(ctx, st, NodeGenerateQuestion, err)
		return fmt.Errorf("generate question %d: %w", st.QuestionID, err)
	}

	st.LookupKey = key
	st.Question = rec.Title
	st.Description = rec.Description
	st.CorrectAnswer = rec.Answer
	st.Attempts = 0
	st.Node = NodeCheckAnswer

	if rec.Available() {
		st.append(RoleAssistant, rec.Title+"\n\n"+rec.Description, c.now())
	} else {
		st.LastOutcome = OutcomeNoQuestion
		st.append(RoleAssistant, NoQuestionMessage, c.now())
	}

	c.logger.Debug("question presented",
		zap.String("session", st.ID),
		zap.Int("question_id", st.QuestionID),
		zap.String("key", key),
		zap.Bool("available", rec.Available()),
	)
	if c.cfg.Hooks.OnQuestion != nil {
		c.cfg.Hooks.OnQuestion(ctx, st, rec)
	}
	return nil
}

// checkAnswer grades answer and applies the verdict to st.
func (c *Controller) checkAnswer(ctx context.Context, st *State, answer string) (Graded, error) {
	provider, err := c.models.Get(st.Model)
	if err != nil {
		c.fail(ctx, st, NodeCheckAnswer, err)
		return Graded{}, err
	}

	ctx = llm.WithSession(ctx, st.ID)
	j, err := c.grader.Grade(ctx, provider, grading.Input{
		Question:   st.Question,
		Answer:     st.CorrectAnswer,
		UserAnswer: answer,
	})
	if err != nil {
		c.fail(ctx, st, NodeCheckAnswer, err)
		return Graded{}, fmt.Errorf("check answer: %w", err)
	}

	graded := Graded{
		QuestionID: st.QuestionID,
		LookupKey:  st.LookupKey,
		Attempt:    st.Attempts + 1,
		UserAnswer: answer,
		Judgement:  j,
	}

	now := c.now()
	st.Answered++

	var outcome Outcome
	if j.Verdict == grading.Correct {
		st.Correct++
		st.append(RoleAssistant, j.Text, now)
		st.QuestionID++
		outcome = OutcomeCorrect
	} else {
		st.Attempts++
		if st.Attempts < MaxAttempts {
			st.append(RoleAssistant, j.Text+" You have one more attempt.", now)
			outcome = OutcomeRetry
		} else {
			st.append(RoleAssistant, fmt.Sprintf("%s The correct answer was: %s. Let's move on to the next question.",
				j.Text, st.CorrectAnswer), now)
			outcome = OutcomeExhausted
		}
	}
	st.LastOutcome = outcome
	graded.Outcome = outcome

	c.logger.Debug("answer graded",
		zap.String("session", st.ID),
		zap.Int("question_id", graded.QuestionID),
		zap.Stringer("verdict", j.Verdict),
		zap.Int("attempts", st.Attempts),
		zap.String("edge", edgeFor(outcome)),
	)
	return graded, nil
}

func (c *Controller) fail(ctx context.Context, st *State, node Node, err error) {
	c.logger.Warn("turn failed",
		zap.String("session", st.ID),
		zap.String("node", string(node)),
		zap.Error(err),
	)
	if c.cfg.Hooks.OnError != nil {
		c.cfg.Hooks.OnError(ctx, st, node, err)
	}
}
