package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/abhisek/codequiz/internal/questions"
	"github.com/abhisek/codequiz/internal/store"
)

// Chain combines hooks so each set observes every transition in order.
func Chain(hooks ...Hooks) Hooks {
	var out Hooks
	for _, h := range hooks {
		if h.OnQuestion != nil {
			prev := out.OnQuestion
			out.OnQuestion = func(ctx context.Context, st *State, rec questions.Record) {
				if prev != nil {
					prev(ctx, st, rec)
				}
				h.OnQuestion(ctx, st, rec)
			}
		}
		if h.OnGraded != nil {
			prev := out.OnGraded
			out.OnGraded = func(ctx context.Context, st *State, g Graded) {
				if prev != nil {
					prev(ctx, st, g)
				}
				h.OnGraded(ctx, st, g)
			}
		}
		if h.OnError != nil {
			prev := out.OnError
			out.OnError = func(ctx context.Context, st *State, node Node, err error) {
				if prev != nil {
					prev(ctx, st, node, err)
				}
				h.OnError(ctx, st, node, err)
			}
		}
	}
	return out
}

// RecordAnswers returns hooks that append every graded answer to repo.
// defaultModel is recorded for conversations that use the registry default.
// A failed write is logged and never fails the turn.
func RecordAnswers(repo store.EventRepo, classifier, defaultModel string, logger *zap.Logger) Hooks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Hooks{
		OnGraded: func(ctx context.Context, st *State, g Graded) {
			model := st.Model
			if model == "" {
				model = defaultModel
			}
			err := repo.AppendAnswer(ctx, store.AnswerEventData{
				SessionID:  st.ID,
				QuestionID: g.QuestionID,
				LookupKey:  g.LookupKey,
				Attempt:    g.Attempt,
				Correct:    g.Outcome == OutcomeCorrect,
				UserAnswer: g.UserAnswer,
				Model:      model,
				Classifier: classifier,
			})
			if err != nil {
				logger.Warn("failed to record answer event", zap.String("session", st.ID), zap.Error(err))
			}
		},
	}
}
