package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/codequiz/internal/config"
	"github.com/abhisek/codequiz/internal/grading"
	"github.com/abhisek/codequiz/internal/llm"
	"github.com/abhisek/codequiz/internal/questions"
	"github.com/abhisek/codequiz/internal/session"
	"github.com/abhisek/codequiz/internal/store"
)

// loadConfig reads env files named by --env-file (or .env) and the process
// environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	files, _ := cmd.Flags().GetStringSlice("env-file")
	return config.Load(files...)
}

// quiz holds everything a front end needs to run conversations.
type quiz struct {
	cfg        *config.Config
	store      *store.Store
	questions  questions.Store
	models     *llm.Registry
	grader     *grading.Grader
	controller *session.Controller
	closers    []func()
}

func (q *quiz) Close() {
	for i := len(q.closers) - 1; i >= 0; i-- {
		q.closers[i]()
	}
}

// buildQuiz opens the event store, the question source and the model
// registry, and wires them into a controller. extra hooks run after the
// answer recorder.
func buildQuiz(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *zap.Logger, extra ...session.Hooks) (*quiz, error) {
	q := &quiz{cfg: cfg}
	ok := false
	defer func() {
		if !ok {
			q.Close()
		}
	}()

	st, err := openStore(cmd)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	q.store = st
	q.closers = append(q.closers, func() { st.Close() })

	qs, closeQS, err := openQuestions(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	q.questions = qs
	q.closers = append(q.closers, closeQS)

	models, err := llm.NewRegistry(ctx, cfg.LLM, st.Events(), logger)
	if err != nil {
		return nil, fmt.Errorf("build model registry: %w", err)
	}
	q.models = models

	classifier, err := grading.ClassifierByName(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	q.grader = grading.New(classifier, cfg.Grading())

	hooks := append([]session.Hooks{
		session.RecordAnswers(st.Events(), classifier.Name(), models.Default(), logger),
	}, extra...)

	q.controller = session.NewController(qs, q.grader, models, session.ControllerConfig{
		KeyTemplate: cfg.Neo4j.KeyTemplate,
		Hooks:       session.Chain(hooks...),
		Logger:      logger,
	})

	ok = true
	return q, nil
}

// openQuestions connects the configured question source.
func openQuestions(ctx context.Context, cfg *config.Config, logger *zap.Logger) (questions.Store, func(), error) {
	switch cfg.Questions.Source {
	case config.SourceFile:
		bank, err := questions.LoadFile(cfg.Questions.BankPath, cfg.Neo4j.KeyTemplate)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("question bank loaded", zap.String("path", cfg.Questions.BankPath), zap.Int("questions", bank.Len()))
		return bank, func() {}, nil
	default:
		ns, err := questions.Open(ctx, cfg.Neo4j, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to neo4j", zap.String("uri", cfg.Neo4j.URI))
		return ns, func() { _ = ns.Close(context.Background()) }, nil
	}
}
