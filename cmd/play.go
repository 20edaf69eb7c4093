package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/codequiz/internal/config"
	"github.com/abhisek/codequiz/internal/logging"
	"github.com/abhisek/codequiz/internal/session"
	"github.com/abhisek/codequiz/internal/sessionstore"
	"github.com/abhisek/codequiz/internal/tui"
	quiztui "github.com/abhisek/codequiz/internal/tui/quiz"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Answer quiz questions in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func init() {
	addPlayFlags(playCmd)
}

func addPlayFlags(cmd *cobra.Command) {
	cmd.Flags().Int("question", 0, "Question id to start from (default CODEQUIZ_START_QUESTION or 1)")
	cmd.Flags().String("model", "", "Model registry key used for grading (default CODEQUIZ_DEFAULT_MODEL)")
	cmd.Flags().String("bank", "", "Serve questions from a YAML bank instead of Neo4j")
	cmd.Flags().Bool("save", false, "Persist the conversation to the configured session backend")
}

// runPlay builds the quiz and launches the TUI.
func runPlay(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if bank, _ := cmd.Flags().GetString("bank"); bank != "" {
		cfg.Questions.Source = config.SourceFile
		cfg.Questions.BankPath = bank
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	model, _ := cmd.Flags().GetString("model")
	startID := cfg.Questions.StartID
	if q, _ := cmd.Flags().GetInt("question"); q > 0 {
		startID = q
	}

	// Console output would corrupt the screen, so logs only go to a file.
	logger, err := logging.FileOnly(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	q, err := buildQuiz(ctx, cmd, cfg, logger)
	if err != nil {
		return err
	}
	defer q.Close()

	if _, err := q.models.Get(model); err != nil {
		return fmt.Errorf("%w (available: %v)", err, q.models.Keys())
	}

	opts := quiztui.Options{
		Controller:      q.controller,
		SessionID:       uuid.NewString(),
		StartQuestionID: startID,
		Model:           model,
	}
	if save, _ := cmd.Flags().GetBool("save"); save {
		sessions, closeSessions, err := openSessions(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeSessions()
		opts.OnSave = func(ctx context.Context, st *session.State) error {
			return sessions.Save(ctx, st)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "session id:", opts.SessionID)
	}

	return tui.Run(quiztui.New(ctx, opts))
}

// openSessions connects the configured conversation store.
func openSessions(ctx context.Context, cfg *config.Config) (session.Store, func(), error) {
	if cfg.Sessions.Backend != config.BackendRedis {
		return sessionstore.NewMemory(cfg.Sessions.TTL), func() {}, nil
	}
	rs := sessionstore.NewRedis(cfg.Sessions.RedisAddr, cfg.Sessions.RedisPassword, cfg.Sessions.RedisDB,
		sessionstore.WithTTL(cfg.Sessions.TTL))
	if err := rs.Ping(ctx); err != nil {
		rs.Close()
		return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.Sessions.RedisAddr, err)
	}
	return rs, func() { rs.Close() }, nil
}
