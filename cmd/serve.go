package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/codequiz/internal/config"
	"github.com/abhisek/codequiz/internal/logging"
	"github.com/abhisek/codequiz/internal/metrics"
	"github.com/abhisek/codequiz/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve quiz conversations over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default CODEQUIZ_HOST:CODEQUIZ_PORT)")
	serveCmd.Flags().String("bank", "", "Serve questions from a YAML bank instead of Neo4j")
}

func runServe(cmd *cobra.Command, args []string) error {
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
	addr := cfg.Addr()
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		addr = a
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.Log.Level,
		Production: cfg.IsProduction(),
		File:       cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	q, err := buildQuiz(ctx, cmd, cfg, logger, m.Hooks())
	if err != nil {
		return err
	}
	defer q.Close()

	sessions, closeSessions, err := openSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	srv := server.New(server.Deps{
		Controller:      q.controller,
		Sessions:        sessions,
		Models:          q.models,
		Metrics:         m,
		Logger:          logger,
		StartQuestionID: cfg.Questions.StartID,
	})

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// Grading plus the next fetch can take as long as one model call.
		WriteTimeout: cfg.LLM.Timeout + 30*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", addr),
			zap.String("questions", cfg.Questions.Source),
			zap.String("sessions", cfg.Sessions.Backend),
			zap.String("classifier", cfg.Classifier),
			zap.String("default_model", q.models.Default()),
			zap.Strings("models", q.models.Keys()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
