// Package config loads codequiz configuration from a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abhisek/codequiz/internal/grading"
	"github.com/abhisek/codequiz/internal/llm"
	"github.com/abhisek/codequiz/internal/questions"
)

// Question sources.
const (
	SourceNeo4j = "neo4j"
	SourceFile  = "file"
)

// Session backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all application configuration.
type Config struct {
	Env        string
	Log        LogConfig
	Questions  QuestionsConfig
	Neo4j      questions.Neo4jConfig
	Server     ServerConfig
	Sessions   SessionsConfig
	Classifier string
	LLM        llm.Config
}

// LogConfig controls logging.
type LogConfig struct {
	Level string
	File  string
}

// QuestionsConfig selects where questions come from.
type QuestionsConfig struct {
	Source   string
	BankPath string
	StartID  int
}

// ServerConfig controls the HTTP host.
type ServerConfig struct {
	Host string
	Port int
}

// SessionsConfig selects the session store.
type SessionsConfig struct {
	Backend       string
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads .env files (if present) and builds a Config from the
// environment. With no arguments it reads ./.env. Malformed numbers and
// durations are reported here; call Validate once flags have been applied.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	var env envReader
	cfg := &Config{
		Env: getEnv("CODEQUIZ_ENV", "development"),
		Log: LogConfig{
			Level: getEnv("CODEQUIZ_LOG_LEVEL", "info"),
			File:  getEnv("CODEQUIZ_LOG_FILE", ""),
		},
		Questions: QuestionsConfig{
			Source:   getEnv("CODEQUIZ_QUESTION_SOURCE", SourceNeo4j),
			BankPath: getEnv("CODEQUIZ_QUESTION_BANK", ""),
			StartID:  env.Int("CODEQUIZ_START_QUESTION", 1),
		},
		Neo4j: questions.Neo4jConfig{
			URI:         getEnv("CODEQUIZ_NEO4J_URI", "bolt://localhost:7687"),
			Username:    getEnv("CODEQUIZ_NEO4J_USER", "neo4j"),
			Password:    getEnv("CODEQUIZ_NEO4J_PASSWORD", os.Getenv("NEO4J_PASSWORD")),
			Database:    getEnv("CODEQUIZ_NEO4J_DATABASE", ""),
			KeyTemplate: getEnv("CODEQUIZ_KEY_TEMPLATE", questions.DefaultKeyTemplate),
			MaxPoolSize: env.Int("CODEQUIZ_NEO4J_POOL_SIZE", 0),
		},
		Server: ServerConfig{
			Host: getEnv("CODEQUIZ_HOST", "127.0.0.1"),
			Port: env.Int("CODEQUIZ_PORT", 8080),
		},
		Sessions: SessionsConfig{
			Backend:       getEnv("CODEQUIZ_SESSION_BACKEND", BackendMemory),
			TTL:           env.Duration("CODEQUIZ_SESSION_TTL", 60*time.Minute),
			RedisAddr:     getEnv("CODEQUIZ_REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("CODEQUIZ_REDIS_PASSWORD", ""),
			RedisDB:       env.Int("CODEQUIZ_REDIS_DB", 0),
		},
		Classifier: getEnv("CODEQUIZ_CLASSIFIER", "substring"),
	}

	llmCfg, err := llm.ConfigFromEnv()
	if err != nil {
		env.errs = append(env.errs, err)
	}
	cfg.LLM = llmCfg

	if err := errors.Join(env.errs...); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, nil
}

// Grading returns the per-call limits for the grader.
func (c *Config) Grading() grading.Config {
	return grading.Config{MaxTokens: c.LLM.MaxTokens, Temperature: c.LLM.Temperature}
}

// IsProduction reports whether logs should be JSON.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production") || strings.EqualFold(c.Env, "prod")
}

// Validate fails fast on settings the process cannot run without.
func (c *Config) Validate() error {
	switch c.Questions.Source {
	case SourceNeo4j:
		if c.Neo4j.URI == "" {
			return fmt.Errorf("CODEQUIZ_NEO4J_URI cannot be empty")
		}
		if c.Neo4j.Password == "" {
			return fmt.Errorf("CODEQUIZ_NEO4J_PASSWORD is required for the neo4j question source")
		}
	case SourceFile:
		if c.Questions.BankPath == "" {
			return fmt.Errorf("CODEQUIZ_QUESTION_BANK is required for the file question source")
		}
	default:
		return fmt.Errorf("unknown question source %q (want %s or %s)", c.Questions.Source, SourceNeo4j, SourceFile)
	}
	if err := questions.ValidateKeyTemplate(c.Neo4j.KeyTemplate); err != nil {
		return fmt.Errorf("CODEQUIZ_KEY_TEMPLATE: %w", err)
	}
	if c.Questions.StartID < 0 {
		return fmt.Errorf("CODEQUIZ_START_QUESTION must not be negative, got %d", c.Questions.StartID)
	}

	switch c.Sessions.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Sessions.RedisAddr == "" {
			return fmt.Errorf("CODEQUIZ_REDIS_ADDR cannot be empty for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q (want %s or %s)", c.Sessions.Backend, BackendMemory, BackendRedis)
	}

	if c.Sessions.TTL <= 0 {
		return fmt.Errorf("CODEQUIZ_SESSION_TTL must be positive, got %s", c.Sessions.TTL)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if _, err := grading.ClassifierByName(c.Classifier); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

// Addr returns host:port for the HTTP server.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// envReader parses typed variables and keeps every parse failure so Load
// can report them together.
type envReader struct {
	errs []error
}

func (r *envReader) Int(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, value))
		return fallback
	}
	return n
}

func (r *envReader) Duration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a duration (e.g. 30m)", key, value))
		return fallback
	}
	return d
}
