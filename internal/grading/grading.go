// Package grading turns a user's answer into a verdict by asking a model and
// classifying its reply.
package grading

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/codequiz/internal/llm"
)

// ErrModelUnavailable is returned when the grading call fails for any
// reason. The caller decides whether to retry the turn.
var ErrModelUnavailable = errors.New("language model unavailable")

// Verdict is the outcome of grading one answer.
type Verdict int

const (
	Incorrect Verdict = iota
	Correct
)

func (v Verdict) String() string {
	if v == Correct {
		return "correct"
	}
	return "incorrect"
}

// Judgement is a verdict plus the model's reply shown to the user.
type Judgement struct {
	Verdict Verdict
	Text    string
}

// Input is one answer to grade against the active question.
type Input struct {
	Question   string
	Answer     string
	UserAnswer string
}

// Classifier builds the grading request and maps the model's reply to a
// Judgement.
type Classifier interface {
	Name() string
	Request(in Input) llm.Request
	Classify(raw string) (Judgement, error)
}

// Config holds generation parameters for grading calls.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{MaxTokens: 512, Temperature: 0.2}
}

// Grader makes exactly one model call per answer. It never retries.
type Grader struct {
	classifier Classifier
	cfg        Config
}

// New creates a Grader. A nil classifier selects SubstringClassifier.
func New(c Classifier, cfg Config) *Grader {
	if c == nil {
		c = SubstringClassifier{}
	}
	return &Grader{classifier: c, cfg: cfg}
}

// Classifier returns the classifier in use.
func (g *Grader) Classifier() Classifier {
	return g.classifier
}

// Grade asks p to evaluate in and classifies the reply.
func (g *Grader) Grade(ctx context.Context, p llm.Provider, in Input) (Judgement, error) {
	ctx = llm.WithPurpose(ctx, "grading-"+g.classifier.Name())

	req := g.classifier.Request(in)
	if req.MaxTokens == 0 {
		req.MaxTokens = g.cfg.MaxTokens
	}
	if req.Temperature == 0 {
		req.Temperature = g.cfg.Temperature
	}

	resp, err := p.Generate(ctx, req)
	if err != nil {
		return Judgement{}, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	j, err := g.classifier.Classify(resp.Text())
	if err != nil {
		return Judgement{}, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}
	return j, nil
}
