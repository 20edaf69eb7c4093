package grading

import (
	"strings"

	"github.com/abhisek/codequiz/internal/llm"
	"github.com/abhisek/codequiz/internal/prompt"
)

// SubstringClassifier marks a reply CORRECT when it contains "correct" in any
// case. The prompt tells the model not to use the word when the answer is
// wrong, but a reply such as "that is not correct" still classifies as
// CORRECT.
type SubstringClassifier struct{}

func (SubstringClassifier) Name() string { return "substring" }

func (SubstringClassifier) Request(in Input) llm.Request {
	return llm.Request{
		System: prompt.SystemInstructions,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt.Evaluation(in.Question, in.Answer, in.UserAnswer)},
		},
	}
}

func (SubstringClassifier) Classify(raw string) (Judgement, error) {
	text := strings.TrimSpace(raw)
	if strings.Contains(strings.ToLower(text), "correct") {
		return Judgement{Verdict: Correct, Text: text}, nil
	}
	return Judgement{Verdict: Incorrect, Text: text}, nil
}

