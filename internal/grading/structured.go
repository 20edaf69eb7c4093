package grading

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/codequiz/internal/llm"
	"github.com/abhisek/codequiz/internal/prompt"
)

// VerdictSchema is the structured output requested by StructuredClassifier.
var VerdictSchema = &llm.Schema{
	Name:        "answer-verdict",
	Description: "Whether the user's answer is correct, with feedback for the user",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"verdict": map[string]any{
				"type":        "string",
				"enum":        []any{"correct", "incorrect"},
				"description": "correct when the user's answer solves the question",
			},
			"feedback": map[string]any{
				"type":        "string",
				"description": "Praise when correct; otherwise why it is wrong, without revealing the answer",
			},
		},
		"required":             []any{"verdict", "feedback"},
		"additionalProperties": false,
	},
}

type verdictOutput struct {
	Verdict  string `json:"verdict"`
	Feedback string `json:"feedback"`
}

// StructuredClassifier asks the model for an explicit verdict field instead
// of scanning free text for a keyword.
type StructuredClassifier struct{}

func (StructuredClassifier) Name() string { return "structured" }

func (StructuredClassifier) Request(in Input) llm.Request {
	return llm.Request{
		System: prompt.SystemInstructions,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt.StructuredEvaluation(in.Question, in.Answer, in.UserAnswer)},
		},
		Schema: VerdictSchema,
	}
}

func (StructuredClassifier) Classify(raw string) (Judgement, error) {
	var out verdictOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Judgement{}, fmt.Errorf("parse verdict: %w", err)
	}

	text := strings.TrimSpace(out.Feedback)
	switch out.Verdict {
	case "correct":
		return Judgement{Verdict: Correct, Text: text}, nil
	case "incorrect":
		return Judgement{Verdict: Incorrect, Text: text}, nil
	}
	return Judgement{}, fmt.Errorf("unknown verdict %q", out.Verdict)
}

// ClassifierByName returns the classifier registered under name.
func ClassifierByName(name string) (Classifier, error) {
	switch name {
	case "", "substring":
		return SubstringClassifier{}, nil
	case "structured":
		return StructuredClassifier{}, nil
	}
	return nil, fmt.Errorf("unknown classifier %q", name)
}
