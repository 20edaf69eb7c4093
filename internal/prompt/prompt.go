// Package prompt builds the text sent to the model when grading an answer.
package prompt

import (
	"bytes"
	"text/template"
)

// SystemInstructions is the tutor preamble sent as the system prompt of
// every model call. It is never stored in the conversation transcript.
const SystemInstructions = `You are a helpful AP Computer Science A coding assistant. You will present questions to the user and evaluate their answers.

A few things to remember:
- Present the question clearly to the user.
- Evaluate the user's answer based on the correct answer(s) provided.
- If the answer is incorrect, explain why without revealing the correct answer on the first attempt.`

// EvaluationInput carries the three values interpolated into a grading prompt.
type EvaluationInput struct {
	Question   string
	Answer     string
	UserAnswer string
}

var evaluationTemplate = template.Must(template.New("evaluation").Parse(`Question: {{.Question}}
Correct answer(s): {{.Answer}}
User's answer: {{.UserAnswer}}

Is the user's answer correct? If so, please say so and praise the user enthusiastically.
If not, explain why it's wrong without revealing the correct answer or using the word 'correct'.`))

var structuredTemplate = template.Must(template.New("structured").Parse(`Question: {{.Question}}
Correct answer(s): {{.Answer}}
User's answer: {{.UserAnswer}}

Decide whether the user's answer is correct and set "verdict" accordingly.
In "feedback", praise the user enthusiastically when it is correct. When it is not, explain why it's wrong without revealing the correct answer.`))

// Evaluation renders the grading prompt for one user answer.
func Evaluation(question, answer, userAnswer string) string {
	return render(evaluationTemplate, EvaluationInput{Question: question, Answer: answer, UserAnswer: userAnswer})
}

// StructuredEvaluation renders the grading prompt used with the verdict
// schema.
func StructuredEvaluation(question, answer, userAnswer string) string {
	return render(structuredTemplate, EvaluationInput{Question: question, Answer: answer, UserAnswer: userAnswer})
}

func render(t *template.Template, in EvaluationInput) string {
	var buf bytes.Buffer
	// Templates are parsed at init and only reference string fields, so
	// Execute cannot fail.
	_ = t.Execute(&buf, in)
	return buf.String()
}
