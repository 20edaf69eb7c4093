package prompt

import (
	"strings"
	"testing"
)

func TestEvaluation_InterpolatesAllValues(t *testing.T) {
	got := Evaluation("Reverse a String", "new StringBuilder(s).reverse()", "use a loop")

	for _, want := range []string{
		"Question: Reverse a String\n",
		"Correct answer(s): new StringBuilder(s).reverse()\n",
		"User's answer: use a loop\n",
		"praise the user enthusiastically",
		"without revealing the correct answer or using the word 'correct'",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestEvaluation_NoEscaping(t *testing.T) {
	got := Evaluation("a < b && c > d", "x", "<script>")
	if !strings.Contains(got, "a < b && c > d") || !strings.Contains(got, "<script>") {
		t.Errorf("text must not be HTML-escaped:\n%s", got)
	}
}

func TestStructuredEvaluation(t *testing.T) {
	got := StructuredEvaluation("Q", "A", "U")
	if !strings.HasPrefix(got, "Question: Q\nCorrect answer(s): A\nUser's answer: U\n") {
		t.Errorf("unexpected header:\n%s", got)
	}
	if !strings.Contains(got, `"verdict"`) || !strings.Contains(got, `"feedback"`) {
		t.Errorf("structured prompt must name the schema fields:\n%s", got)
	}
}

func TestSystemInstructions(t *testing.T) {
	if !strings.Contains(SystemInstructions, "AP Computer Science A") {
		t.Error("system instructions must set the tutor role")
	}
}
