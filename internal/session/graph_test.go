package session

import (
	"strings"
	"testing"
)

func TestConversationGraph(t *testing.T) {
	g := ConversationGraph()
	if g.Entry != NodeGenerateQuestion {
		t.Fatalf("entry = %s, want %s", g.Entry, NodeGenerateQuestion)
	}
	if len(g.Nodes) != 2 || len(g.Edges) != 3 {
		t.Fatalf("got %d nodes and %d edges, want 2 and 3", len(g.Nodes), len(g.Edges))
	}
}

func TestEdgeFor(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeCorrect, EdgeNewQuestion},
		{OutcomeExhausted, EdgeNewQuestion},
		{OutcomeRetry, EdgeContinue},
		{OutcomeNone, EdgeContinue},
	}
	for _, tt := range tests {
		if got := edgeFor(tt.outcome); got != tt.want {
			t.Errorf("edgeFor(%q) = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}

func TestMermaid(t *testing.T) {
	out := ConversationGraph().Mermaid()
	for _, want := range []string{
		"flowchart TD",
		"__start__([start]) --> generate_question",
		"generate_question --> check_answer",
		"check_answer -. continue .-> check_answer",
		"check_answer -. new_question .-> generate_question",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("mermaid output missing %q:\n%s", want, out)
		}
	}
}
