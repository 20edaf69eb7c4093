package session

import (
	"fmt"
	"strings"
)

// Edge names leaving check_answer.
const (
	EdgeContinue    = "continue"
	EdgeNewQuestion = "new_question"
)

// Edge is a transition in the conversation graph.
type Edge struct {
	From Node
	To   Node
	// Name is empty for unconditional edges.
	Name string
}

// Graph describes the fixed conversation topology.
type Graph struct {
	Entry Node
	Nodes []Node
	Edges []Edge
}

// ConversationGraph returns the controller's topology.
func ConversationGraph() Graph {
	return Graph{
		Entry: NodeGenerateQuestion,
		Nodes: []Node{NodeGenerateQuestion, NodeCheckAnswer},
		Edges: []Edge{
			{From: NodeGenerateQuestion, To: NodeCheckAnswer},
			{From: NodeCheckAnswer, To: NodeCheckAnswer, Name: EdgeContinue},
			{From: NodeCheckAnswer, To: NodeGenerateQuestion, Name: EdgeNewQuestion},
		},
	}
}

// edgeFor picks the edge out of check_answer for a grading outcome.
func edgeFor(o Outcome) string {
	switch o {
	case OutcomeCorrect, OutcomeExhausted:
		return EdgeNewQuestion
	}
	return EdgeContinue
}

// Mermaid renders the graph as a Mermaid flowchart.
func (g Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart TD\n")
	fmt.Fprintf(&b, "    __start__([start]) --> %s\n", g.Entry)
	for _, e := range g.Edges {
		if e.Name == "" {
			fmt.Fprintf(&b, "    %s --> %s\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&b, "    %s -. %s .-> %s\n", e.From, e.Name, e.To)
	}
	return b.String()
}
