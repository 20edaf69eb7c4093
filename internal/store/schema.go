package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableLLMRequests = "llm_request_events"
	tableAnswers     = "answer_events"
)

// Both event tables share the sequence and timestamp columns; sequence is
// assigned from the global counter so rows order across tables.
var (
	llmRequestColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString, Default: ""},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	llmRequestTable = &schema.Table{
		Name:       tableLLMRequests,
		Columns:    llmRequestColumns,
		PrimaryKey: []*schema.Column{llmRequestColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{llmRequestColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{llmRequestColumns[6]}},
			{Name: "llmrequestevent_model", Columns: []*schema.Column{llmRequestColumns[5]}},
		},
	}

	answerColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "session_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeInt},
		{Name: "lookup_key", Type: field.TypeString},
		{Name: "attempt", Type: field.TypeInt},
		{Name: "correct", Type: field.TypeBool},
		{Name: "user_answer", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "model", Type: field.TypeString, Default: ""},
		{Name: "classifier", Type: field.TypeString, Default: ""},
	}
	answerTable = &schema.Table{
		Name:       tableAnswers,
		Columns:    answerColumns,
		PrimaryKey: []*schema.Column{answerColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answerevent_session_id", Columns: []*schema.Column{answerColumns[3]}},
			{Name: "answerevent_question_id", Columns: []*schema.Column{answerColumns[4]}},
		},
	}

	tables = []*schema.Table{llmRequestTable, answerTable}
)
