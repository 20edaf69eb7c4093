package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	SessionID string    // exact match when set
}

// LLMRequestEventData captures the data for a single model call.
type LLMRequestEventData struct {
	SessionID    string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored model call.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// AnswerEventData captures one graded user turn.
type AnswerEventData struct {
	SessionID  string
	QuestionID int
	LookupKey  string
	Attempt    int
	Correct    bool
	UserAnswer string
	Model      string
	Classifier string
}

// UsageRow aggregates model calls under one grouping key.
type UsageRow struct {
	Key          string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// QuestionStat aggregates graded answers for one question id.
type QuestionStat struct {
	QuestionID int
	Answers    int
	Correct    int
}

// AnswerSummary aggregates every graded answer.
type AnswerSummary struct {
	Sessions    int
	Answers     int
	Correct     int
	ByQuestion  []QuestionStat
	FirstTryHit int // questions answered correctly on attempt 1
}

// Accuracy returns Correct/Answers, or 0 when nothing was graded.
func (s AnswerSummary) Accuracy() float64 {
	if s.Answers == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Answers)
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records a model call.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// AppendAnswer records a graded user turn.
	AppendAnswer(ctx context.Context, data AnswerEventData) error
}
