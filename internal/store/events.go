package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// Events is the append-only event log. It implements EventRepo.
type Events struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

var _ EventRepo = (*Events)(nil)

func (e *Events) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := e.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableLLMRequests).
		Columns("sequence", "timestamp", "session_id", "provider", "model", "purpose",
			"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
			"request_body", "response_body").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
			data.RequestBody, data.ResponseBody).
		Query()
	if err := e.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (e *Events) AppendAnswer(ctx context.Context, data AnswerEventData) error {
	seqNum, err := e.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableAnswers).
		Columns("sequence", "timestamp", "session_id", "question_id", "lookup_key",
			"attempt", "correct", "user_answer", "model", "classifier").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.QuestionID, data.LookupKey,
			data.Attempt, data.Correct, data.UserAnswer, data.Model, data.Classifier).
		Query()
	if err := e.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

var llmEventColumns = []string{
	"id", "sequence", "timestamp", "session_id", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
	"request_body", "response_body",
}

// QueryLLMEvents returns model calls matching opts, newest first.
func (e *Events) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(llmEventColumns...).
		From(entsql.Table(tableLLMRequests))
	applyOpts(sel, opts)
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := e.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEvent
	for rows.Next() {
		ev, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// GetLLMEvent returns a single model call by row id.
func (e *Events) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(llmEventColumns...).
		From(entsql.Table(tableLLMRequests)).
		Where(entsql.EQ("id", id)).
		Query()

	rows := &entsql.Rows{}
	if err := e.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query LLM event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("LLM event %d not found", id)
	}
	ev, err := scanLLMEvent(rows)
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func scanLLMEvent(rows *entsql.Rows) (LLMRequestEvent, error) {
	var ev LLMRequestEvent
	err := rows.Scan(&ev.ID, &ev.Sequence, &ev.Timestamp, &ev.SessionID, &ev.Provider,
		&ev.Model, &ev.Purpose, &ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs,
		&ev.Success, &ev.ErrorMessage, &ev.RequestBody, &ev.ResponseBody)
	if err != nil {
		return ev, fmt.Errorf("scan LLM event: %w", err)
	}
	return ev, nil
}

func applyOpts(sel *entsql.Selector, opts QueryOpts) {
	if opts.After > 0 {
		sel.Where(entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE("timestamp", opts.To.UTC()))
	}
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
}

// LLMUsageByPurpose aggregates model calls per purpose label.
func (e *Events) LLMUsageByPurpose(ctx context.Context) ([]UsageRow, error) {
	return e.usageBy(ctx, "purpose")
}

// LLMUsageByModel aggregates model calls per model ID.
func (e *Events) LLMUsageByModel(ctx context.Context) ([]UsageRow, error) {
	return e.usageBy(ctx, "model")
}

func (e *Events) usageBy(ctx context.Context, column string) ([]UsageRow, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			column,
			"COUNT(*)",
			"COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0)",
			"COALESCE(SUM(input_tokens), 0)",
			"COALESCE(SUM(output_tokens), 0)",
			"COALESCE(CAST(AVG(latency_ms) AS INTEGER), 0)",
		).
		From(entsql.Table(tableLLMRequests)).
		GroupBy(column).
		OrderBy(column).
		Query()

	rows := &entsql.Rows{}
	if err := e.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query usage by %s: %w", column, err)
	}
	defer rows.Close()

	var out []UsageRow
	for rows.Next() {
		var r UsageRow
		if err := rows.Scan(&r.Key, &r.Calls, &r.Failures, &r.InputTokens, &r.OutputTokens, &r.AvgLatencyMs); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AnswerStats summarizes every graded answer.
func (e *Events) AnswerStats(ctx context.Context) (AnswerSummary, error) {
	var sum AnswerSummary

	query, args := entsql.Dialect(dialect.SQLite).
		Select(
			"COUNT(DISTINCT session_id)",
			"COUNT(*)",
			"COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0)",
			"COALESCE(SUM(CASE WHEN correct AND attempt = 1 THEN 1 ELSE 0 END), 0)",
		).
		From(entsql.Table(tableAnswers)).
		Query()

	rows := &entsql.Rows{}
	if err := e.drv.Query(ctx, query, args, rows); err != nil {
		return sum, fmt.Errorf("query answer totals: %w", err)
	}
	if rows.Next() {
		if err := rows.Scan(&sum.Sessions, &sum.Answers, &sum.Correct, &sum.FirstTryHit); err != nil {
			rows.Close()
			return sum, fmt.Errorf("scan answer totals: %w", err)
		}
	}
	// Release the single connection before the next query.
	rows.Close()

	query, args = entsql.Dialect(dialect.SQLite).
		Select(
			"question_id",
			"COUNT(*)",
			"COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0)",
		).
		From(entsql.Table(tableAnswers)).
		GroupBy("question_id").
		OrderBy("question_id").
		Query()

	rows = &entsql.Rows{}
	if err := e.drv.Query(ctx, query, args, rows); err != nil {
		return sum, fmt.Errorf("query answers by question: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q QuestionStat
		if err := rows.Scan(&q.QuestionID, &q.Answers, &q.Correct); err != nil {
			return sum, fmt.Errorf("scan question stat: %w", err)
		}
		sum.ByQuestion = append(sum.ByQuestion, q)
	}
	return sum, rows.Err()
}
