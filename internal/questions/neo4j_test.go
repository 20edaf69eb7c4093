package questions

import (
	"context"
	"errors"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubStore(fn queryFunc) *Neo4jStore {
	s := NewNeo4jStore(nil, "", "", nil)
	s.query = fn
	return s
}

func record(title, description string, answer any) *neo4j.Record {
	return &neo4j.Record{
		Keys:   []string{"title", "description", "answer"},
		Values: []any{title, description, answer},
	}
}

func TestNeo4jStore_Fetch(t *testing.T) {
	var gotQuery string
	var gotParams map[string]any
	s := stubStore(func(_ context.Context, q string, p map[string]any) ([]*neo4j.Record, error) {
		gotQuery, gotParams = q, p
		return []*neo4j.Record{record("Sum of Array", "Return the sum.", "int s = 0; for (int x : a) s += x; return s;")}, nil
	})

	rec, err := s.Fetch(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, Record{
		Title:       "Sum of Array",
		Description: "Return the sum.",
		Answer:      "int s = 0; for (int x : a) s += x; return s;",
	}, rec)
	assert.Equal(t, map[string]any{"questionId": "LoLju0t00s3"}, gotParams)
	assert.Contains(t, gotQuery, "STARTS WITH $questionId")
	assert.Contains(t, gotQuery, "LIMIT 1")
}

func TestNeo4jStore_NoMatch(t *testing.T) {
	s := stubStore(func(context.Context, string, map[string]any) ([]*neo4j.Record, error) {
		return nil, nil
	})

	rec, err := s.Fetch(context.Background(), 999)
	require.NoError(t, err)
	assert.Equal(t, NoQuestion, rec)
	assert.False(t, rec.Available())
}

func TestNeo4jStore_QueryFailure(t *testing.T) {
	s := stubStore(func(context.Context, string, map[string]any) ([]*neo4j.Record, error) {
		return nil, errors.New("connection refused")
	})

	_, err := s.Fetch(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
}

func TestNeo4jStore_AnswerShapes(t *testing.T) {
	tests := []struct {
		name   string
		answer any
		want   string
	}{
		{"string", "42", "42"},
		{"list", []any{"i++", "i += 1"}, "i++, i += 1"},
		{"missing", nil, ""},
		{"number", int64(7), "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := stubStore(func(context.Context, string, map[string]any) ([]*neo4j.Record, error) {
				return []*neo4j.Record{record("T", "D", tt.answer)}, nil
			})
			rec, err := s.Fetch(context.Background(), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Answer)
		})
	}
}

func TestNeo4jStore_CustomTemplate(t *testing.T) {
	var key any
	s := NewNeo4jStore(nil, "", "Q%d-", nil)
	s.query = func(_ context.Context, _ string, p map[string]any) ([]*neo4j.Record, error) {
		key = p["questionId"]
		return nil, nil
	}
	_, err := s.Fetch(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, "Q12-", key)
}
