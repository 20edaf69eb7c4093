package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticRegistry(t *testing.T) {
	a, b := NewMockProvider(), NewMockProvider()
	r, err := NewStaticRegistry("a", map[string]Provider{"b": b, "a": a})
	require.NoError(t, err)

	assert.Equal(t, "a", r.Default())
	assert.Equal(t, []string{"a", "b"}, r.Keys())

	tests := []struct {
		key     string
		want    Provider
		wantErr bool
	}{
		{"", a, false},
		{"a", a, false},
		{"b", b, false},
		{"c", nil, true},
	}
	for _, tt := range tests {
		got, err := r.Get(tt.key)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownModel, tt.key)
			continue
		}
		require.NoError(t, err, tt.key)
		assert.Same(t, tt.want, got, tt.key)
	}
}

func TestStaticRegistry_MissingDefault(t *testing.T) {
	_, err := NewStaticRegistry("nope", map[string]Provider{"a": NewMockProvider()})
	assert.ErrorIs(t, err, ErrUnknownModel)
}

func TestNewRegistry_SkipsModelsWithoutCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Models = map[string]ModelSpec{
		"stub":   {Provider: VendorMock, Model: "mock"},
		"claude": {Provider: VendorAnthropic, Model: "claude-haiku-4-5"},
	}
	cfg.Default = "stub"
	cfg.Anthropic.APIKey = ""

	repo := &fakeRepo{}
	r, err := NewRegistry(context.Background(), cfg, repo, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"stub"}, r.Keys())

	_, err = r.Get("claude")
	assert.ErrorIs(t, err, ErrUnknownModel)

	// The mock has no canned responses, so the call fails and is still logged.
	p, err := r.Get("")
	require.NoError(t, err)
	_, err = p.Generate(WithPurpose(context.Background(), "grading"), Request{})
	var unavailable *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavailable))
	require.NotEmpty(t, repo.llm)
	assert.Equal(t, "grading", repo.llm[0].Purpose)
	assert.False(t, repo.llm[0].Success)
}

func TestNewRegistry_DefaultWithoutCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Models = map[string]ModelSpec{
		"claude": {Provider: VendorAnthropic, Model: "claude-haiku-4-5"},
	}
	cfg.Default = "claude"
	cfg.Anthropic.APIKey = ""

	_, err := NewRegistry(context.Background(), cfg, nil, nil)
	assert.Error(t, err)
}
