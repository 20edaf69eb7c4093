package questions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupKey(t *testing.T) {
	tests := []struct {
		template string
		id       int
		want     string
	}{
		{"", 1, "LoLju0t00s1"},
		{"", 42, "LoLju0t00s42"},
		{DefaultKeyTemplate, 0, "LoLju0t00s0"},
		{"Q-%03d", 7, "Q-007"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LookupKey(tt.template, tt.id))
	}
	assert.Equal(t, LookupKey("", 5), LookupKey("", 5), "deterministic")
}

func TestValidateKeyTemplate(t *testing.T) {
	tests := []struct {
		template string
		wantErr  bool
	}{
		{"", false},
		{DefaultKeyTemplate, false},
		{"Q-%03d", false},
		{"LoLju0t00s", true},
		{"Q-%s", true},
		{"%d-%d", true},
		{"100%%", true},
	}
	for _, tt := range tests {
		err := ValidateKeyTemplate(tt.template)
		if tt.wantErr {
			assert.Error(t, err, tt.template)
		} else {
			assert.NoError(t, err, tt.template)
		}
	}
}

func TestRecordAvailable(t *testing.T) {
	assert.False(t, NoQuestion.Available())
	assert.True(t, Record{Title: "Reverse", Description: "d", Answer: "a"}.Available())
	assert.True(t, Record{Title: "No question available"}.Available(), "only the exact sentinel is unavailable")
}
