package llm

import (
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema_Verdict(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"verdict":  map[string]any{"type": "string", "enum": []any{"correct", "incorrect"}},
			"feedback": map[string]any{"type": "string"},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"confident": map[string]any{"type": "boolean"},
		},
		"required": []any{"verdict", "feedback"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if got := schema.Properties["verdict"]; got.Type != "STRING" || len(got.Enum) != 2 {
		t.Fatalf("verdict = %+v, want STRING with 2 enum values", got)
	}
	if schema.Properties["confident"].Type != "BOOLEAN" {
		t.Fatalf("expected BOOLEAN for confident, got %s", schema.Properties["confident"].Type)
	}
	if schema.Properties["tags"].Items.Type != "STRING" {
		t.Fatalf("expected STRING items for tags, got %s", schema.Properties["tags"].Items.Type)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
}
