package llmjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
	"type": "object",
	"required": ["summary", "confidence"],
	"properties": {
		"summary": {"type": "string"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1}
	}
}`

type testPayload struct {
	Summary    string  `json:"summary"`
	Confidence float64 `json:"confidence"`
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{
			name: "bare object",
			raw:  `{"a":1}`,
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "fenced json",
			raw:  "```json\n{\"a\":1}\n```",
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "object with surrounding prose",
			raw:  `Here is your plan: {"a":1} hope it helps!`,
			want: `{"a":1}`,
			ok:   true,
		},
		{
			name: "array",
			raw:  `[1,2,3]`,
			want: `[1,2,3]`,
			ok:   true,
		},
		{
			name: "no json at all",
			raw:  `sorry, I cannot help with that`,
			want: "",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchema_Decode(t *testing.T) {
	schema := MustCompileSchema("test.json", testSchema)

	var out testPayload
	err := schema.Decode("```json\n{\"summary\":\"Tokyo in June\",\"confidence\":0.8}\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, "Tokyo in June", out.Summary)
	assert.InDelta(t, 0.8, out.Confidence, 1e-9)
}

func TestSchema_Decode_ValidationFailure(t *testing.T) {
	schema := MustCompileSchema("test.json", testSchema)

	var out testPayload
	// confidence out of range must fail validation, not silently pass
	err := schema.Decode(`{"summary":"x","confidence":3.5}`, &out)
	assert.Error(t, err)

	// missing required field
	err = schema.Decode(`{"summary":"x"}`, &out)
	assert.Error(t, err)
}
