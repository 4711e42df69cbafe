package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scoredRecord struct {
	Score    int    `json:"score" validate:"required,min=1,max=100"`
	Critique string `json:"critique"`
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain object",
			input:    `{"score": 90}`,
			expected: `{"score": 90}`,
		},
		{
			name:     "json code fence",
			input:    "```json\n{\"score\": 90}\n```",
			expected: `{"score": 90}`,
		},
		{
			name:     "bare code fence",
			input:    "```\n{\"score\": 90}\n```",
			expected: `{"score": 90}`,
		},
		{
			name:     "surrounding prose",
			input:    "Here is the assessment: {\"score\": 90} Hope that helps!",
			expected: `{"score": 90}`,
		},
		{
			name:     "array payload",
			input:    "Variations below:\n[\"one\", \"two\"]",
			expected: `["one", "two"]`,
		},
		{
			name:     "no json at all",
			input:    "no structure here",
			expected: "no structure here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONResponse(tt.input))
		})
	}
}

func TestDecodeStructuredValidRecord(t *testing.T) {
	var rec scoredRecord
	err := decodeStructured("```json\n{\"score\": 88, \"critique\": \"solid\"}\n```", &rec)
	require.NoError(t, err)
	assert.Equal(t, 88, rec.Score)
	assert.Equal(t, "solid", rec.Critique)
}

func TestDecodeStructuredRejectsOutOfRangeScore(t *testing.T) {
	for _, payload := range []string{
		`{"score": 150, "critique": "x"}`,
		`{"score": 0, "critique": "x"}`,
		`{"score": -5, "critique": "x"}`,
	} {
		var rec scoredRecord
		err := decodeStructured(payload, &rec)
		require.Error(t, err, payload)

		var oerr *OracleError
		require.ErrorAs(t, err, &oerr)
		assert.Equal(t, ErrorTypeValidation, oerr.Type)
	}
}

func TestDecodeStructuredRejectsMalformedPayload(t *testing.T) {
	var rec scoredRecord
	err := decodeStructured("not json", &rec)
	require.Error(t, err)

	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, ErrorTypeParse, oerr.Type)
}

func TestDecodeStructuredSliceTargetSkipsValidation(t *testing.T) {
	var variations []string
	err := decodeStructured(`["a", "b"]`, &variations)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, variations)
}

func TestDecodeStructuredRejectsNonNumericScore(t *testing.T) {
	var rec scoredRecord
	err := decodeStructured(`{"score": "excellent"}`, &rec)
	require.Error(t, err)

	var oerr *OracleError
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, ErrorTypeParse, oerr.Type)
}
