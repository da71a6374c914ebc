package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestExtractJSONStripsFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"score\": 85}\n```", `{"score": 85}`},
		{"bare fence", "```\n{\"score\": 85}\n```", `{"score": 85}`},
		{"no fence", `{"score": 85}`, `{"score": 85}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```  \n", `{"a":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractJSON(tc.in))
		})
	}
}

func TestSanitizeRepairsStrayBackslashes(t *testing.T) {
	in := `{"feedback": "use C:\Users\docs for context"}`
	out := Sanitize(in)

	require.True(t, gjson.Valid(out), "sanitized output must be valid JSON: %s", out)
	assert.Equal(t, `use C:\Users\docs for context`, gjson.Get(out, "feedback").String())
}

func TestSanitizePreservesValidEscapes(t *testing.T) {
	in := `{"analysis": "line one\n\nline two", "u": "\u00e9"}`
	out := Sanitize(in)

	require.True(t, gjson.Valid(out))
	assert.Equal(t, "line one\n\nline two", gjson.Get(out, "analysis").String())
	assert.Equal(t, "é", gjson.Get(out, "u").String())
}

func TestSanitizeNormalizesQuotesAndControls(t *testing.T) {
	in := "{\"feedback\": “good answer”,\r\n\t\"score\": 90}"
	out := Sanitize(in)

	require.True(t, gjson.Valid(out), "got: %s", out)
	assert.Equal(t, "good answer", gjson.Get(out, "feedback").String())
	assert.Equal(t, int64(90), gjson.Get(out, "score").Int())
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		`{"feedback": "path\to\file", "score": 10}`,
		`{"analysis": "a\nb", "index": ["x", "y"]}`,
		"{\"a\": “b”}",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		assert.Equal(t, once, twice, "second pass changed output for %q", in)
	}
}

func TestSanitizeAndParse(t *testing.T) {
	out, err := SanitizeAndParse("```json\n{\"score\": 70, \"feedback\": \"ok\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, float64(70), gjson.Get(out, "score").Float())

	_, err = SanitizeAndParse("I cannot answer that as JSON, sorry.")
	assert.Error(t, err)
}
