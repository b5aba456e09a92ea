package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatOutput(t *testing.T) {
	t.Run("plain when json not expected", func(t *testing.T) {
		got := FormatOutput("hello", false)
		assert.Equal(t, DisplayResult{Kind: KindPlain, Value: "hello"}, got)
	})

	t.Run("plain keeps json-looking text untouched", func(t *testing.T) {
		got := FormatOutput(`{"a":1}`, false)
		assert.Equal(t, KindPlain, got.Kind)
		assert.Equal(t, `{"a":1}`, got.Value)
	})

	t.Run("pretty prints json", func(t *testing.T) {
		got := FormatOutput(`{"a":1}`, true)
		assert.Equal(t, DisplayResult{Kind: KindJSON, Value: "{\n  \"a\": 1\n}"}, got)
	})

	t.Run("preserves key order and reindents", func(t *testing.T) {
		raw := "  {\"z\": [1, {\"b\":true}],\n\"a\":null}  "
		want := "{\n  \"z\": [\n    1,\n    {\n      \"b\": true\n    }\n  ],\n  \"a\": null\n}"
		got := FormatOutput(raw, true)
		assert.Equal(t, KindJSON, got.Kind)
		assert.Equal(t, want, got.Value)
	})

	t.Run("scalars and empty containers", func(t *testing.T) {
		assert.Equal(t, "42", FormatOutput(" 42 ", true).Value)
		assert.Equal(t, `"s"`, FormatOutput(`"s"`, true).Value)
		assert.Equal(t, "{}", FormatOutput("{ }", true).Value)
		assert.Equal(t, "[]", FormatOutput("[]", true).Value)
	})

	t.Run("duplicate keys keep first position and last value", func(t *testing.T) {
		assert.Equal(t, "{\n  \"a\": 2\n}", FormatOutput(`{"a":1,"a":2}`, true).Value)

		raw := `{"x":1,"y":{"k":"old","k":"new"},"x":[1.50,"\u00e9"]}`
		want := "{\n  \"x\": [\n    1.50,\n    \"\\u00e9\"\n  ],\n  \"y\": {\n    \"k\": \"new\"\n  }\n}"
		assert.Equal(t, want, FormatOutput(raw, true).Value)

		got := FormatOutput(`[{"a":1,"a":null}]`, true)
		assert.Equal(t, "[\n  {\n    \"a\": null\n  }\n]", got.Value)
	})

	t.Run("invalid json keeps raw text", func(t *testing.T) {
		got := FormatOutput("not json", true)
		assert.Equal(t, KindJSONError, got.Kind)
		assert.Equal(t, "not json", got.Raw)
		assert.NotEmpty(t, got.Message)
		assert.True(t, got.IsError())
		assert.Equal(t, "not json", got.Text())
	})

	t.Run("trailing garbage is an error", func(t *testing.T) {
		got := FormatOutput(`{"a":1} extra`, true)
		assert.Equal(t, KindJSONError, got.Kind)
		assert.Equal(t, `{"a":1} extra`, got.Raw)
	})
}
