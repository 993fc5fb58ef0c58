package codec

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFields() map[string]any {
	return map[string]any{
		"order_id":      "A1",
		"customer_name": "Bob",
		"product":       "Pen",
		"quantity":      3,
		"price":         2.5,
		"date":          "2024-01-01",
		"total":         7.5,
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("xml")
	require.NoError(t, err)
	assert.Equal(t, FormatXML, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestRoundTrip_JSON(t *testing.T) {
	data, err := Encode(sampleFields(), FormatJSON)
	require.NoError(t, err)

	got, err := Decode(data, FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "A1", got["order_id"])
	assert.Equal(t, json.Number("3"), got["quantity"])
	assert.Equal(t, json.Number("2.5"), got["price"])
	assert.Equal(t, "2024-01-01", got["date"])
}

func TestRoundTrip_XML(t *testing.T) {
	data, err := Encode(sampleFields(), FormatXML)
	require.NoError(t, err)

	got, err := Decode(data, FormatXML)
	require.NoError(t, err)

	// XML has no types: every value round-trips as its string form.
	assert.Equal(t, "A1", got["order_id"])
	assert.Equal(t, "3", got["quantity"])
	assert.Equal(t, "2.5", got["price"])
	assert.Equal(t, "2024-01-01", got["date"])
	assert.Equal(t, "7.5", got["total"])
}

func TestEncodeJSON_Readable(t *testing.T) {
	fields := sampleFields()
	fields["customer_name"] = "Жанна <Ltd>"

	data, err := Encode(fields, FormatJSON)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "\n  \"", "output must be indented")
	assert.Contains(t, text, "Жанна", "non-ASCII must stay literal")
	assert.Contains(t, text, "<Ltd>", "HTML characters must not be escaped")
	assert.NotContains(t, text, `\u`)
}

func TestEncodeXML_Layout(t *testing.T) {
	data, err := Encode(sampleFields(), FormatXML)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "<?xml"), "must start with an XML declaration")
	assert.Contains(t, text, "<sale>")
	assert.Contains(t, text, "<order_id>A1</order_id>")
	assert.Contains(t, text, "</sale>")
}

func TestDecodeXML_SurroundingNoiseAllowed(t *testing.T) {
	// A declaration before the root and whitespace or comments around
	// it are fine; only real content outside the root is malformed.
	doc := "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<sale><order_id>A1</order_id></sale>\n<!-- end -->\n"

	got, err := Decode([]byte(doc), FormatXML)
	require.NoError(t, err)
	assert.Equal(t, "A1", got["order_id"])
}

func TestDecodeXML_EmptyElement(t *testing.T) {
	got, err := Decode([]byte(`<sale><order_id>A1</order_id><note></note></sale>`), FormatXML)
	require.NoError(t, err)

	assert.Equal(t, "A1", got["order_id"])
	assert.Equal(t, "", got["note"], "missing text decodes as empty string")
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"truncated json", `{"order_id": "A1"`, FormatJSON},
		{"json array", `[1, 2, 3]`, FormatJSON},
		{"json scalar", `42`, FormatJSON},
		{"json null", `null`, FormatJSON},
		{"json trailing data", `{"a": 1} {"b": 2}`, FormatJSON},
		{"unclosed xml", `<sale><order_id>A1`, FormatXML},
		{"not xml at all", `hello`, FormatXML},
		{"empty input", ``, FormatXML},
		{"xml leading junk", `junk<sale><order_id>A1</order_id></sale>`, FormatXML},
		{"xml trailing junk", `<sale><order_id>A1</order_id></sale>junk`, FormatXML},
		{"xml second root", `<sale><order_id>A1</order_id></sale><sale><order_id>A2</order_id></sale>`, FormatXML},
		{"xml trailing element", `<sale><order_id>A1</order_id></sale><extra/>`, FormatXML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data), tt.format)
			assert.Error(t, err)
			assert.Nil(t, got, "a failed decode must not produce a partial mapping")
		})
	}
}
