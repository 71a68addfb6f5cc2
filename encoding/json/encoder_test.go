package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quote struct {
	Symbol string  `json:"symbol" validate:"required" jsonschema:"title=Symbol,description=Ticker symbol"`
	Price  float64 `json:"price" jsonschema:"title=Price"`
}

func TestEncoder(t *testing.T) {
	t.Parallel()

	enc, err := NewEncoder(quote{})
	require.NoError(t, err)

	exp := `
Respond with JSON in the following JSON schema:
` + "```json" + `
{
	"properties": {
		"symbol": {
			"type": "string",
			"title": "Symbol",
			"description": "Ticker symbol"
		},
		"price": {
			"type": "number",
			"title": "Price"
		}
	},
	"type": "object",
	"required": [
		"symbol",
		"price"
	]
}
` + "```" + `
Make sure to return an instance of the JSON, not the schema itself.
`
	assert.Equal(t, exp, enc.GetFormatInstructions())

	js, err := enc.Marshal(quote{Symbol: "AAPL", Price: 178.5})
	require.NoError(t, err)
	assert.Equal(t, `{"symbol":"AAPL","price":178.5}`, string(js))

	js, err = enc.WithIndent(true).Marshal(quote{Symbol: "AAPL", Price: 178.5})
	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"symbol\": \"AAPL\",\n\t\"price\": 178.5\n}", string(js))

	var q quote
	require.NoError(t, enc.Unmarshal([]byte("Sure:\n```json\n{\"symbol\": \"MSFT\", \"price\": 1}\n```"), &q))
	assert.Equal(t, "MSFT", q.Symbol)
	assert.Equal(t, 1.0, q.Price)

	assert.NoError(t, Validate(q))
	assert.Error(t, Validate(&quote{}))

	_, err = NewEncoder(nil)
	assert.EqualError(t, err, "sample value is required")
}

func TestDecode(t *testing.T) {
	t.Parallel()

	var q quote
	assert.EqualError(t, Decode([]byte("plain string"), &q), "input is not a JSON document")
	assert.EqualError(t, Decode(nil, &q), "input is not a JSON document")
	assert.EqualError(t, Decode([]byte(`{"symbol": `), &q), "input is not a valid JSON document")
	assert.EqualError(t, Decode([]byte(`{"symbol": 42`), &q), "input is not a valid JSON document")
	assert.EqualError(t, Decode([]byte(`{"symbol": "AAPL",}`), &q), "input is not a valid JSON document")

	// scalars are converted to the field type
	require.NoError(t, Decode([]byte(`{"symbol": 42}`), &q))
	assert.Equal(t, "42", q.Symbol)

	require.NoError(t, Decode([]byte(` {"symbol":"TSLA"} `), &q))
	assert.Equal(t, "TSLA", q.Symbol)
}
