package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/pkg/schema"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/toolbox/tools/calculator"
	"github.com/effective-security/toolbox/tools/stock"
	"github.com/effective-security/toolbox/tools/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is written by concurrent tool calls
type lockedBuffer struct {
	lock sync.Mutex
	buf  bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.buf.String()
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut lockedBuffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTools(t *testing.T) {
	tcases := []struct {
		args []string
		exp  string
	}{
		{
			args: []string{"weather", "New", "York"},
			exp:  "{\n\t\"city\": \"New York\",\n\t\"temperature\": 22,\n\t\"condition\": \"Partly Cloudy\"\n}\n",
		},
		{
			args: []string{"weather", "Tokyo", "-o", "text"},
			exp:  "Tokyo: 0°C, Unknown\n",
		},
		{
			args: []string{"calc", "(100", "+", "50)", "*", "0.2", "--output", "yaml"},
			exp:  "expression: (100 + 50) * 0.2\nresult: 30\n",
		},
		{
			args: []string{"calc", "not a math expression", "-o", "text"},
			exp:  "not a math expression = 0\n",
		},
		{
			args: []string{"stock", "aapl", "-o", "toml"},
			exp:  "symbol = \"aapl\"\nprice = 178.5\ncurrency = \"USD\"\n",
		},
		{
			args: []string{"call", "get_stock_price", `{"symbol":"MSFT"}`},
			exp:  `{"symbol":"MSFT","price":378.91,"currency":"USD"}` + "\n",
		},
		{
			args: []string{"calc", "0 * -1"},
			exp:  "{\n\t\"expression\": \"0 * -1\",\n\t\"result\": 0\n}\n",
		},
		{
			args: []string{"list", "-o", "text"},
			exp:  tools.GetDescriptions(calculator.New(), stock.New(), weather.New()),
		},
	}

	for _, tc := range tcases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			out, _, err := run(t, "", tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.exp, out)
		})
	}
}

func TestCall_Stdin(t *testing.T) {
	out, _, err := run(t, `{"city": "london"}`, "call", "GET_WEATHER")
	require.NoError(t, err)
	assert.Equal(t, `{"city":"london","temperature":15,"condition":"Rainy"}`+"\n", out)

	_, _, err = run(t, "", "call", "web_search", "{}")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrToolNotFound))

	_, _, err = run(t, "", "call", "calculate", "2 + 2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrFailedUnmarshalInput))

	_, _, err = run(t, `{"symbol": "AAPL"`, "call", "get_stock_price")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrFailedUnmarshalInput))
}

func TestCall_InputFormat(t *testing.T) {
	out, _, err := run(t, "city: Delhi\n", "call", "get_weather", "--input-format", "yaml")
	require.NoError(t, err)
	assert.Equal(t, `{"city":"Delhi","temperature":32,"condition":"Sunny"}`+"\n", out)

	out, _, err = run(t, "", "call", "get_stock_price", `symbol = "aapl"`, "--input-format", "TOML")
	require.NoError(t, err)
	assert.Equal(t, `{"symbol":"aapl","price":178.5,"currency":"USD"}`+"\n", out)

	_, _, err = run(t, "expression: [1 +", "call", "calculate", "--input-format", "yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrFailedUnmarshalInput))

	_, _, err = run(t, "{}", "call", "calculate", "--input-format", "text")
	assert.EqualError(t, err, `unsupported input encoding: "text"`)

	_, _, err = run(t, "expression: 1 + 1", "call", "web_search", "--input-format", "yaml")
	assert.True(t, errors.Is(err, tools.ErrToolNotFound))
}

func TestBatch(t *testing.T) {
	in := `[
	{"id": "w", "name": "get_weather", "arguments": {"city": "Delhi"}},
	{"id": "c", "name": "calculate", "arguments": "{\"expression\": \"2 + 2\"}"},
	{"id": "x", "name": "web_search", "arguments": {}}
]`
	out, errOut, err := run(t, in, "batch", "-v")
	require.NoError(t, err)

	var res batchResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Results, 3)

	assert.Equal(t, "w", res.Results[0].ID)
	assert.Equal(t, map[string]any{"city": "Delhi", "temperature": 32.0, "condition": "Sunny"}, res.Results[0].Output)
	assert.Equal(t, map[string]any{"expression": "2 + 2", "result": 4.0}, res.Results[1].Output)
	assert.Nil(t, res.Results[2].Output)
	assert.Contains(t, res.Results[2].Error, `tool "web_search" not found`)

	assert.Contains(t, errOut, "Tool calls: 2, Succeeded: 2, Failed: 0, Not Found: 1")
	assert.Contains(t, errOut, "Tool Start: get_weather")

	_, _, err = run(t, "{}", "batch")
	assert.EqualError(t, err, "invalid batch: expected JSON array of tool calls: json: cannot unmarshal object into Go value of type []main.batchCall")
}

func TestSchema(t *testing.T) {
	out, _, err := run(t, "", "schema", "get_weather")
	require.NoError(t, err)
	assert.Contains(t, out, `"required": [`)
	assert.Contains(t, out, `"city"`)

	out, _, err = run(t, "", "schema", "--definitions")
	require.NoError(t, err)

	var defs []tools.FunctionDefinition
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	require.Len(t, defs, 3)
	assert.Equal(t, "function", defs[0].Type)
	assert.Equal(t, "calculate", defs[0].Function.Name)

	_, _, err = run(t, "", "schema", "web_search")
	assert.True(t, errors.Is(err, tools.ErrToolNotFound))

	out, _, err = run(t, "", "schema", "get_stock_price", "--result")
	require.NoError(t, err)

	var rf schema.ResponseFormat
	require.NoError(t, json.Unmarshal([]byte(out), &rf))
	assert.Equal(t, "json_schema", rf.Type)
	assert.Equal(t, "get_stock_price_result", rf.JSONSchema.Name)
	assert.True(t, rf.JSONSchema.Strict)
	// every result field is always present
	assert.Equal(t, []string{"symbol", "price", "currency"}, rf.JSONSchema.Schema.Required)
	require.NotNil(t, rf.JSONSchema.Schema.AdditionalProperties)
	assert.False(t, *rf.JSONSchema.Schema.AdditionalProperties)

	out, _, err = run(t, "", "schema", "calculate", "--instructions")
	require.NoError(t, err)
	assert.Contains(t, out, "Respond with JSON in the following JSON schema:")
	assert.Contains(t, out, `"expression"`)

	out, _, err = run(t, "", "schema", "get_weather", "--instructions", "--input-format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Respond with YAML")
	assert.Contains(t, out, "```yaml\ncity: ")

	out, _, err = run(t, "", "schema", "get_stock_price", "--instructions", "--input-format", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "```toml\nsymbol = \"")
}

func TestConfig(t *testing.T) {
	out, _, err := run(t, "", "list", "-c", "../../config/testdata/toolbox.yaml", "-o", "json", "--log-level", "error")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{\n\t\"tools\": [\n\t\t{\n\t\t\t\"name\": \"get_stock_price\",\n"), out)
	assert.NotContains(t, out, "calculate")

	_, _, err = run(t, "", "calc", "1", "-c", "../../config/testdata/toolbox.yaml")
	assert.True(t, errors.Is(err, tools.ErrToolNotFound))

	_, _, err = run(t, "", "list", "-o", "xml")
	assert.Error(t, err)
}
