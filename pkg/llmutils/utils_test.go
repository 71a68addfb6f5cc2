package llmutils_test

import (
	"testing"

	"github.com/effective-security/toolbox/pkg/llmutils"
	"github.com/stretchr/testify/assert"
)

func Test_CleanJSON(t *testing.T) {
	t.Parallel()

	tcases := []struct {
		name string
		in   string
		exp  string
	}{
		{"plain", `{"city":"Delhi"}`, `{"city":"Delhi"}`},
		{"fenced", "\n```json\n\n{\"city\": \"Delhi\"}\n\n```\n\n", `{"city": "Delhi"}`},
		{"prefix", "Here you go:\n```json\n[{\"symbol\": \"AAPL\"}]\n```\n", `[{"symbol": "AAPL"}]`},
		{"no json", "not a json", "not a json"},
		{"open only", `{"city"`, `{"city"`},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, string(llmutils.CleanJSON([]byte(tc.in))))
		})
	}
}

func Test_TrimBackticks(t *testing.T) {
	t.Parallel()

	expected := `{"expression": "2 + 2"}`
	assert.Equal(t, expected, llmutils.TrimBackticks("\n```json\n\n"+expected+"\n\n```\n\n"))
	assert.Equal(t, expected, llmutils.TrimBackticks(expected))
	assert.Equal(t, expected, llmutils.TrimBackticks("\n```\n"+expected+"\n```\n"))
	assert.Equal(t, expected, llmutils.TrimBackticks("```"+expected+"\n```"))
}

type named struct {
	Name string `json:"name"`
}

func (n named) String() string {
	return "name=" + n.Name
}

func Test_Stringify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "name=x", llmutils.Stringify(named{Name: "x"}))
	assert.Equal(t, "raw", llmutils.Stringify("raw"))
	assert.Equal(t, "\n```json\n{\n\t\"a\": 1\n}\n```\n", llmutils.Stringify(map[string]int{"a": 1}))
	assert.Equal(t, `{"name":"x"}`, llmutils.ToJSON(named{Name: "x"}))
}
