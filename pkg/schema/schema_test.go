package schema_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/effective-security/toolbox/pkg/schema"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lookupRequest struct {
	Key   string `json:"key" jsonschema:"title=Key,description=Lookup key,example=delhi"`
	Limit int    `json:"limit,omitempty" jsonschema:"title=Limit,description=Max results"`
}

type quote struct {
	Symbol string  `json:"symbol" jsonschema:"title=Symbol"`
	Price  float64 `json:"price" jsonschema:"title=Price"`
}

func TestSchema(t *testing.T) {
	t.Parallel()

	s, err := schema.New(reflect.TypeOf(lookupRequest{}))
	require.NoError(t, err)

	exp := `{
	"properties": {
		"key": {
			"type": "string",
			"title": "Key",
			"description": "Lookup key",
			"examples": [
				"delhi"
			]
		},
		"limit": {
			"type": "integer",
			"title": "Limit",
			"description": "Max results"
		}
	},
	"type": "object",
	"required": [
		"key"
	]
}`
	assert.Equal(t, exp, s.String())
	assert.Equal(t, []string{"key", "limit"}, s.PropertyNames())

	var sc jsonschema.Schema
	require.NoError(t, json.Unmarshal([]byte(exp), &sc))
	assert.Equal(t, 2, sc.Properties.Len())
}

func TestSchema_Cached(t *testing.T) {
	t.Parallel()

	s1, err := schema.For[quote]()
	require.NoError(t, err)
	s2, err := schema.New(reflect.TypeOf(&quote{}))
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	assert.Equal(t, []string{"symbol", "price"}, s1.PropertyNames())
	assert.Equal(t, []string{"symbol", "price"}, s1.Parameters.Required)
	assert.NotPanics(t, func() {
		_ = schema.MustFor[quote]()
	})
}

type forecast struct {
	City    string   `json:"city" jsonschema:"title=City"`
	Hourly  []int    `json:"hourly,omitempty" jsonschema:"title=Hourly"`
	Station *station `json:"station,omitempty"`
}

type station struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func TestResponseFormat(t *testing.T) {
	t.Parallel()

	rf, err := schema.NewResponseFormat("forecast", reflect.TypeOf(forecast{}), true)
	require.NoError(t, err)
	assert.Equal(t, "json_schema", rf.Type)
	assert.Equal(t, "forecast", rf.JSONSchema.Name)
	assert.True(t, rf.JSONSchema.Strict)

	sc := rf.JSONSchema.Schema
	assert.Equal(t, "object", sc.Type)
	assert.Equal(t, []string{"city", "hourly", "station"}, sc.Required)
	require.NotNil(t, sc.AdditionalProperties)
	assert.False(t, *sc.AdditionalProperties)

	require.Contains(t, sc.Properties, "hourly")
	assert.Equal(t, "array", sc.Properties["hourly"].Type)
	require.NotNil(t, sc.Properties["hourly"].Items)
	assert.Equal(t, "integer", sc.Properties["hourly"].Items.Type)

	st := sc.Properties["station"]
	require.NotNil(t, st)
	assert.Equal(t, []string{"id", "name"}, st.Required)
	require.NotNil(t, st.AdditionalProperties)
	assert.False(t, *st.AdditionalProperties)

	rf, err = schema.NewResponseFormat("forecast", reflect.TypeOf(&forecast{}), false)
	require.NoError(t, err)
	assert.False(t, rf.JSONSchema.Strict)
	assert.Equal(t, []string{"city"}, rf.JSONSchema.Schema.Required)
}
