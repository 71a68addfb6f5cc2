package toolset_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolbox/tools"
	"github.com/effective-security/toolbox/tools/toolset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	all := []string{"calculate", "get_stock_price", "get_weather"}
	assert.Equal(t, all, toolset.Names())

	r, err := toolset.New()
	require.NoError(t, err)
	assert.Equal(t, all, r.Names())

	r, err = toolset.New("GET_WEATHER", " calculate", "get_weather")
	require.NoError(t, err)
	assert.Equal(t, []string{"calculate", "get_weather"}, r.Names())

	_, err = toolset.New("get_weather", "web_search")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrToolNotFound))
	assert.EqualError(t, err, `tool "web_search" not found, available tools: calculate, get_stock_price, get_weather`)
}

func TestRegistry_Call(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	r, err := toolset.New()
	require.NoError(t, err)

	tcases := []struct {
		name  string
		input string
		exp   string
	}{
		{"get_weather", `{"city":"Delhi"}`, `{"city":"Delhi","temperature":32,"condition":"Sunny"}`},
		{"get_weather", `{"city":"Tokyo"}`, `{"city":"Tokyo","temperature":0,"condition":"Unknown"}`},
		{"calculate", `{"expression":"2 + 2"}`, `{"expression":"2 + 2","result":4}`},
		{"calculate", `{"expression":"not a math expression"}`, `{"expression":"not a math expression","result":0}`},
		{"get_stock_price", `{"symbol":"aapl"}`, `{"symbol":"aapl","price":178.5,"currency":"USD"}`},
		{"Get_Stock_Price", `{"symbol":"UNKNOWN"}`, `{"symbol":"UNKNOWN","price":0,"currency":"USD"}`},
	}
	for _, tc := range tcases {
		out, err := r.Call(ctx, tc.name, tc.input)
		require.NoError(t, err)
		assert.Equal(t, tc.exp, out)
	}
}
