package util

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceNumeric_ParsesAndDrops(t *testing.T) {
	got := CoerceNumeric(map[string]any{
		"stockId": " RD-1001 ",
		"carat":   "1.02",
		"price":   "",
		"depth":   "sixty",
		"table":   "NaN",
		"shape":   "Round",
	})

	require.Contains(t, got, "carat")
	assert.Equal(t, 1.02, got["carat"])
	assert.NotContains(t, got, "price")
	assert.NotContains(t, got, "depth")
	assert.NotContains(t, got, "table")
	assert.Equal(t, "RD-1001", got["stockId"])
	assert.Equal(t, "Round", got["shape"])
}

func TestCoerceNumeric_AcceptsDecodedNumbers(t *testing.T) {
	var form map[string]any
	dec := json.NewDecoder(strings.NewReader(`{"price": 5400, "ratio": "1.01", "length": null}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&form))

	got := CoerceNumeric(form)
	assert.Equal(t, 5400.0, got["price"])
	assert.Equal(t, 1.01, got["ratio"])
	assert.NotContains(t, got, "length")
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, DefaultPageSize},
		{3, 50, 3, 50},
		{2, 1000, 2, DefaultPageSize},
	}
	for _, tt := range tests {
		p, s := NormalizePage(tt.page, tt.size)
		assert.Equal(t, tt.wantPage, p)
		assert.Equal(t, tt.wantSize, s)
	}
	assert.Equal(t, 3, TotalPages(41, 20))
	assert.Equal(t, 0, TotalPages(0, 20))
}
