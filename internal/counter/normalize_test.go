package counter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tckz/visitor-counter/internal/store"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   store.Decimal
		want string
	}{
		{in: "3", want: "3"},
		{in: "3.0", want: "3"},
		{in: "3.000", want: "3"},
		{in: "0", want: "0"},
		{in: "1E2", want: "100"},
		{in: "12345678901234567890123", want: "12345678901234567890123"},
		{in: "2.5", want: "2.5"},
		{in: "0.125", want: "0.125"},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestNormalize_JSON(t *testing.T) {
	n, err := Normalize("3.0")
	require.NoError(t, err)

	b, err := json.Marshal(map[string]any{"visitorCount": n})
	require.NoError(t, err)
	assert.JSONEq(t, `{"visitorCount":3}`, string(b))
	assert.NotContains(t, string(b), "3.0")
}

func TestNormalize_Malformed(t *testing.T) {
	for _, in := range []store.Decimal{"", "abc", "1..2"} {
		_, err := Normalize(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestNormalize_OutOfFloatRange(t *testing.T) {
	_, err := Normalize("1.5e400")
	assert.ErrorContains(t, err, "out of float64 range")

	n, err := Normalize("1e400")
	require.NoError(t, err, "integral values do not go through float64")
	assert.Len(t, n.String(), 401)
}
