package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "19,90", FormatPrice(19.9))
	assert.Equal(t, "0,00", FormatPrice(0))
	assert.Equal(t, "1234,57", FormatPrice(1234.567))
	assert.Equal(t, "R$ 19,90", FormatBRL(19.9))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"19.9", "19.9"},
		{"19,9", "19.9"},
		{"R$ 1.234,56", "1234.56"},
		{"R$ 12,00", "12"},
		{"1.234.567", "1234567"},
		{"  450 ", "450"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParsePrice(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	for _, raw := range []string{"", "R$ ", "abc", "12,3,4"} {
		_, err := ParsePrice(raw)
		assert.ErrorIs(t, err, ErrInvalidPrice, raw)
	}
}
