package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridFromRows(t *testing.T) {
	g, err := GridFromRows([][]uint8{{1, 0, 2}, {0, 0, 1}})
	require.NoError(t, err)
	require.Equal(t, 2, g.Height)
	require.Equal(t, 3, g.Width)
	assert.Equal(t, uint8(1), g.At(0, 2), "non-zero input normalizes to 1")
	assert.Equal(t, uint8(0), g.At(1, 0))
}

func TestGridFromRows_Invalid(t *testing.T) {
	tests := []struct {
		name string
		rows [][]uint8
	}{
		{"no rows", nil},
		{"empty row", [][]uint8{{}}},
		{"ragged", [][]uint8{{1, 0}, {1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GridFromRows(tt.rows)
			require.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestPattern_Complement(t *testing.T) {
	assert.Equal(t, PatternRight, PatternLeft.Complement())
	assert.Equal(t, PatternRight, PatternRight.Complement().Complement(), "double complement is identity")
}
