package domain

import "fmt"

// Grid is a binary raster: 1 marks ink, 0 marks background.
// Bits is row-major with exactly Height*Width entries.
type Grid struct {
	Height int
	Width  int
	Bits   []uint8
}

// NewGrid allocates a background-only grid.
func NewGrid(height, width int) Grid {
	return Grid{Height: height, Width: width, Bits: make([]uint8, height*width)}
}

// GridFromRows builds a grid from equal-length rows. Non-zero values are
// normalized to 1.
func GridFromRows(rows [][]uint8) (Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return Grid{}, fmt.Errorf("%w: empty grid", ErrInvalidImage)
	}
	g := NewGrid(len(rows), len(rows[0]))
	for y, row := range rows {
		if len(row) != g.Width {
			return Grid{}, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidImage, y, len(row), g.Width)
		}
		for x, v := range row {
			if v != 0 {
				g.Bits[y*g.Width+x] = 1
			}
		}
	}
	return g, nil
}

// At returns the bit at (y, x).
func (g Grid) At(y, x int) uint8 { return g.Bits[y*g.Width+x] }

// Set writes the bit at (y, x); any non-zero v stores 1.
func (g Grid) Set(y, x int, v uint8) {
	if v != 0 {
		v = 1
	}
	g.Bits[y*g.Width+x] = v
}

// Empty reports whether the grid has zero area.
func (g Grid) Empty() bool { return g.Height <= 0 || g.Width <= 0 }

// Pattern is the micro-block of one source pixel in one share.
// Index 0 lands in the left output column, index 1 in the right.
type Pattern [2]uint8

// Base patterns. Each is the complement of the other.
var (
	PatternLeft  = Pattern{1, 0}
	PatternRight = Pattern{0, 1}
)

// Complement flips every bit of p.
func (p Pattern) Complement() Pattern {
	return Pattern{1 - p[0], 1 - p[1]}
}
