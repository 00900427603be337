package vcs

import (
	"fmt"
	"image"

	"github.com/bft-labs/vcshare/internal/domain"
)

// DefaultThreshold is the luma below which a pixel counts as ink.
const DefaultThreshold uint8 = 128

// Binarize maps img to a Grid: 1 where the grayscale intensity is below
// threshold, 0 elsewhere. The grid has the pixel dimensions of img.
func Binarize(img image.Image, threshold uint8) (Grid, error) {
	if img == nil {
		return Grid{}, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Empty() {
		return Grid{}, fmt.Errorf("%w: zero-area image", ErrInvalidImage)
	}
	gray := toGray(img)
	g := domain.NewGrid(b.Dy(), b.Dx())
	for y := 0; y < g.Height; y++ {
		row := gray.Pix[y*gray.Stride : y*gray.Stride+g.Width]
		for x, v := range row {
			if v < threshold {
				g.Bits[y*g.Width+x] = 1
			}
		}
	}
	return g, nil
}

// GridFromRows builds a Grid from equal-length rows; any non-zero value is
// ink. Use it to split a raster that was not decoded from an image file.
func GridFromRows(rows [][]uint8) (Grid, error) {
	return domain.GridFromRows(rows)
}

// BinarizeFile decodes the image at path and binarizes it.
func BinarizeFile(path string, threshold uint8) (Grid, error) {
	img, err := openImage(path)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: open %s: %w", ErrInvalidImage, path, err)
	}
	return Binarize(img, threshold)
}
