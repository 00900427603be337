package vcs

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// openImage decodes any registered raster format.
func openImage(path string) (image.Image, error) {
	return imaging.Open(path)
}

// toGray converts img to 8-bit luma with its origin moved to (0,0).
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			src := g.Pix[(y+b.Min.Y-g.Rect.Min.Y)*g.Stride+(b.Min.X-g.Rect.Min.X):]
			copy(out.Pix[y*out.Stride:y*out.Stride+b.Dx()], src[:b.Dx()])
		}
		return out
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			out.Pix[y*out.Stride+x] = c.Y
		}
	}
	return out
}

// loadGray opens path and converts it to grayscale.
func loadGray(path string) (*image.Gray, error) {
	img, err := openImage(path)
	if err != nil {
		return nil, err
	}
	return toGray(img), nil
}

// saveImage writes img to path, format chosen by extension, creating the
// parent directory when needed.
func saveImage(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: create directory %s: %w", ErrIOFailure, dir, err)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrIOFailure, path, err)
	}
	return nil
}
