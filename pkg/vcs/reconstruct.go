package vcs

import (
	"fmt"
	"image"
)

// Stack overlays shares by taking the per-pixel minimum. All shares must
// have the same width and height; their origins may differ. The inputs are
// not modified.
func Stack(shares []*image.Gray) (*image.Gray, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no shares", ErrMissingInput)
	}
	w, h := shares[0].Bounds().Dx(), shares[0].Bounds().Dy()
	for i, s := range shares[1:] {
		if s.Bounds().Dx() != w || s.Bounds().Dy() != h {
			return nil, fmt.Errorf("%w: share %d is %dx%d, share 0 is %dx%d",
				ErrShapeMismatch, i+1, s.Bounds().Dx(), s.Bounds().Dy(), w, h)
		}
	}

	out := toGray(shares[0])
	for _, s := range shares[1:] {
		b := s.Bounds()
		for y := 0; y < h; y++ {
			src := s.Pix[(y+b.Min.Y-s.Rect.Min.Y)*s.Stride+(b.Min.X-s.Rect.Min.X):]
			dst := out.Pix[y*out.Stride : y*out.Stride+w]
			for x := range dst {
				if src[x] < dst[x] {
					dst[x] = src[x]
				}
			}
		}
	}
	return out, nil
}

// StackFiles loads the shares at paths as grayscale and stacks them.
// An unreadable path yields ErrMissingInput.
func StackFiles(paths []string) (*image.Gray, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no shares", ErrMissingInput)
	}
	shares := make([]*image.Gray, 0, len(paths))
	for _, p := range paths {
		g, err := loadGray(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMissingInput, p, err)
		}
		shares = append(shares, g)
	}
	return Stack(shares)
}

// Reconstruct stacks the shares at paths and writes the result to out.
// Nothing is written when any share is missing or the shapes differ.
func Reconstruct(paths []string, out string) error {
	img, err := StackFiles(paths)
	if err != nil {
		return err
	}
	return saveImage(out, img)
}
