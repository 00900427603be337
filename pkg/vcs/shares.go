package vcs

import (
	"fmt"
	"image"
	"math/rand/v2"
	"os"

	"github.com/bft-labs/vcshare/internal/domain"
	"github.com/bft-labs/vcshare/pkg/log"
)

// Pixel levels written into shares.
const (
	Black uint8 = 0
	White uint8 = 255
)

// GenerateOption configures GenerateShares and GenerateSharePair.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	threshold uint8
	rnd       *rand.Rand
	logger    log.Logger
}

func defaultGenerateOptions() generateOptions {
	return generateOptions{
		threshold: DefaultThreshold,
		logger:    log.NewNoopLogger(),
	}
}

// WithThreshold sets the binarization threshold. Default: 128.
func WithThreshold(t uint8) GenerateOption {
	return func(o *generateOptions) { o.threshold = t }
}

// WithRand sets the random source used for pattern selection.
// Useful for reproducible output in tests.
func WithRand(r *rand.Rand) GenerateOption {
	return func(o *generateOptions) { o.rnd = r }
}

// WithLogger sets the logger for progress messages.
func WithLogger(l log.Logger) GenerateOption {
	return func(o *generateOptions) { o.logger = log.OrNoop(l) }
}

// Split encodes g into n shares of size (2·Width, 2·Height). Every share
// pixel is Black or White. A nil rnd uses a freshly seeded source.
func Split(g Grid, n int, rnd *rand.Rand) ([]*image.Gray, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShareCount, n)
	}
	if g.Empty() || len(g.Bits) != g.Height*g.Width {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidImage, g.Height, g.Width)
	}
	if rnd == nil {
		rnd = newRand()
	}

	shares := make([]*image.Gray, n)
	for i := range shares {
		shares[i] = image.NewGray(image.Rect(0, 0, 2*g.Width, 2*g.Height))
	}

	assigned := make([]Pattern, n)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p := domain.PatternLeft
			if rnd.IntN(2) == 1 {
				p = domain.PatternRight
			}
			assignPatterns(assigned, p, g.At(y, x) == 1, rnd)
			for i, s := range shares {
				paintBlock(s, y, x, assigned[i])
			}
		}
	}
	return shares, nil
}

// assignPatterns fills dst for one source pixel. Ink pixels share p.
// Background pixels draw p or its complement per share, then at most one
// share is overwritten so that both appear in the set.
func assignPatterns(dst []Pattern, p Pattern, ink bool, rnd *rand.Rand) {
	if ink {
		for i := range dst {
			dst[i] = p
		}
		return
	}
	comp := p.Complement()
	var hasP, hasComp bool
	for i := range dst {
		if rnd.IntN(2) == 0 {
			dst[i] = p
			hasP = true
		} else {
			dst[i] = comp
			hasComp = true
		}
	}
	switch {
	case !hasP:
		dst[rnd.IntN(len(dst))] = p
	case !hasComp:
		dst[rnd.IntN(len(dst))] = comp
	}
}

// paintBlock expands p into the 2×2 block of source pixel (y, x).
func paintBlock(s *image.Gray, y, x int, p Pattern) {
	left, right := level(p[0]), level(p[1])
	for dy := 0; dy < 2; dy++ {
		off := (2*y+dy)*s.Stride + 2*x
		s.Pix[off] = left
		s.Pix[off+1] = right
	}
}

func level(bit uint8) uint8 {
	if bit == 1 {
		return Black
	}
	return White
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// GenerateShares binarizes the image at input, splits it into n shares and
// writes them as <prefix>_1.png ... <prefix>_n.png. It returns the written
// paths in index order. If any share fails to save, the shares already
// written by this call are removed and an ErrIOFailure is returned.
func GenerateShares(input, prefix string, n int, opts ...GenerateOption) ([]string, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShareCount, n)
	}
	paths := make([]string, n)
	for i := range paths {
		paths[i] = fmt.Sprintf("%s_%d.png", prefix, i+1)
	}
	return generateTo(input, paths, opts...)
}

// GenerateSharePair writes a two-share set to explicit paths.
func GenerateSharePair(input, outA, outB string, opts ...GenerateOption) ([]string, error) {
	return generateTo(input, []string{outA, outB}, opts...)
}

func generateTo(input string, paths []string, opts ...GenerateOption) ([]string, error) {
	o := defaultGenerateOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if len(paths) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidShareCount, len(paths))
	}

	g, err := BinarizeFile(input, o.threshold)
	if err != nil {
		return nil, err
	}
	o.logger.Info("generating shares",
		log.String("input", input),
		log.Int("height", g.Height),
		log.Int("width", g.Width),
		log.Int("shares", len(paths)),
	)

	shares, err := Split(g, len(paths), o.rnd)
	if err != nil {
		return nil, err
	}

	for i, s := range shares {
		if err := saveImage(paths[i], s); err != nil {
			for _, written := range paths[:i] {
				_ = os.Remove(written)
			}
			return nil, err
		}
	}
	o.logger.Info("saved shares", log.Strings("paths", paths))
	return paths, nil
}
