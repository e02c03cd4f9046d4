package quantize

import (
	"fmt"
	"image"

	"pixelart/internal/errdefs"
)

// Options controls the convergence policy of the default clusterer.
// The defaults are tuned for pixel-art output; changing them trades quality
// for speed.
type Options struct {
	// Restarts is the number of independent runs with fresh random centers.
	// The run with the lowest within-cluster sum of squares wins.
	Restarts int
	// MaxIterations bounds the refinement steps per restart.
	MaxIterations int
	// Epsilon stops refinement early once no center moved farther than this.
	Epsilon float64
	// Seed makes center initialization deterministic when non-zero.
	Seed int64
}

// DefaultOptions returns the standard convergence policy:
// 10 restarts, 20 refinement steps, epsilon 0.2.
func DefaultOptions() Options {
	return Options{
		Restarts:      10,
		MaxIterations: 20,
		Epsilon:       0.2,
	}
}

// Clusterer groups N 3-vectors into at most k clusters, returning the cluster
// centers and a per-point label indexing into centers.
type Clusterer interface {
	Cluster(points [][3]float64, k int) (centers [][3]float64, labels []int, err error)
}

// Quantizer maps frames onto a reduced palette using a Clusterer.
type Quantizer struct {
	clusterer Clusterer
}

// New returns a Quantizer backed by the given clustering primitive.
func New(c Clusterer) *Quantizer {
	return &Quantizer{clusterer: c}
}

// NewDefault returns a Quantizer backed by the built-in k-means clusterer.
func NewDefault(opts Options) *Quantizer {
	return New(NewKMeans(opts))
}

// Quantize replaces every pixel with its cluster's representative color,
// rounded to integer channel values. The output has identical spatial
// dimensions and at most paletteSize distinct colors. When paletteSize is at
// least the number of distinct colors in the frame, the frame is reproduced
// losslessly.
func (q *Quantizer) Quantize(img *image.NRGBA, paletteSize int) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty frame", errdefs.ErrInvalidInput)
	}
	if paletteSize < 1 {
		return nil, fmt.Errorf("%w: palette size must be >= 1, got %d", errdefs.ErrInvalidParameter, paletteSize)
	}

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	points := make([][3]float64, 0, w*h)
	distinct := make(map[[3]uint8]struct{})
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			r, g, b := row[x], row[x+1], row[x+2]
			points = append(points, [3]float64{float64(r), float64(g), float64(b)})
			distinct[[3]uint8{r, g, b}] = struct{}{}
		}
	}

	// No compression needed: the frame already fits the palette.
	if len(distinct) <= paletteSize {
		out := image.NewNRGBA(image.Rect(0, 0, w, h))
		copyPixels(out, img, w, h)
		return out, nil
	}

	centers, labels, err := q.clusterer.Cluster(points, paletteSize)
	if err != nil {
		return nil, fmt.Errorf("clustering failed: %w", err)
	}
	if len(labels) != len(points) {
		return nil, fmt.Errorf("%w: clusterer returned %d labels for %d points",
			errdefs.ErrInvalidInput, len(labels), len(points))
	}

	palette := make([][3]uint8, len(centers))
	for i, c := range centers {
		palette[i] = [3]uint8{roundByte(c[0]), roundByte(c[1]), roundByte(c[2])}
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	i := 0
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			c := palette[labels[i]]
			dst[x] = c[0]
			dst[x+1] = c[1]
			dst[x+2] = c[2]
			dst[x+3] = src[x+3]
			i++
		}
	}
	return out, nil
}

func copyPixels(dst, src *image.NRGBA, w, h int) {
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w*4], src.Pix[y*src.Stride:y*src.Stride+w*4])
	}
}

func roundByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 254.5 {
		return 255
	}
	return uint8(v + 0.5)
}
