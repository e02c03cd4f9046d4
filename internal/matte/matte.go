package matte

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"pixelart/internal/errdefs"
)

// ModelVariant describes one fixed input resolution of the segmentation model.
type ModelVariant struct {
	Name   string
	Width  int
	Height int
}

var (
	// VariantSquare is the square-input model used for portrait frames.
	VariantSquare = ModelVariant{Name: "square", Width: 256, Height: 256}
	// VariantWide is the wide-input model used for landscape frames.
	VariantWide = ModelVariant{Name: "wide", Width: 256, Height: 144}
)

// SelectVariant picks the model variant for a frame by aspect ratio:
// width/height <= 1 selects the square variant, otherwise the wide one.
func SelectVariant(width, height int) ModelVariant {
	if height > 0 && float64(width)/float64(height) <= 1 {
		return VariantSquare
	}
	return VariantWide
}

// Segmenter produces a foreground probability mask for a frame already
// resized to the variant's input resolution.
type Segmenter interface {
	Segment(img *image.NRGBA, variant ModelVariant) (*Mask, error)
}

// SegmentForeground runs the full matting chain: variant selection,
// model-resolution downscale, inference, mask upscale, thresholding at 0.5,
// one erode/dilate pass with a 3x3 element, and a 5x5 Gaussian blur that
// turns the binary edge into a smooth alpha ramp.
func SegmentForeground(img *image.NRGBA, seg Segmenter) (*Mask, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty frame", errdefs.ErrInvalidInput)
	}
	if seg == nil {
		return nil, fmt.Errorf("%w: no segmenter configured", errdefs.ErrSegmentationUnavailable)
	}

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	variant := SelectVariant(w, h)

	resized := imaging.Resize(img, variant.Width, variant.Height, imaging.Box)

	raw, err := seg.Segment(resized, variant)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errdefs.ErrSegmentationUnavailable, err)
	}
	if raw == nil || raw.Width != variant.Width || raw.Height != variant.Height {
		return nil, fmt.Errorf("%w: model returned mask of wrong size", errdefs.ErrSegmentationUnavailable)
	}

	mask := resizeBilinear(raw, w, h)
	binarize(mask, 0.5)
	mask = dilate3(erode3(mask))
	return blur5(mask), nil
}

// Compose blends a frame over a solid background using the alpha mask:
// out = frame*alpha + background*(1-alpha), channel-wise.
func Compose(img *image.NRGBA, mask *Mask, background color.NRGBA) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty frame", errdefs.ErrInvalidInput)
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if mask == nil || mask.Width != w || mask.Height != h {
		return nil, fmt.Errorf("%w: mask dimensions do not match frame", errdefs.ErrInvalidInput)
	}

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := 0; x < w; x++ {
			a := mask.Pix[y*w+x]
			i := x * 4
			dst[i] = blendByte(src[i], background.R, a)
			dst[i+1] = blendByte(src[i+1], background.G, a)
			dst[i+2] = blendByte(src[i+2], background.B, a)
			dst[i+3] = src[i+3]
		}
	}
	return out, nil
}

func blendByte(fg, bg uint8, alpha float64) uint8 {
	v := math.Round(float64(fg)*alpha + float64(bg)*(1-alpha))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
