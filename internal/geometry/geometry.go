package geometry

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"pixelart/internal/errdefs"
)

// FitToCanvas returns a frame of exactly targetWidth x targetHeight pixels.
//
// Frames larger than the target in either dimension are downscaled with
// area-averaging interpolation to the full target size, discarding aspect
// ratio. Smaller frames are centered on a black canvas with
// floor((target-size)/2) leading padding and the remainder trailing.
func FitToCanvas(img *image.NRGBA, targetWidth, targetHeight int) (*image.NRGBA, error) {
	if targetWidth < 1 || targetHeight < 1 {
		return nil, fmt.Errorf("%w: target canvas %dx%d", errdefs.ErrInvalidParameter, targetWidth, targetHeight)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty frame", errdefs.ErrInvalidInput)
	}

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	if w > targetWidth || h > targetHeight {
		return imaging.Resize(img, targetWidth, targetHeight, imaging.Box), nil
	}

	padLeft := (targetWidth - w) / 2
	padTop := (targetHeight - h) / 2

	canvas := imaging.New(targetWidth, targetHeight, color.NRGBA{0, 0, 0, 255})
	return imaging.Paste(canvas, img, image.Pt(padLeft, padTop)), nil
}
