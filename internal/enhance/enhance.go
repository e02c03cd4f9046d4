package enhance

import (
	"fmt"
	"image"
	"math"

	"pixelart/internal/errdefs"
)

// Adaptive applies brightness/contrast adjustment scaled by the frame's mean
// intensity: dark frames are boosted more, bright frames less. The scaling
// factor is clamp(1+((128-mean)/128)*0.1, 0.9, 1.1); each channel becomes
// clamp(in*contrast + brightness, 0, 255) with the boosts multiplied by the
// factor. The input frame is not modified.
func Adaptive(img *image.NRGBA, brightnessBoost, contrastBoost float64) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty frame", errdefs.ErrInvalidInput)
	}

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	var sum float64
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			sum += float64(row[x]) + float64(row[x+1]) + float64(row[x+2])
		}
	}
	mean := sum / float64(w*h*3)

	scale := 1 + ((128-mean)/128)*0.1
	if scale < 0.9 {
		scale = 0.9
	} else if scale > 1.1 {
		scale = 1.1
	}

	brightness := brightnessBoost * scale
	contrast := contrastBoost * scale

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			dst[x] = clampByte(float64(src[x])*contrast + brightness)
			dst[x+1] = clampByte(float64(src[x+1])*contrast + brightness)
			dst[x+2] = clampByte(float64(src[x+2])*contrast + brightness)
			dst[x+3] = src[x+3]
		}
	}
	return out, nil
}

// GammaCorrect maps every channel through clamp(((in/255)^(1/gamma))*255, 0, 255)
// using a precomputed 256-entry lookup table. Gamma above 1 brightens, below 1
// darkens, 1 is the identity within rounding.
func GammaCorrect(img *image.NRGBA, gamma float64) (*image.NRGBA, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty frame", errdefs.ErrInvalidInput)
	}
	if gamma <= 0 {
		return nil, fmt.Errorf("%w: gamma must be > 0, got %g", errdefs.ErrInvalidParameter, gamma)
	}

	var lut [256]uint8
	inv := 1.0 / gamma
	for i := 0; i < 256; i++ {
		lut[i] = clampByte(math.Pow(float64(i)/255.0, inv) * 255.0)
	}

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			dst[x] = lut[src[x]]
			dst[x+1] = lut[src[x+1]]
			dst[x+2] = lut[src[x+2]]
			dst[x+3] = src[x+3]
		}
	}
	return out, nil
}

func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
