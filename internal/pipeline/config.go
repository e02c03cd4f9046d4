package pipeline

import (
	"fmt"
	"image/color"

	"pixelart/internal/errdefs"
	"pixelart/internal/quantize"
)

// Conversion defaults. The canvas matches the classic low-resolution
// pixel-art look; callers override per run.
const (
	DefaultCanvasWidth  = 256
	DefaultCanvasHeight = 256
	DefaultPaletteSize  = 16
	DefaultContrast     = 1.0
	DefaultGamma        = 1.0

	// Applied when the source frame rate cannot be probed.
	defaultFrameRate = 30.0
)

// Config holds every knob for a conversion run.
type Config struct {
	CanvasWidth  int
	CanvasHeight int

	// PaletteSize is the maximum number of colors in the output.
	PaletteSize int

	// Contrast multiplies each channel and is itself scaled adaptively
	// per frame; 1 is neutral. Brightness is added after the
	// multiplication; 0 is neutral.
	Brightness float64
	Contrast   float64

	// Gamma of 1.0 leaves tones unchanged; values above 1 brighten.
	Gamma float64

	// RemoveBackground replaces everything outside the segmented
	// foreground with the Background color.
	RemoveBackground bool
	Background       color.NRGBA

	// FrameRate overrides the probed source rate for video output.
	// Zero means use the source rate.
	FrameRate float64

	Quantize quantize.Options
}

// DefaultConfig returns a ready-to-use configuration.
func DefaultConfig() Config {
	return Config{
		CanvasWidth:  DefaultCanvasWidth,
		CanvasHeight: DefaultCanvasHeight,
		PaletteSize:  DefaultPaletteSize,
		Contrast:     DefaultContrast,
		Gamma:        DefaultGamma,
		Background:   color.NRGBA{A: 255},
		Quantize:     quantize.DefaultOptions(),
	}
}

// Validate reports the first invalid parameter.
func (c Config) Validate() error {
	if c.CanvasWidth < 1 || c.CanvasHeight < 1 {
		return fmt.Errorf("%w: canvas %dx%d", errdefs.ErrInvalidParameter, c.CanvasWidth, c.CanvasHeight)
	}
	if c.PaletteSize < 1 || c.PaletteSize > 256 {
		return fmt.Errorf("%w: palette size %d (want 1-256)", errdefs.ErrInvalidParameter, c.PaletteSize)
	}
	if c.Gamma <= 0 {
		return fmt.Errorf("%w: gamma %g", errdefs.ErrInvalidParameter, c.Gamma)
	}
	if c.FrameRate < 0 {
		return fmt.Errorf("%w: frame rate %g", errdefs.ErrInvalidParameter, c.FrameRate)
	}
	return nil
}
