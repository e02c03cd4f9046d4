package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"pixelart/internal/errdefs"
	"pixelart/internal/mediatypes"
	"pixelart/internal/transcoder"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func distinctColors(img *image.NRGBA) int {
	seen := make(map[color.NRGBA]struct{})
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			seen[img.NRGBAAt(x, y)] = struct{}{}
		}
	}
	return len(seen)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero canvas width", func(c *Config) { c.CanvasWidth = 0 }, false},
		{"negative canvas height", func(c *Config) { c.CanvasHeight = -1 }, false},
		{"zero palette", func(c *Config) { c.PaletteSize = 0 }, false},
		{"palette too large", func(c *Config) { c.PaletteSize = 257 }, false},
		{"zero gamma", func(c *Config) { c.Gamma = 0 }, false},
		{"negative frame rate", func(c *Config) { c.FrameRate = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok && !errors.Is(err, errdefs.ErrInvalidParameter) {
				t.Errorf("Validate() = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestProcessImageEndToEnd(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "input.png")
	out := filepath.Join(dir, "output.png")

	src := solidImage(300, 300, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	if err := imaging.Save(src, in); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	cfg := DefaultConfig()
	cfg.CanvasWidth = 64
	cfg.CanvasHeight = 64
	cfg.PaletteSize = 4

	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := d.Process(context.Background(), in, out)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Kind != mediatypes.KindImage || res.Frames != 1 {
		t.Errorf("result = %+v, want image with 1 frame", res)
	}

	got, err := imaging.Open(out)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	b := got.Bounds()
	if b.Dx() != 64 || b.Dy() != 64 {
		t.Errorf("output is %dx%d, want 64x64", b.Dx(), b.Dy())
	}
	nrgba := imaging.Clone(got)
	if n := distinctColors(nrgba); n != 1 {
		t.Errorf("solid input produced %d distinct colors, want 1", n)
	}
	// The default enhancement dims a pure-white frame by at most the 0.9
	// adaptive floor; anything darker means a broken neutral setting.
	if c := nrgba.NRGBAAt(32, 32); c.R < 220 || c.G < 220 || c.B < 220 {
		t.Errorf("pure-white input came out as %v, want near-white", c)
	}
}

func TestProcessImageWithMatteFallback(t *testing.T) {
	// No segmenter wired: background removal degrades to a pass-through
	// instead of failing the run.
	dir := t.TempDir()
	in := filepath.Join(dir, "input.png")
	out := filepath.Join(dir, "output.png")

	src := solidImage(50, 50, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	if err := imaging.Save(src, in); err != nil {
		t.Fatalf("writing input: %v", err)
	}

	cfg := DefaultConfig()
	cfg.CanvasWidth = 32
	cfg.CanvasHeight = 32
	cfg.RemoveBackground = true

	d, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := d.ProcessImage(context.Background(), in, out); err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output missing: %v", err)
	}
}

func TestProcessRejectsUnsupportedInput(t *testing.T) {
	d, err := New(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = d.Process(context.Background(), "notes.txt", "out.png")
	if !errors.Is(err, errdefs.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestProcessImageMissingFile(t *testing.T) {
	d, err := New(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = d.ProcessImage(context.Background(), filepath.Join(t.TempDir(), "nope.png"), "out.png")
	if !errors.Is(err, errdefs.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gamma = -1
	if _, err := New(cfg, nil); !errors.Is(err, errdefs.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestMapFramesPreservesOrder(t *testing.T) {
	frames := make([]*image.NRGBA, 20)
	for i := range frames {
		frames[i] = solidImage(2, 2, color.NRGBA{R: uint8(i), A: 255})
	}

	out, err := mapFrames(context.Background(), frames, 4, func(f *image.NRGBA) (*image.NRGBA, error) {
		clone := imaging.Clone(f)
		clone.SetNRGBA(0, 0, color.NRGBA{R: f.NRGBAAt(0, 0).R, G: 1, A: 255})
		return clone, nil
	})
	if err != nil {
		t.Fatalf("mapFrames: %v", err)
	}
	if len(out) != len(frames) {
		t.Fatalf("got %d frames, want %d", len(out), len(frames))
	}
	for i, f := range out {
		if got := f.NRGBAAt(0, 0).R; got != uint8(i) {
			t.Errorf("frame %d carries marker %d", i, got)
		}
	}
}

func TestMapFramesPropagatesError(t *testing.T) {
	frames := make([]*image.NRGBA, 10)
	for i := range frames {
		frames[i] = solidImage(2, 2, color.NRGBA{R: uint8(i), A: 255})
	}

	boom := fmt.Errorf("stage failure on purpose")
	_, err := mapFrames(context.Background(), frames, 3, func(f *image.NRGBA) (*image.NRGBA, error) {
		if f.NRGBAAt(0, 0).R == 5 {
			return nil, boom
		}
		return f, nil
	})
	if err == nil || !strings.Contains(err.Error(), "on purpose") {
		t.Errorf("expected injected error, got %v", err)
	}
}

func TestMapFramesRespectsCancellation(t *testing.T) {
	frames := make([]*image.NRGBA, 50)
	for i := range frames {
		frames[i] = solidImage(2, 2, color.NRGBA{A: 255})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mapFrames(ctx, frames, 4, func(f *image.NRGBA) (*image.NRGBA, error) {
		return f, nil
	})
	if err == nil {
		t.Error("expected error from canceled context")
	}
}

func TestAudioPresent(t *testing.T) {
	if !audioPresent(nil, fmt.Errorf("ffprobe exploded")) {
		t.Error("unprobed stream must still attempt audio extraction")
	}
	if audioPresent(&transcoder.MediaInfo{HasAudio: false}, nil) {
		t.Error("probed silent stream must skip audio extraction")
	}
	if !audioPresent(&transcoder.MediaInfo{HasAudio: true}, nil) {
		t.Error("probed audio stream must extract audio")
	}
}

func TestMapFramesEmpty(t *testing.T) {
	out, err := mapFrames(context.Background(), nil, 4, func(f *image.NRGBA) (*image.NRGBA, error) {
		return f, nil
	})
	if err != nil || out != nil {
		t.Errorf("mapFrames(nil) = (%v, %v), want (nil, nil)", out, err)
	}
}
