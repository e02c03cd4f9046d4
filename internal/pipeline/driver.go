package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP input decoder

	"pixelart/internal/enhance"
	"pixelart/internal/errdefs"
	"pixelart/internal/geometry"
	"pixelart/internal/logging"
	"pixelart/internal/matte"
	"pixelart/internal/mediatypes"
	"pixelart/internal/metrics"
	"pixelart/internal/quantize"
	"pixelart/internal/transcoder"
	"pixelart/internal/workers"
	"pixelart/internal/workspace"
)

// Result summarizes a completed conversion.
type Result struct {
	InputPath  string
	OutputPath string
	Kind       mediatypes.Kind
	Frames     int
	Duration   time.Duration
}

// Driver orchestrates the conversion stages. Safe for concurrent use.
type Driver struct {
	cfg       Config
	quantizer *quantize.Quantizer
	trans     *transcoder.Transcoder
	segmenter matte.Segmenter

	segWarned atomic.Bool
}

// New builds a Driver for the given configuration. The segmenter may be
// nil; background removal then falls back to passing frames through.
func New(cfg Config, seg matte.Segmenter) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Driver{
		cfg:       cfg,
		quantizer: quantize.NewDefault(cfg.Quantize),
		trans:     transcoder.New(),
		segmenter: seg,
	}, nil
}

// Process converts a single input file, dispatching on its extension.
func (d *Driver) Process(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	switch mediatypes.DetectKind(inputPath) {
	case mediatypes.KindImage:
		return d.ProcessImage(ctx, inputPath, outputPath)
	case mediatypes.KindVideo:
		return d.ProcessVideo(ctx, inputPath, outputPath)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", errdefs.ErrInvalidInput, filepath.Ext(inputPath))
	}
}

// ProcessImage converts one image file.
func (d *Driver) ProcessImage(ctx context.Context, inputPath, outputPath string) (result *Result, err error) {
	start := time.Now()
	defer func() { observeRun("image", start, err) }()

	src, err := imaging.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", errdefs.ErrInvalidInput, inputPath, err)
	}

	out, err := d.processFrame(imaging.Clone(src))
	if err != nil {
		return nil, err
	}
	if err := saveAtomic(out, outputPath); err != nil {
		return nil, err
	}

	logging.Info("Converted image %s -> %s", filepath.Base(inputPath), filepath.Base(outputPath))
	return &Result{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Kind:       mediatypes.KindImage,
		Frames:     1,
		Duration:   time.Since(start),
	}, nil
}

// ProcessVideo converts one video file. All intermediates live in a
// temporary workspace that is removed when the run finishes.
func (d *Driver) ProcessVideo(ctx context.Context, inputPath, outputPath string) (result *Result, err error) {
	start := time.Now()
	defer func() { observeRun("video", start, err) }()

	ws, err := workspace.New("")
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := ws.Close(); closeErr != nil {
			logging.Warn("Cleaning workspace: %v", closeErr)
		}
	}()

	working, err := d.trans.ConvertToMP4(inputPath, ws.Dir(), 0, 0)
	if err != nil {
		return nil, err
	}

	fps := d.cfg.FrameRate
	info, probeErr := d.trans.Probe(working)
	if probeErr != nil {
		logging.Warn("Probing %s failed: %v", filepath.Base(working), probeErr)
	} else if fps == 0 {
		fps = info.FrameRate
	}
	hasAudio := audioPresent(info, probeErr)
	if fps <= 0 {
		logging.Warn("Source frame rate unknown, assuming %g fps", defaultFrameRate)
		fps = defaultFrameRate
	}

	frames, err := d.trans.ExtractFrames(working)
	if err != nil {
		return nil, err
	}
	logging.Info("Processing %d frames of %s at %g fps", len(frames), filepath.Base(inputPath), fps)

	processed, err := mapFrames(ctx, frames, workers.ForCPU(len(frames)), d.processFrame)
	if err != nil {
		return nil, err
	}

	framesDir, err := ws.MkdirAll("frames")
	if err != nil {
		return nil, err
	}
	for i, frame := range processed {
		name := filepath.Join(framesDir, fmt.Sprintf("frame_%06d.png", i))
		if err := imaging.Save(frame, name); err != nil {
			return nil, fmt.Errorf("writing frame %d: %w", i, err)
		}
	}

	silent := ws.Path("silent.mp4")
	pattern := filepath.Join(framesDir, "frame_%06d.png")
	if err := d.trans.AssembleVideo(pattern, fps, silent); err != nil {
		return nil, err
	}

	final := silent
	if hasAudio {
		audio, audioErr := d.trans.ExtractAudio(working, ws.Dir())
		if audioErr != nil {
			logging.Warn("Audio extraction failed, output will be silent: %v", audioErr)
		} else {
			merged := ws.Path("merged.mp4")
			if muxErr := d.trans.Mux(silent, audio, merged); muxErr != nil {
				logging.Warn("Muxing audio failed, output will be silent: %v", muxErr)
			} else {
				final = merged
			}
		}
	}

	if err := moveFile(final, outputPath); err != nil {
		return nil, err
	}

	logging.Info("Converted video %s -> %s (%d frames)",
		filepath.Base(inputPath), filepath.Base(outputPath), len(processed))
	return &Result{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Kind:       mediatypes.KindVideo,
		Frames:     len(processed),
		Duration:   time.Since(start),
	}, nil
}

// processFrame runs the per-frame stage sequence.
func (d *Driver) processFrame(frame *image.NRGBA) (*image.NRGBA, error) {
	frame, err := timeStage("enhance", func() (*image.NRGBA, error) {
		out, err := enhance.Adaptive(frame, d.cfg.Brightness, d.cfg.Contrast)
		if err != nil {
			return nil, err
		}
		return enhance.GammaCorrect(out, d.cfg.Gamma)
	})
	if err != nil {
		return nil, err
	}

	if d.cfg.RemoveBackground {
		frame, err = timeStage("matte", func() (*image.NRGBA, error) {
			mask, segErr := matte.SegmentForeground(frame, d.segmenter)
			if segErr != nil {
				if errors.Is(segErr, errdefs.ErrSegmentationUnavailable) {
					if d.segWarned.CompareAndSwap(false, true) {
						logging.Warn("Background removal unavailable, continuing without: %v", segErr)
					}
					metrics.SegmentationFallbacks.Inc()
					return frame, nil
				}
				return nil, segErr
			}
			return matte.Compose(frame, mask, d.cfg.Background)
		})
		if err != nil {
			return nil, err
		}
	}

	frame, err = timeStage("geometry", func() (*image.NRGBA, error) {
		return geometry.FitToCanvas(frame, d.cfg.CanvasWidth, d.cfg.CanvasHeight)
	})
	if err != nil {
		return nil, err
	}

	return timeStage("quantize", func() (*image.NRGBA, error) {
		return d.quantizer.Quantize(frame, d.cfg.PaletteSize)
	})
}

// audioPresent decides whether to attempt audio extraction. A stream that
// could not be probed is assumed to carry audio; a failed extraction
// already degrades to silent output.
func audioPresent(info *transcoder.MediaInfo, probeErr error) bool {
	if probeErr != nil {
		return true
	}
	return info.HasAudio
}

func timeStage(stage string, fn func() (*image.NRGBA, error)) (*image.NRGBA, error) {
	start := time.Now()
	out, err := fn()
	metrics.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	return out, err
}

func observeRun(kind string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RunsTotal.WithLabelValues(kind, status).Inc()
	metrics.RunDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// saveAtomic writes the image next to the destination and renames it into
// place so a failed run never leaves a partial output.
func saveAtomic(img *image.NRGBA, outputPath string) error {
	dir := filepath.Dir(outputPath)
	tmp := filepath.Join(dir, ".tmp-"+filepath.Base(outputPath))
	if err := imaging.Save(img, tmp); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	if err := os.Rename(tmp, outputPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalizing output: %w", err)
	}
	return nil
}

// moveFile renames src to dst, falling back to copy-and-remove when they
// sit on different filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp := filepath.Join(filepath.Dir(dst), ".tmp-"+filepath.Base(dst))
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Remove(src)
}
