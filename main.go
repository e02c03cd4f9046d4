// Command pixelart converts images and videos into pixel art: adaptive
// enhancement, optional background removal, fit-to-canvas scaling and
// palette quantization, with FFmpeg handling the video container work.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pixelart/internal/ledger"
	"pixelart/internal/logging"
	"pixelart/internal/mediatypes"
	"pixelart/internal/pipeline"
)

func main() {
	var (
		outDir     = flag.String("out", ".", "output directory")
		width      = flag.Int("width", pipeline.DefaultCanvasWidth, "canvas width in pixels")
		height     = flag.Int("height", pipeline.DefaultCanvasHeight, "canvas height in pixels")
		colors     = flag.Int("colors", pipeline.DefaultPaletteSize, "maximum palette size (1-256)")
		brightness = flag.Float64("brightness", 0, "brightness offset added to every channel (0 = neutral)")
		contrast   = flag.Float64("contrast", pipeline.DefaultContrast, "contrast factor (1 = neutral)")
		gamma      = flag.Float64("gamma", pipeline.DefaultGamma, "gamma correction (>1 brightens)")
		removeBG   = flag.Bool("remove-bg", false, "replace the background with a solid color")
		background = flag.String("background", "#000000", "background color as #RRGGBB")
		fps        = flag.Float64("fps", 0, "output frame rate for video (0 = source rate)")
		history    = flag.Int("history", 0, "print the N most recent runs and exit")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <input> [input...]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		logging.SetLevel(logging.LevelDebug)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runLog := openLedger(ctx)
	if runLog != nil {
		defer func() {
			if err := runLog.Close(); err != nil {
				logging.Warn("Closing run history: %v", err)
			}
		}()
	}

	if *history > 0 {
		if runLog == nil {
			logging.Fatal("Run history requires PIXELART_DATA_DIR")
		}
		printHistory(ctx, runLog, *history)
		return
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	bg, err := parseHexColor(*background)
	if err != nil {
		logging.Fatal("Invalid background color: %v", err)
	}

	cfg := pipeline.DefaultConfig()
	cfg.CanvasWidth = *width
	cfg.CanvasHeight = *height
	cfg.PaletteSize = *colors
	cfg.Brightness = *brightness
	cfg.Contrast = *contrast
	cfg.Gamma = *gamma
	cfg.RemoveBackground = *removeBG
	cfg.Background = bg
	cfg.FrameRate = *fps

	seg, err := newSegmenter()
	if err != nil {
		logging.Warn("Segmentation backend unavailable: %v", err)
	}

	driver, err := pipeline.New(cfg, seg)
	if err != nil {
		logging.Fatal("Invalid configuration: %v", err)
	}

	if addr := os.Getenv("METRICS_ADDR"); addr != "" {
		go serveMetrics(addr)
	}

	failed := 0
	for i, input := range inputs {
		if ctx.Err() != nil {
			logging.Warn("Interrupted, %d input(s) not processed", len(inputs)-i)
			break
		}
		if !mediatypes.IsSupported(input) {
			logging.Error("Skipping %s: unsupported file extension", input)
			failed++
			continue
		}

		output := filepath.Join(*outDir, outputName(input))
		res, err := driver.Process(ctx, input, output)
		recordRun(ctx, runLog, input, output, res, err)
		if err != nil {
			logging.Error("Converting %s: %v", input, err)
			failed++
			continue
		}
		logging.Info("Wrote %s (%d frames, %v)", res.OutputPath, res.Frames, res.Duration.Round(time.Millisecond))
	}

	if failed > 0 {
		logging.Error("%d of %d conversions failed", failed, len(inputs))
		os.Exit(1)
	}
}

// outputName derives the destination file name: images keep a PNG
// extension for lossless palettes, videos always come out as MP4.
func outputName(input string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	switch mediatypes.DetectKind(input) {
	case mediatypes.KindVideo:
		return base + "_pixelart.mp4"
	default:
		return base + "_pixelart.png"
	}
}

func parseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return color.NRGBA{}, fmt.Errorf("%q is not #RRGGBB", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%q is not #RRGGBB: %v", s, err)
	}
	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

// openLedger opens the run history when PIXELART_DATA_DIR is set.
// A missing or broken ledger never blocks conversions.
func openLedger(ctx context.Context) *ledger.Ledger {
	dataDir := os.Getenv("PIXELART_DATA_DIR")
	if dataDir == "" {
		return nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logging.Warn("Run history disabled, cannot create %s: %v", dataDir, err)
		return nil
	}
	l, err := ledger.Open(ctx, filepath.Join(dataDir, "pixelart.db"))
	if err != nil {
		logging.Warn("Run history disabled: %v", err)
		return nil
	}
	return l
}

func recordRun(ctx context.Context, l *ledger.Ledger, input, output string, res *pipeline.Result, runErr error) {
	if l == nil {
		return
	}
	run := ledger.Run{
		InputPath:  input,
		OutputPath: output,
		Kind:       string(mediatypes.DetectKind(input)),
		Status:     "ok",
	}
	if res != nil {
		run.Frames = res.Frames
		run.Duration = res.Duration
	}
	if runErr != nil {
		run.Status = "error"
		run.Error = runErr.Error()
	}
	if err := l.RecordRun(ctx, run); err != nil {
		logging.Warn("Recording run: %v", err)
	}
}

func printHistory(ctx context.Context, l *ledger.Ledger, limit int) {
	runs, err := l.RecentRuns(ctx, limit)
	if err != nil {
		logging.Fatal("Reading run history: %v", err)
	}
	for _, r := range runs {
		line := fmt.Sprintf("%s  %-5s  %-5s  %s -> %s",
			r.CreatedAt.Format("2006-01-02 15:04:05"), r.Kind, r.Status, r.InputPath, r.OutputPath)
		if r.Status == "ok" {
			line += fmt.Sprintf("  (%d frames, %v)", r.Frames, r.Duration.Round(time.Millisecond))
		} else if r.Error != "" {
			line += "  " + r.Error
		}
		fmt.Println(line)
	}
}

func serveMetrics(addr string) {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logging.Info("Metrics listening on %s", addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Error("Metrics server: %v", err)
	}
}
