package transcoder

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "image/png" // frame stream decoder

	"github.com/disintegration/imaging"
	ffmpeg "github.com/u2takey/ffmpeg-go"

	"pixelart/internal/errdefs"
	"pixelart/internal/logging"
	"pixelart/internal/metrics"
)

// Transcoder invokes FFmpeg. The zero value is usable; New exists for
// symmetry with the other pipeline components.
type Transcoder struct{}

// New returns a Transcoder.
func New() *Transcoder {
	return &Transcoder{}
}

// MediaInfo describes a probed media file.
type MediaInfo struct {
	Duration   float64
	Width      int
	Height     int
	FrameRate  float64
	FrameCount int
	HasAudio   bool
}

type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe returns stream information for a media file using ffprobe.
func (t *Transcoder) Probe(path string) (*MediaInfo, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		metrics.TranscoderInvocations.WithLabelValues("probe", "error").Inc()
		return nil, fmt.Errorf("ffprobe failed for %s: %w", path, err)
	}
	metrics.TranscoderInvocations.WithLabelValues("probe", "ok").Inc()
	return parseProbe(raw)
}

func parseProbe(raw string) (*MediaInfo, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}

	info := &MediaInfo{}
	info.Duration, _ = strconv.ParseFloat(out.Format.Duration, 64)

	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if info.Width == 0 {
				info.Width = s.Width
				info.Height = s.Height
				info.FrameRate = parseFrameRate(s.RFrameRate)
				info.FrameCount, _ = strconv.Atoi(s.NbFrames)
			}
		case "audio":
			info.HasAudio = true
		}
	}
	return info, nil
}

// parseFrameRate converts ffprobe's rational rate ("30000/1001") to a float.
// Returns 0 when the rate is missing or malformed.
func parseFrameRate(r string) float64 {
	if r == "" || r == "0/0" {
		return 0
	}
	parts := strings.SplitN(r, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	if len(parts) == 1 {
		return num
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || den == 0 {
		return 0
	}
	return num / den
}

// runWithFallback runs the primary command, then the fallback once if the
// primary fails. Both failing yields errdefs.ErrExternalTool.
func runWithFallback(operation string, primary, fallback func() error) error {
	err := primary()
	if err == nil {
		metrics.TranscoderInvocations.WithLabelValues(operation, "ok").Inc()
		return nil
	}
	logging.Warn("FFmpeg %s failed, retrying with fallback command: %v", operation, err)

	metrics.TranscoderFallbacks.WithLabelValues(operation).Inc()
	if fallback == nil {
		metrics.TranscoderInvocations.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("%w: %s failed", errdefs.ErrExternalTool, operation)
	}
	if err := fallback(); err != nil {
		metrics.TranscoderInvocations.WithLabelValues(operation, "error").Inc()
		return fmt.Errorf("%w: %s failed on primary and fallback: %v", errdefs.ErrExternalTool, operation, err)
	}
	metrics.TranscoderInvocations.WithLabelValues(operation, "ok").Inc()
	return nil
}

// ConvertToMP4 produces an MP4 working copy of the input in dir. An input
// that is already MP4 is copied byte-for-byte so the original is never
// touched by later steps. Optional target dimensions add a scale filter on
// the primary invocation; the fallback re-encodes without the filter.
func (t *Transcoder) ConvertToMP4(path, dir string, targetWidth, targetHeight int) (string, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(dir, base+"_temp.mp4")

	if strings.EqualFold(filepath.Ext(path), ".mp4") {
		if err := copyFile(path, out); err != nil {
			return "", fmt.Errorf("copying mp4 input: %w", err)
		}
		return out, nil
	}

	logging.Info("Converting %s to MP4", filepath.Base(path))
	primary := func() error {
		kw := ffmpeg.KwArgs{}
		if targetWidth > 0 && targetHeight > 0 {
			kw["vf"] = fmt.Sprintf("scale=%d:%d", targetWidth, targetHeight)
		}
		return ffmpeg.Input(path).Output(out, kw).OverWriteOutput().Silent(true).Run()
	}
	fallback := func() error {
		return ffmpeg.Input(path).Output(out).OverWriteOutput().Silent(true).Run()
	}
	if err := runWithFallback("convert", primary, fallback); err != nil {
		return "", err
	}
	return out, nil
}

// ExtractAudio pulls the audio track out of a video as AAC.
func (t *Transcoder) ExtractAudio(path, dir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(dir, base+"_audio.aac")

	logging.Info("Extracting audio from %s", filepath.Base(path))
	primary := func() error {
		return ffmpeg.Input(path).
			Output(out, ffmpeg.KwArgs{"vn": "", "acodec": "aac"}).
			OverWriteOutput().Silent(true).Run()
	}
	fallback := func() error {
		return ffmpeg.Input(path).
			Output(out, ffmpeg.KwArgs{"vn": "", "acodec": "aac", "b:a": "128k"}).
			OverWriteOutput().Silent(true).Run()
	}
	if err := runWithFallback("extract-audio", primary, fallback); err != nil {
		return "", err
	}
	return out, nil
}

// ExtractFrames decodes every frame of a video into memory as NRGBA images,
// streamed from FFmpeg as a PNG sequence over a pipe.
func (t *Transcoder) ExtractFrames(path string) ([]*image.NRGBA, error) {
	r, w := io.Pipe()

	go func() {
		err := ffmpeg.Input(path).
			Output("pipe:", ffmpeg.KwArgs{"format": "image2pipe", "vcodec": "png"}).
			WithOutput(w).
			Silent(true).
			Run()
		w.CloseWithError(err)
	}()

	var frames []*image.NRGBA
	reader := bufio.NewReaderSize(r, 1<<20)
	for {
		// Peek distinguishes a clean end-of-stream from a truncated
		// frame: image.Decode reports both as a format error.
		if _, err := reader.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: reading frame stream: %v", errdefs.ErrExternalTool, err)
		}
		img, _, err := image.Decode(reader)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding frame %d: %v", errdefs.ErrExternalTool, len(frames), err)
		}
		frames = append(frames, imaging.Clone(img))
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames extracted from %s", errdefs.ErrExternalTool, path)
	}
	logging.Debug("Extracted %d frames from %s", len(frames), filepath.Base(path))
	return frames, nil
}

// AssembleVideo encodes a numbered PNG sequence into a silent MP4 at the
// given frame rate. Pattern is an FFmpeg image2 pattern such as
// "frames/frame_%06d.png".
func (t *Transcoder) AssembleVideo(pattern string, fps float64, out string) error {
	if fps <= 0 {
		return fmt.Errorf("%w: frame rate %g", errdefs.ErrInvalidParameter, fps)
	}

	rate := strconv.FormatFloat(fps, 'f', -1, 64)
	primary := func() error {
		return ffmpeg.Input(pattern, ffmpeg.KwArgs{"framerate": rate}).
			Output(out, ffmpeg.KwArgs{"c:v": "libx264", "pix_fmt": "yuv420p"}).
			OverWriteOutput().Silent(true).Run()
	}
	fallback := func() error {
		return ffmpeg.Input(pattern, ffmpeg.KwArgs{"framerate": rate}).
			Output(out, ffmpeg.KwArgs{"c:v": "mpeg4", "pix_fmt": "yuv420p"}).
			OverWriteOutput().Silent(true).Run()
	}
	return runWithFallback("assemble", primary, fallback)
}

// Mux combines a silent video with an audio track into the final MP4,
// copying the video stream when possible and re-encoding on fallback.
func (t *Transcoder) Mux(videoPath, audioPath, out string) error {
	primary := func() error {
		v := ffmpeg.Input(videoPath).Video()
		a := ffmpeg.Input(audioPath).Audio()
		return ffmpeg.Output([]*ffmpeg.Stream{v, a}, out,
			ffmpeg.KwArgs{"c:v": "copy", "c:a": "aac", "shortest": ""}).
			OverWriteOutput().Silent(true).Run()
	}
	fallback := func() error {
		v := ffmpeg.Input(videoPath).Video()
		a := ffmpeg.Input(audioPath).Audio()
		return ffmpeg.Output([]*ffmpeg.Stream{v, a}, out,
			ffmpeg.KwArgs{"c:v": "libx264", "c:a": "aac", "shortest": ""}).
			OverWriteOutput().Silent(true).Run()
	}
	return runWithFallback("mux", primary, fallback)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil {
			logging.Warn("failed to close %s: %v", src, err)
		}
	}()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
