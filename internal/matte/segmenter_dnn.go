//go:build gocv

package matte

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// DNNSegmenter runs an ONNX/TensorFlow segmentation network through OpenCV's
// DNN module. Built only with the gocv tag so the default build carries no
// OpenCV requirement.
type DNNSegmenter struct {
	net gocv.Net
}

// NewDNNSegmenter loads a segmentation model from disk. The network must
// accept an RGB raster at the variant input resolution and emit a single
// channel of foreground probabilities at the same resolution.
func NewDNNSegmenter(modelPath string) (*DNNSegmenter, error) {
	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load segmentation model from %s", modelPath)
	}
	return &DNNSegmenter{net: net}, nil
}

// Segment implements Segmenter.
func (s *DNNSegmenter) Segment(img *image.NRGBA, variant ModelVariant) (*Mask, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("converting frame: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat, 1.0/255.0,
		image.Pt(variant.Width, variant.Height),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	s.net.SetInput(blob, "")
	prob := s.net.Forward("")
	defer prob.Close()

	data, err := prob.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("reading model output: %w", err)
	}
	n := variant.Width * variant.Height
	if len(data) < n {
		return nil, fmt.Errorf("model output too small: %d values for %dx%d",
			len(data), variant.Width, variant.Height)
	}

	mask := NewMask(variant.Width, variant.Height)
	for i := 0; i < n; i++ {
		v := float64(data[i])
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		mask.Pix[i] = v
	}
	return mask, nil
}

// Close releases the underlying network.
func (s *DNNSegmenter) Close() error {
	return s.net.Close()
}
