//go:build gocv

package main

import (
	"fmt"
	"os"

	"pixelart/internal/matte"
)

// newSegmenter loads the OpenCV DNN backend from the model file named by
// PIXELART_MODEL.
func newSegmenter() (matte.Segmenter, error) {
	modelPath := os.Getenv("PIXELART_MODEL")
	if modelPath == "" {
		return nil, fmt.Errorf("PIXELART_MODEL not set")
	}
	return matte.NewDNNSegmenter(modelPath)
}
