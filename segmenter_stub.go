//go:build !gocv

package main

import "pixelart/internal/matte"

// newSegmenter returns the segmentation backend. The default build has
// none; background removal degrades to a pass-through with a warning.
func newSegmenter() (matte.Segmenter, error) {
	return nil, nil
}
