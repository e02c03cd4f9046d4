// Package matte separates foreground from background using a swappable
// segmentation model and produces a smoothed alpha mask.
//
// The model itself is an injected capability: anything that can turn a
// fixed-size RGB raster into a per-pixel foreground probability map
// implements Segmenter. The rest of the chain (variant selection, mask
// refinement, compositing) lives here.
package matte
