// Package pipeline runs the full conversion: enhancement, optional
// background removal, fit-to-canvas, quantization, and for video the
// surrounding extract/assemble/mux steps.
package pipeline
