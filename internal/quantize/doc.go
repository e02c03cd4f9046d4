// Package quantize reduces a frame's color space to a fixed palette size.
//
// The clustering primitive is a strategy: any implementation of Clusterer
// can be injected, keeping the quantizer testable with a stub. The default
// is an iterative k-means with random restarts whose convergence policy is
// carried in Options.
package quantize
