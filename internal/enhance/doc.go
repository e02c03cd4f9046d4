// Package enhance implements per-frame exposure normalization and gamma
// correction, applied before quantization.
package enhance
