package errdefs

import "errors"

var (
	// ErrInvalidInput is returned for a malformed or empty frame, or an
	// unsupported file extension.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidParameter is returned for out-of-range configuration,
	// e.g. gamma <= 0 or a palette size below 1.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrExternalTool is returned when the external transcoder fails on
	// both the primary and the fallback invocation.
	ErrExternalTool = errors.New("external tool failure")

	// ErrSegmentationUnavailable is returned when the segmentation model
	// fails to initialize or process a frame. The pipeline treats it as a
	// signal to fall back to processing without background removal.
	ErrSegmentationUnavailable = errors.New("segmentation unavailable")
)
