// Package mediatypes classifies input files by extension.
//
// This package exists as a dependency-free foundation that can be imported
// by other packages without creating import cycles. Classification is by
// extension only; content sniffing is deliberately out of scope.
//
// Use DetectKind to classify a path:
//
//	switch mediatypes.DetectKind(path) {
//	case mediatypes.KindImage:
//	    // decode a still image
//	case mediatypes.KindVideo:
//	    // run the per-frame video pipeline
//	}
package mediatypes
