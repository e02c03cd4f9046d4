// Package transcoder wraps the external FFmpeg tool for everything the
// pipeline cannot do in-process: container conversion, audio extraction,
// frame extraction, video assembly and muxing.
//
// Every operation that re-encodes media carries a single automatic fallback
// invocation; only when both commands fail does the operation report
// errdefs.ErrExternalTool. FFmpeg and ffprobe must be installed and on PATH.
package transcoder
