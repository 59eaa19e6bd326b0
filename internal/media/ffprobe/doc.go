// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video/subtitle stream properties
//   - Format: container-level metadata (format names, duration)
//
// Primary entry point:
//   - Inspect: runs ffprobe through a command.Runner and returns the parsed Result
//
// Helper methods on Result group streams by type; cover-art attachments that
// ffprobe reports as video streams are excluded from the video group.
package ffprobe
