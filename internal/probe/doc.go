// Package probe turns ffprobe output into a validated MediaInventory.
//
// Validation runs in a fixed order: container format, file extension, exactly
// one elementary video stream, at least one audio stream. The first violation
// is returned as a services.InputRejectedError and nothing downstream runs.
package probe
