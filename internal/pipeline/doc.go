// Package pipeline drives one packaging run through its stages.
//
// A run moves strictly forward through probing, planning, transcoding,
// packaging, and publishing, and ends in done or failed. Nothing is retried.
// Each run works inside its own directory under the configured work root,
// which is removed when the run ends. Run history goes to the ledger and
// stage timings to the metrics recorder when either is attached.
package pipeline
